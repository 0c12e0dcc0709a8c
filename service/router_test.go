package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llex-backend/models"
)

func TestClassifyStructuredCitation(t *testing.T) {
	r := NewQuestionRouter()

	plan := r.Classify("산업안전보건법 제38조 내용 알려줘", "")
	assert.Equal(t, models.ToolLawRAG, plan.Tool)

	law, article, ok := plan.StructuredKey()
	require.True(t, ok)
	assert.Equal(t, "산업안전보건법", law)
	assert.Equal(t, "38", article)
}

func TestClassifyCitationVariants(t *testing.T) {
	r := NewQuestionRouter()

	tests := []struct {
		name     string
		question string
		law      string
		article  string
	}{
		{"no je prefix", "산업안전보건법 1조", "산업안전보건법", "1"},
		{"spaced article", "산업안전보건법 제 38 조", "산업안전보건법", "38"},
		{"full width spacing", "산업안전보건법　제38조", "산업안전보건법", "38"},
		{"longest statute wins", "산업안전보건법 시행규칙 제5조", "산업안전보건법시행규칙", "5"},
		{"spaced statute name", "중대재해 처벌 등에 관한 법률 제4조", "중대재해처벌등에관한법률", "4"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan := r.Classify(tt.question, "")
			require.Equal(t, models.ToolLawRAG, plan.Tool)
			law, article, ok := plan.StructuredKey()
			require.True(t, ok)
			assert.Equal(t, tt.law, law)
			assert.Equal(t, tt.article, article)
		})
	}
}

func TestClassifyLawNameWithoutArticle(t *testing.T) {
	r := NewQuestionRouter()

	plan := r.Classify("중대재해처벌등에관한법률이 뭐야", "")
	assert.Equal(t, models.ToolLawRAG, plan.Tool)
	_, _, ok := plan.StructuredKey()
	assert.False(t, ok, "no article number, so no structured key")
}

func TestClassifyKeywordIntents(t *testing.T) {
	r := NewQuestionRouter()

	tests := []struct {
		question string
		tool     string
	}{
		{"안전모 착용 법적근거가 뭐야", models.ToolLawRAG},
		{"최근 산업재해 뉴스 알려줘", models.ToolNews},
		{"안전교육 후기 블로그 찾아봐", models.ToolBlog},
		{"내 기록에서 지난 질문 확인해줘", models.ToolDBQuery},
		{"추락 방지 조치 검색해줘", models.ToolWebSearch},
		{"오늘 너무 피곤하다", models.ToolGeneral},
	}
	for _, tt := range tests {
		plan := r.Classify(tt.question, "")
		assert.Equal(t, tt.tool, plan.Tool, "question: %s", tt.question)
		assert.Equal(t, tt.question, plan.Query())
	}
}

func TestClassifyLawSearchMode(t *testing.T) {
	r := NewQuestionRouter()

	// search mode pins the law tool even when keywords say otherwise.
	plan := r.Classify("추락 방지 조치 검색해줘", "law")
	assert.Equal(t, models.ToolLawRAG, plan.Tool)
}

func TestClassifyDefaultIsLawTool(t *testing.T) {
	r := NewQuestionRouter()

	plan := r.Classify("고소작업대 작업 시 주의사항", "")
	assert.Equal(t, models.ToolLawRAG, plan.Tool)
	_, _, ok := plan.StructuredKey()
	assert.False(t, ok, "default routing carries no key, semantic phase runs")
}

func TestClassifyDeterministic(t *testing.T) {
	r := NewQuestionRouter()

	first := r.Classify("산업안전보건법 제38조", "")
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.Classify("산업안전보건법 제38조", ""))
	}
}
