package service

import (
	"regexp"
	"strings"

	"llex-backend/models"
)

// articlePattern matches "제38조", "38조", "제 38 조".
var articlePattern = regexp.MustCompile(`(?:제)?\s*(\d+)\s*조`)

// coreLaws are the statutes covered by the retrieval store, longest first so
// "산업안전보건법 시행규칙" is matched before "산업안전보건법".
var coreLaws = []string{
	"산업안전보건기준에관한규칙",
	"산업안전보건법시행규칙",
	"산업안전보건법시행령",
	"산업안전보건법",
	"재난및안전관리기본법시행규칙",
	"재난및안전관리기본법시행령",
	"재난및안전관리기본법",
	"중대재해처벌등에관한법률시행령",
	"중대재해처벌등에관한법률",
}

var (
	lawKeywords = []string{
		"법적근거", "법령", "법조문", "조문", "근거", "기준", "조항", "법률", "시행령", "시행규칙",
	}
	newsKeywords = []string{"뉴스", "보도", "이슈", "사건", "사고", "기사", "속보"}
	blogKeywords = []string{"블로그", "포스팅", "후기", "리뷰", "경험담"}
	dbKeywords   = []string{"데이터에서", "기록에서", "db에서", "데이터확인", "기록확인"}
	webKeywords  = []string{"검색해", "찾아줘", "웹에서", "인터넷에서"}
	chatKeywords = []string{
		"힘들", "피곤", "기분", "고마워", "감사", "사랑", "재밌",
		"화나", "짜증", "슬퍼", "걱정", "무서워", "불안", "외로워",
	}
)

// QuestionRouter classifies a question into exactly one tool plan. It is
// deterministic: identical input always yields the identical plan, and
// classification never fails.
type QuestionRouter struct{}

// NewQuestionRouter creates a router.
func NewQuestionRouter() *QuestionRouter {
	return &QuestionRouter{}
}

// Classify selects a tool for the question.
//
// Priority: a structured citation (core statute name plus article number)
// routes straight to the law tool with the parsed key, bypassing semantic
// search; keyword intents pick the news/blog/db/web/general tools; in "law"
// search mode or by default, the law tool runs without a key, which forces
// its semantic phase.
func (r *QuestionRouter) Classify(question, searchMode string) models.ToolPlan {
	normalized := models.NormalizeLawName(strings.ToLower(question))

	// Structured citation: statute name + article number.
	if law := detectLawName(normalized); law != "" {
		if m := articlePattern.FindStringSubmatch(question); m != nil {
			return models.ToolPlan{
				Tool: models.ToolLawRAG,
				Args: map[string]string{
					"query":   question,
					"law":     law,
					"article": models.NormalizeArticleNumber(m[1]),
				},
			}
		}
		return lawPlan(question)
	}

	if containsAny(normalized, lawKeywords) || searchMode == "law" {
		return lawPlan(question)
	}
	if containsAny(normalized, newsKeywords) {
		return plan(models.ToolNews, question)
	}
	if containsAny(normalized, blogKeywords) {
		return plan(models.ToolBlog, question)
	}
	if containsAny(normalized, dbKeywords) {
		return plan(models.ToolDBQuery, question)
	}
	if containsAny(normalized, webKeywords) {
		return plan(models.ToolWebSearch, question)
	}
	if containsAny(normalized, chatKeywords) {
		return plan(models.ToolGeneral, question)
	}

	// No structured key: the law tool starts at the semantic-search phase.
	return lawPlan(question)
}

func lawPlan(question string) models.ToolPlan {
	return plan(models.ToolLawRAG, question)
}

func plan(tool, question string) models.ToolPlan {
	return models.ToolPlan{Tool: tool, Args: map[string]string{"query": question}}
}

// detectLawName finds a core statute name inside a normalized question.
func detectLawName(normalized string) string {
	for _, law := range coreLaws {
		if strings.Contains(normalized, law) {
			return law
		}
	}
	return ""
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
