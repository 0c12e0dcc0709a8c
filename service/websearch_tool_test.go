package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llex-backend/models"
)

func TestWebSearchToolSummarizesAndCites(t *testing.T) {
	searcher := &fakeSearcher{
		results: []models.SearchResult{
			{Title: "고용노동부 보도자료", Snippet: "중대재해 감축 로드맵", Link: "https://example.com/a"},
			{Title: "안전보건공단 안내", Snippet: "점검 체크리스트", Link: "https://example.com/b"},
		},
	}
	provider := &fakeProvider{deltas: []string{"요약: ", "두 건의 자료가 있습니다."}}
	tool := NewWebSearchTool(searcher, provider, 5*time.Second)

	rec := &chunkRecorder{}
	err := tool.Run(context.Background(), plan(models.ToolWebSearch, "중대재해 로드맵"), rec.emit)
	require.NoError(t, err)

	assert.Equal(t, "요약: 두 건의 자료가 있습니다.", rec.answer())

	var sources []models.SourceInfo
	for _, c := range rec.chunks {
		if c.Event == models.ChunkSource {
			sources = append(sources, c.Payload.(models.SourceInfo))
		}
	}
	require.Len(t, sources, 2)
	assert.Equal(t, 1.0, sources[0].Relevance, "rank-derived relevance starts at 1")
	assert.Greater(t, sources[0].Relevance, sources[1].Relevance)
}

func TestWebSearchToolEmptyResults(t *testing.T) {
	tool := NewWebSearchTool(&fakeSearcher{}, &fakeProvider{}, 5*time.Second)

	rec := &chunkRecorder{}
	err := tool.Run(context.Background(), plan(models.ToolWebSearch, "질문"), rec.emit)
	require.NoError(t, err)

	last := rec.chunks[len(rec.chunks)-1]
	assert.Equal(t, models.ChunkError, last.Event)
	assert.Equal(t, "검색 결과가 없습니다", last.Text())
}

func TestWebSearchToolTimeoutMessage(t *testing.T) {
	searcher := &fakeSearcher{err: context.DeadlineExceeded}
	tool := NewWebSearchTool(searcher, &fakeProvider{}, 5*time.Second)

	rec := &chunkRecorder{}
	err := tool.Run(context.Background(), plan(models.ToolWebSearch, "질문"), rec.emit)
	require.NoError(t, err)

	last := rec.chunks[len(rec.chunks)-1]
	assert.Equal(t, models.ChunkError, last.Event)
	assert.Equal(t, "검색 시간이 초과되었습니다", last.Text())
}

func TestWebSearchToolSearchFailure(t *testing.T) {
	searcher := &fakeSearcher{err: errors.New("naver 500")}
	tool := NewWebSearchTool(searcher, &fakeProvider{}, 5*time.Second)

	rec := &chunkRecorder{}
	err := tool.Run(context.Background(), plan(models.ToolWebSearch, "질문"), rec.emit)
	require.NoError(t, err)

	last := rec.chunks[len(rec.chunks)-1]
	assert.Equal(t, models.ChunkError, last.Event)
}

func TestNewsAndBlogToolsShareTheFlow(t *testing.T) {
	searcher := &fakeSearcher{
		results: []models.SearchResult{{Title: "기사", Snippet: "내용", Link: "https://example.com"}},
	}
	provider := &fakeProvider{deltas: []string{"요약"}}

	tools := []Tool{
		NewNewsTool(searcher, provider, 5*time.Second),
		NewBlogTool(searcher, provider, 5*time.Second),
	}
	for _, tool := range tools {
		rec := &chunkRecorder{}
		err := tool.Run(context.Background(), plan(tool.Name(), "질문"), rec.emit)
		require.NoError(t, err, tool.Name())
		assert.Equal(t, "요약", rec.answer(), tool.Name())
	}
}
