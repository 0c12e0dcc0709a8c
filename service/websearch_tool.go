package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"llex-backend/llm"
	"llex-backend/models"
)

// WebSearchTool answers a question from general web search results.
type WebSearchTool struct {
	searcher WebSearcher
	provider llm.Provider
	timeout  time.Duration
}

// NewWebSearchTool creates the generic web search tool.
func NewWebSearchTool(searcher WebSearcher, provider llm.Provider, timeout time.Duration) *WebSearchTool {
	return &WebSearchTool{searcher: searcher, provider: provider, timeout: timeout}
}

// Name returns the tool identifier.
func (t *WebSearchTool) Name() string {
	return models.ToolWebSearch
}

// Run searches the web and streams a grounded summary.
func (t *WebSearchTool) Run(ctx context.Context, plan models.ToolPlan, emit EmitFunc) error {
	return searchAndSummarize(ctx, searchSummarizeParams{
		label:    "웹 검색 중",
		query:    plan.Query(),
		search:   t.searcher.SearchWeb,
		provider: t.provider,
		timeout:  t.timeout,
		prompt: func(query, digest string) string {
			return fmt.Sprintf(
				"대한민국 산업안전 분야 전문가로서 답변하세요.\n질문: %s\n---\n%s\n---\n"+
					"검색 결과만 근거로 결론과 적용 기준을 정리하고 출처를 명시하세요.",
				query, digest)
		},
	}, emit)
}

// searchSummarizeParams drives the shared search→summarize→cite flow used by
// the web, news and blog tools.
type searchSummarizeParams struct {
	label    string
	query    string
	search   func(ctx context.Context, query string) ([]models.SearchResult, error)
	provider llm.Provider
	timeout  time.Duration
	prompt   func(query, digest string) string
}

// searchAndSummarize runs one bounded search pass, streams the model summary
// as text chunks and finishes with one source chunk per result used.
func searchAndSummarize(ctx context.Context, p searchSummarizeParams, emit EmitFunc) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := emit(models.NewStatusChunk(p.label)); err != nil {
		return err
	}

	results, err := p.search(ctx, p.query)
	if err != nil {
		return convertSearchError(ctx, emit, err)
	}
	if len(results) == 0 {
		return emit(models.NewErrorChunk("검색 결과가 없습니다"))
	}

	if err := emit(models.NewStatusChunk(fmt.Sprintf("검색 결과 %d건 요약 중", len(results)))); err != nil {
		return err
	}

	var emitFailed error
	streamErr := p.provider.StreamChat(ctx, p.prompt(p.query, digestResults(results)), func(delta string) error {
		if err := emit(models.NewTextChunk(delta)); err != nil {
			emitFailed = err
			return err
		}
		return nil
	})
	if streamErr != nil {
		if emitFailed != nil {
			return emitFailed
		}
		return convertSearchError(ctx, emit, streamErr)
	}

	for i, r := range results {
		src := models.SourceInfo{
			Title:     r.Title,
			Snippet:   r.Snippet,
			Relevance: rankRelevance(i, len(results)),
			Link:      r.Link,
		}
		if err := emit(models.NewSourceChunk(src)); err != nil {
			return err
		}
	}
	return nil
}

// convertSearchError maps failures to a terminal error chunk, with a
// dedicated message for deadline expiry. The parent context being cancelled
// means the receiver is gone, so nothing more is emitted.
func convertSearchError(ctx context.Context, emit EmitFunc, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return emit(models.NewErrorChunk("검색 시간이 초과되었습니다"))
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	slog.Error("search tool failed", "error", err)
	return emit(models.NewErrorChunk("검색 중 오류가 발생했습니다"))
}

// digestResults renders results as numbered context for the prompt.
func digestResults(results []models.SearchResult) string {
	var b strings.Builder
	for i, r := range results {
		fmt.Fprintf(&b, "[%d] %s\n%s\n(%s)\n\n", i+1, r.Title, r.Snippet, r.Link)
	}
	return b.String()
}

// rankRelevance derives a descending [0,1] relevance from result order; the
// search APIs rank but do not score.
func rankRelevance(index, total int) float64 {
	if total <= 1 {
		return 1
	}
	return 1 - float64(index)/float64(total)
}
