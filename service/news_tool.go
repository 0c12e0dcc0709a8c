package service

import (
	"context"
	"fmt"
	"time"

	"llex-backend/llm"
	"llex-backend/models"
)

// NewsTool summarizes recent news coverage for a question.
type NewsTool struct {
	searcher WebSearcher
	provider llm.Provider
	timeout  time.Duration
}

// NewNewsTool creates the news summarizer tool.
func NewNewsTool(searcher WebSearcher, provider llm.Provider, timeout time.Duration) *NewsTool {
	return &NewsTool{searcher: searcher, provider: provider, timeout: timeout}
}

// Name returns the tool identifier.
func (t *NewsTool) Name() string {
	return models.ToolNews
}

// Run fetches news results and streams a dated summary.
func (t *NewsTool) Run(ctx context.Context, plan models.ToolPlan, emit EmitFunc) error {
	return searchAndSummarize(ctx, searchSummarizeParams{
		label:    "최신 뉴스 검색 중",
		query:    plan.Query(),
		search:   t.searcher.SearchNews,
		provider: t.provider,
		timeout:  t.timeout,
		prompt: func(query, digest string) string {
			return fmt.Sprintf(
				"다음은 %s 기준 최신 뉴스 검색 결과입니다.\n질문: %s\n---\n%s\n---\n"+
					"핵심 사건을 시점과 함께 요약하고, 각 항목이 어느 기사에서 나왔는지 표시하세요.",
				time.Now().Format("2006-01-02"), query, digest)
		},
	}, emit)
}
