package service

import (
	"context"
	"fmt"
	"time"

	"llex-backend/llm"
	"llex-backend/models"
)

// BlogTool summarizes blog posts and experience reports for a question.
type BlogTool struct {
	searcher WebSearcher
	provider llm.Provider
	timeout  time.Duration
}

// NewBlogTool creates the blog summarizer tool.
func NewBlogTool(searcher WebSearcher, provider llm.Provider, timeout time.Duration) *BlogTool {
	return &BlogTool{searcher: searcher, provider: provider, timeout: timeout}
}

// Name returns the tool identifier.
func (t *BlogTool) Name() string {
	return models.ToolBlog
}

// Run fetches blog results and streams a summary.
func (t *BlogTool) Run(ctx context.Context, plan models.ToolPlan, emit EmitFunc) error {
	return searchAndSummarize(ctx, searchSummarizeParams{
		label:    "블로그 검색 중",
		query:    plan.Query(),
		search:   t.searcher.SearchBlogs,
		provider: t.provider,
		timeout:  t.timeout,
		prompt: func(query, digest string) string {
			return fmt.Sprintf(
				"다음은 블로그 검색 결과입니다.\n질문: %s\n---\n%s\n---\n"+
					"실제 경험담 위주로 공통된 내용을 요약하고 주의할 점을 정리하세요.",
				query, digest)
		},
	}, emit)
}
