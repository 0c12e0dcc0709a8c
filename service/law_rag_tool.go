package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"llex-backend/llm"
	"llex-backend/models"
	"llex-backend/repository"
)

// LawRAGTool answers statute questions through a staged pipeline: exact
// article lookup, then semantic vector search, then grounded synthesis, and
// finally web-search delegation when the corpus has nothing relevant.
type LawRAGTool struct {
	store     LawChunkStore
	provider  llm.Provider
	webSearch *WebSearchTool

	topK      int
	threshold float64
}

// NewLawRAGTool creates the law retrieval tool.
func NewLawRAGTool(store LawChunkStore, provider llm.Provider, webSearch *WebSearchTool, topK int, threshold float64) *LawRAGTool {
	return &LawRAGTool{
		store:     store,
		provider:  provider,
		webSearch: webSearch,
		topK:      topK,
		threshold: threshold,
	}
}

// Name returns the tool identifier.
func (t *LawRAGTool) Name() string {
	return models.ToolLawRAG
}

// Run executes the pipeline. Internal failures become a terminal error chunk;
// the returned error is only non-nil when the downstream receiver is gone.
func (t *LawRAGTool) Run(ctx context.Context, plan models.ToolPlan, emit EmitFunc) error {
	if err := emit(models.NewStatusChunk("법령 검색 시작")); err != nil {
		return err
	}

	// Phase 1: exact structured lookup. A hit bypasses every later phase.
	if law, article, ok := plan.StructuredKey(); ok {
		chunk, err := t.store.GetByNormalizedKey(ctx,
			models.NormalizeLawName(law), models.NormalizeArticleNumber(article))
		switch {
		case err == nil:
			return t.emitExactMatch(chunk, emit)
		case errors.Is(err, repository.ErrNotFound):
			if err := emit(models.NewStatusChunk("조문 직접 조회 실패, 벡터 검색으로 전환")); err != nil {
				return err
			}
		default:
			slog.Error("exact lookup failed", "law", law, "article", article, "error", err)
			return emitToolError(emit, "법령 데이터베이스 조회 중 오류가 발생했습니다")
		}
	}

	// Phase 2: semantic search over statute embeddings.
	if err := emit(models.NewStatusChunk("관련 조문 벡터 검색 중")); err != nil {
		return err
	}

	matches, err := t.semanticSearch(ctx, plan.Query())
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("semantic search failed", "error", err)
		return emitToolError(emit, "유사 조문 검색 중 오류가 발생했습니다")
	}

	// Phase 4 trigger: nothing cleared the relevance threshold.
	if len(matches) == 0 {
		if err := emit(models.NewStatusChunk("관련 법령 조문 없음, 웹 검색으로 전환")); err != nil {
			return err
		}
		return t.webSearch.Run(ctx, models.ToolPlan{
			Tool: models.ToolWebSearch,
			Args: map[string]string{"query": plan.Query()},
		}, emit)
	}

	// Phase 3: grounded synthesis streamed token by token.
	return t.synthesize(ctx, plan.Query(), matches, emit)
}

// emitExactMatch streams the article body verbatim with a statute-info
// footer. No source chunk: the exact citation carries its own provenance.
func (t *LawRAGTool) emitExactMatch(chunk *models.LawChunk, emit EmitFunc) error {
	if err := emit(models.NewStatusChunk("조문 발견: " + chunk.CitationTitle())); err != nil {
		return err
	}
	if err := emit(models.NewTextChunk(chunk.Text)); err != nil {
		return err
	}

	footer := fmt.Sprintf("\n\n시행일자: %s\n출처: [%s](%s)",
		orDefault(chunk.EnforcementDate, "정보 없음"),
		chunk.CitationTitle(),
		lawLink(chunk.LawName, chunk.ArticleNumber))
	return emit(models.NewTextChunk(footer))
}

// semanticSearch embeds the query and returns the matches above the
// relevance threshold, ordered by descending similarity.
func (t *LawRAGTool) semanticSearch(ctx context.Context, query string) ([]models.LawChunk, error) {
	embedding, err := t.provider.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query embedding: %w", err)
	}

	candidates, err := t.store.SearchSimilar(ctx, embedding, t.topK)
	if err != nil {
		return nil, fmt.Errorf("vector search: %w", err)
	}

	var matches []models.LawChunk
	for _, c := range candidates {
		if c.Similarity >= t.threshold {
			matches = append(matches, c)
		}
	}
	return matches, nil
}

// synthesize streams a grounded answer and then emits one source chunk per
// retained unit, in descending similarity order.
func (t *LawRAGTool) synthesize(ctx context.Context, query string, matches []models.LawChunk, emit EmitFunc) error {
	if err := emit(models.NewStatusChunk(fmt.Sprintf("조문 %d건 기반 답변 생성 중", len(matches)))); err != nil {
		return err
	}

	prompt := buildGroundedPrompt(query, matches)
	var emitFailed error
	streamErr := t.provider.StreamChat(ctx, prompt, func(delta string) error {
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
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("synthesis failed", "error", streamErr)
		return emitToolError(emit, "답변 생성 중 오류가 발생했습니다")
	}

	for _, m := range matches {
		src := models.SourceInfo{
			Title:     m.CitationTitle(),
			Snippet:   snippet(m.Text, 200),
			Relevance: m.Similarity,
			Link:      lawLink(m.LawName, m.ArticleNumber),
		}
		if err := emit(models.NewSourceChunk(src)); err != nil {
			return err
		}
	}
	return nil
}

func buildGroundedPrompt(query string, matches []models.LawChunk) string {
	var b strings.Builder
	b.WriteString("너는 대한민국 법령 해설 전문가야.\n")
	b.WriteString("아래 제공된 조문만 근거로 사용자 질문에 실무 중심으로 답변하고, ")
	b.WriteString("어느 조문을 근거로 했는지 본문에 명시해. 제공되지 않은 내용은 추측하지 마.\n\n")
	b.WriteString("사용자 질문: " + query + "\n\n")
	for i, m := range matches {
		fmt.Fprintf(&b, "[조문 %d] %s\n%s\n\n", i+1, m.CitationTitle(), m.Text)
	}
	return b.String()
}

func lawLink(lawName, article string) string {
	link := "https://www.law.go.kr/법령/" + url.PathEscape(lawName)
	if article != "" {
		link += "/" + url.PathEscape("제"+article+"조")
	}
	return link
}

func snippet(text string, maxRunes int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= maxRunes {
		return string(runes)
	}
	return string(runes[:maxRunes]) + "..."
}

func orDefault(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// emitToolError converts an internal failure into a terminal error chunk.
// The stream ends normally afterwards; nothing propagates past the tool.
func emitToolError(emit EmitFunc, msg string) error {
	return emit(models.NewErrorChunk(msg))
}
