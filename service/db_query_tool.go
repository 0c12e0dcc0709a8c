package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"llex-backend/models"
)

const dbQueryLimit = 5

// DBQueryTool answers explicit "in the data" questions by querying stored
// conversation turns and statute text directly. It formats results as plain
// text and emits no source chunks.
type DBQueryTool struct {
	history HistoryStore
	laws    LawChunkStore
}

// NewDBQueryTool creates the structured-history tool.
func NewDBQueryTool(history HistoryStore, laws LawChunkStore) *DBQueryTool {
	return &DBQueryTool{history: history, laws: laws}
}

// Name returns the tool identifier.
func (t *DBQueryTool) Name() string {
	return models.ToolDBQuery
}

// Run queries law text for statute-flavored keywords, conversation history
// otherwise, and streams the formatted rows.
func (t *DBQueryTool) Run(ctx context.Context, plan models.ToolPlan, emit EmitFunc) error {
	if err := emit(models.NewStatusChunk("데이터 조회 중")); err != nil {
		return err
	}

	query := plan.Query()
	keyword := extractKeyword(query)

	if isLawQuery(query) {
		chunks, err := t.laws.SearchText(ctx, keyword, dbQueryLimit)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			slog.Error("law text search failed", "error", err)
			return emit(models.NewErrorChunk("법령 데이터 조회 중 오류가 발생했습니다"))
		}
		if len(chunks) == 0 {
			return emit(models.NewTextChunk("조건에 맞는 법령 데이터가 없습니다."))
		}
		return t.emitLawRows(chunks, emit)
	}

	turns, err := t.history.SearchContent(ctx, keyword, dbQueryLimit)
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		slog.Error("history search failed", "error", err)
		return emit(models.NewErrorChunk("대화 기록 조회 중 오류가 발생했습니다"))
	}
	if len(turns) == 0 {
		return emit(models.NewTextChunk("조건에 맞는 대화 기록이 없습니다."))
	}
	return t.emitHistoryRows(turns, emit)
}

func (t *DBQueryTool) emitLawRows(chunks []models.LawChunk, emit EmitFunc) error {
	var b strings.Builder
	b.WriteString("법령 데이터 조회 결과:\n\n")
	for i, c := range chunks {
		fmt.Fprintf(&b, "%d. %s", i+1, c.CitationTitle())
		if c.ArticleTitle != nil && *c.ArticleTitle != "" {
			fmt.Fprintf(&b, " (%s)", *c.ArticleTitle)
		}
		b.WriteString("\n")
		b.WriteString(snippet(c.Text, 150))
		b.WriteString("\n\n")
	}
	return emit(models.NewTextChunk(b.String()))
}

func (t *DBQueryTool) emitHistoryRows(turns []models.ChatTurnView, emit EmitFunc) error {
	var b strings.Builder
	b.WriteString("대화 기록 조회 결과:\n\n")
	for i, turn := range turns {
		fmt.Fprintf(&b, "%d. [%s] %s (%s)\n",
			i+1, turn.Role, snippet(turn.Content, 120), turn.CreatedAt.Format("2006-01-02 15:04"))
	}
	return emit(models.NewTextChunk(b.String()))
}

// isLawQuery routes statute-flavored keywords to the law table.
func isLawQuery(query string) bool {
	q := strings.ToLower(query)
	for _, k := range []string{"법", "조문", "시행령", "규칙"} {
		if strings.Contains(q, k) {
			return true
		}
	}
	return false
}

// extractKeyword strips the explicit DB-query phrasing so the remaining
// words drive the search.
func extractKeyword(query string) string {
	q := query
	for _, marker := range []string{"데이터에서", "기록에서", "db에서", "DB에서", "데이터 확인", "기록 확인"} {
		q = strings.ReplaceAll(q, marker, " ")
	}
	return strings.TrimSpace(q)
}
