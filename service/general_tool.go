package service

import (
	"context"
	"fmt"
	"log/slog"

	"llex-backend/llm"
	"llex-backend/models"
)

// GeneralTool is the conversational fallback: no retrieval, just a
// persona-prompted streamed completion. It is also the terminal tool for
// unclassifiable questions, so it never fails past the chunk contract.
type GeneralTool struct {
	provider llm.Provider
}

// NewGeneralTool creates the conversational tool.
func NewGeneralTool(provider llm.Provider) *GeneralTool {
	return &GeneralTool{provider: provider}
}

// Name returns the tool identifier.
func (t *GeneralTool) Name() string {
	return models.ToolGeneral
}

// Run streams a direct conversational answer.
func (t *GeneralTool) Run(ctx context.Context, plan models.ToolPlan, emit EmitFunc) error {
	prompt := fmt.Sprintf(
		"당신은 산업안전 실무자를 돕는 친절한 조수입니다. "+
			"간결하고 실용적으로 한국어로 답변하세요.\n\n질문: %s", plan.Query())

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
		slog.Error("general completion failed", "error", streamErr)
		return emit(models.NewErrorChunk("답변 생성 중 오류가 발생했습니다"))
	}
	return nil
}
