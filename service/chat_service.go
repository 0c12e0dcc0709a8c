package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"llex-backend/metrics"
	"llex-backend/models"
)

// ChatService orchestrates one question: classify, run the selected tool,
// relay its chunks downstream, and persist the finished transcript.
type ChatService struct {
	router           *QuestionRouter
	registry         *Registry
	history          HistoryStore
	metrics          *metrics.Collector
	defaultUserID    string
	defaultSessionID string
}

// ChatServiceOption is a functional option for ChatService.
type ChatServiceOption func(*ChatService)

// ChatWithRouter sets the question router.
func ChatWithRouter(router *QuestionRouter) ChatServiceOption {
	return func(s *ChatService) {
		s.router = router
	}
}

// ChatWithRegistry sets the tool registry.
func ChatWithRegistry(registry *Registry) ChatServiceOption {
	return func(s *ChatService) {
		s.registry = registry
	}
}

// ChatWithHistoryStore sets the conversation store.
func ChatWithHistoryStore(history HistoryStore) ChatServiceOption {
	return func(s *ChatService) {
		s.history = history
	}
}

// ChatWithMetrics sets the pipeline metrics collector. Optional; a nil
// collector disables recording.
func ChatWithMetrics(collector *metrics.Collector) ChatServiceOption {
	return func(s *ChatService) {
		s.metrics = collector
	}
}

// ChatWithDefaults sets the fallback user and session identifiers.
func ChatWithDefaults(userID, sessionID string) ChatServiceOption {
	return func(s *ChatService) {
		s.defaultUserID = userID
		s.defaultSessionID = sessionID
	}
}

// NewChatService creates a new chat service.
func NewChatService(opts ...ChatServiceOption) *ChatService {
	s := &ChatService{}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AskResult reports what one stream produced.
type AskResult struct {
	Plan   models.ToolPlan
	Answer string
	Score  int
	Saved  bool
}

// Ask runs the full pipeline for one question. Every chunk the tool produces
// is handed to emit in order, one at a time, before the next is requested.
// The transcript is persisted only when the stream ran to completion and
// produced text: a cancelled, emit-broken or error-terminated stream is never
// recorded as a finished turn. Persistence failures are logged and reported
// in-stream as a status chunk; the answer has already been delivered at that
// point.
func (s *ChatService) Ask(ctx context.Context, userID, question, searchMode string, emit EmitFunc) (*AskResult, error) {
	if userID == "" {
		userID = s.defaultUserID
	}

	plan := s.router.Classify(question, searchMode)
	tool := s.registry.Resolve(plan)
	slog.Info("running tool", "tool", tool.Name(), "user_id", userID)

	start := time.Now()
	s.metrics.StreamStarted()
	finish := func(status string) {
		s.metrics.StreamFinished(tool.Name(), status, time.Since(start))
	}

	var answer strings.Builder
	var failed bool
	capture := func(c models.StreamChunk) error {
		if err := emit(c); err != nil {
			return err
		}
		s.metrics.ChunkEmitted(c.Event)
		switch c.Event {
		case models.ChunkText:
			answer.WriteString(c.Text())
		case models.ChunkError:
			failed = true
		}
		return nil
	}

	result := &AskResult{Plan: plan}
	if err := tool.Run(ctx, plan, capture); err != nil {
		result.Answer = answer.String()
		if ctx.Err() != nil {
			finish(metrics.StatusCancelled)
		} else {
			finish(metrics.StatusAborted)
		}
		return result, err
	}
	if ctx.Err() != nil {
		result.Answer = answer.String()
		finish(metrics.StatusCancelled)
		return result, ctx.Err()
	}

	result.Answer = answer.String()
	// An error-terminated stream is not a finished turn, even when partial
	// text made it out first.
	if failed {
		finish(metrics.StatusFailed)
		return result, nil
	}
	finish(metrics.StatusSuccess)
	if result.Answer == "" {
		return result, nil
	}

	result.Score = EvaluateAnswerQuality(result.Answer)
	err := s.history.SaveExchange(ctx, models.ChatExchange{
		UserID:    userID,
		SessionID: s.defaultSessionID,
		Question:  question,
		Answer:    result.Answer,
		Tool:      tool.Name(),
		Score:     result.Score,
	})
	if err != nil {
		slog.Error("failed to persist exchange", "tool", tool.Name(), "error", err)
		s.metrics.SaveFailed()
		// The answer already reached the client; report, don't fail.
		_ = emit(models.NewStatusChunk("대화 저장 실패 (저장소 오류)"))
		return result, nil
	}

	result.Saved = true
	s.metrics.AnswerScored(result.Score)
	_ = emit(models.NewStatusChunk("대화 저장 완료"))
	return result, nil
}

// History returns recent turns for a user.
func (s *ChatService) History(ctx context.Context, userID string, limit int) ([]models.ChatTurnView, error) {
	if userID == "" {
		userID = s.defaultUserID
	}
	return s.history.History(ctx, userID, limit)
}

// Stats returns per-tool usage aggregates.
func (s *ChatService) Stats(ctx context.Context) ([]models.ToolStats, error) {
	return s.history.Stats(ctx)
}
