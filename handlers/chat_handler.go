package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"llex-backend/models"
	"llex-backend/service"

	"github.com/gin-gonic/gin"
)

// ChatHandler handles HTTP requests for the question pipeline.
type ChatHandler struct {
	chatService  *service.ChatService
	historyLimit int
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(chatService *service.ChatService, historyLimit int) *ChatHandler {
	return &ChatHandler{
		chatService:  chatService,
		historyLimit: historyLimit,
	}
}

// Ask handles POST /api/ask. The response is a newline-delimited JSON
// stream: one chunk object per line, flushed before the next chunk is
// requested from the tool. Client disconnect cancels the request context,
// which stops the running tool at its next call boundary.
func (h *ChatHandler) Ask(c *gin.Context) {
	var req models.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "INVALID_REQUEST",
				"message": err.Error(),
			},
		})
		return
	}

	c.Header("Content-Type", "application/x-ndjson; charset=utf-8")
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Writer.WriteHeader(http.StatusOK)

	flusher, canFlush := c.Writer.(http.Flusher)

	emit := func(chunk models.StreamChunk) error {
		line, err := chunk.MarshalLine()
		if err != nil {
			slog.Error("failed to encode chunk", "event", chunk.Event, "error", err)
			return nil // a single unencodable chunk must not kill the stream
		}
		if _, err := c.Writer.Write(line); err != nil {
			return err
		}
		if canFlush {
			flusher.Flush()
		}
		return nil
	}

	ctx := c.Request.Context()
	result, err := h.chatService.Ask(ctx, req.UserID, req.Question, req.SearchMode, emit)
	switch {
	case err == nil:
		slog.Info("stream completed",
			"tool", result.Plan.Tool,
			"answer_len", len(result.Answer),
			"score", result.Score,
			"saved", result.Saved,
		)
	case errors.Is(err, context.Canceled):
		slog.Info("stream cancelled by client", "tool", result.Plan.Tool)
	default:
		slog.Error("stream aborted", "tool", result.Plan.Tool, "error", err)
	}
}

// History handles GET /api/history.
func (h *ChatHandler) History(c *gin.Context) {
	userID := c.Query("user_id")

	limit := h.historyLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"error": gin.H{
					"code":    "INVALID_LIMIT",
					"message": "limit must be a positive integer",
				},
			})
			return
		}
		limit = parsed
	}

	history, err := h.chatService.History(c.Request.Context(), userID, limit)
	if err != nil {
		slog.Error("history query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "HISTORY_FAILED",
				"message": "failed to load chat history",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.HistoryResponse{
		Total:   len(history),
		History: history,
	})
}

// Stats handles GET /api/history/stats.
func (h *ChatHandler) Stats(c *gin.Context) {
	stats, err := h.chatService.Stats(c.Request.Context())
	if err != nil {
		slog.Error("stats query failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error": gin.H{
				"code":    "STATS_FAILED",
				"message": "failed to load history stats",
			},
		})
		return
	}

	c.JSON(http.StatusOK, models.StatsResponse{Stats: stats})
}
