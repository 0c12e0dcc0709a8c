package repository

import (
	"context"
	"fmt"

	"llex-backend/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ChatHistoryRepository handles database operations for conversation turns.
type ChatHistoryRepository struct {
	db *pgxpool.Pool
}

// NewChatHistoryRepository creates a new chat history repository.
func NewChatHistoryRepository(db *pgxpool.Pool) *ChatHistoryRepository {
	return &ChatHistoryRepository{db: db}
}

// SaveExchange writes the user turn and the assistant turn in one
// transaction, both-or-neither. Turn indices are the next two values for the
// session; the unique (session_id, turn_index) constraint guarantees strict
// monotonicity even under concurrent writers.
func (r *ChatHistoryRepository) SaveExchange(ctx context.Context, p models.ChatExchange) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var nextIndex int64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(MAX(turn_index), 0) + 1
		FROM chat_history
		WHERE session_id = $1`, p.SessionID).Scan(&nextIndex)
	if err != nil {
		return fmt.Errorf("failed to compute next turn index: %w", err)
	}

	insert := `
		INSERT INTO chat_history (session_id, turn_index, role, content, user_id, metadata, score)
		VALUES ($1, $2, $3, $4, $5, jsonb_build_object('tool', $6::text), $7)`

	_, err = tx.Exec(ctx, insert,
		p.SessionID, nextIndex, models.RoleUser, p.Question, p.UserID, p.Tool, p.Score)
	if err != nil {
		return fmt.Errorf("failed to insert user turn: %w", err)
	}

	_, err = tx.Exec(ctx, insert,
		p.SessionID, nextIndex+1, models.RoleAssistant, p.Answer, p.UserID, p.Tool, p.Score)
	if err != nil {
		return fmt.Errorf("failed to insert assistant turn: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit exchange: %w", err)
	}

	return nil
}

// History returns the most recent turns for a user, newest first.
func (r *ChatHistoryRepository) History(
	ctx context.Context,
	userID string,
	limit int,
) ([]models.ChatTurnView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, role, content, COALESCE(metadata->>'tool', ''), COALESCE(score, 0), created_at
		FROM chat_history
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query chat history: %w", err)
	}
	defer rows.Close()

	var turns []models.ChatTurnView
	for rows.Next() {
		var t models.ChatTurnView
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &t.Tool, &t.Score, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat history: %w", err)
	}

	return turns, nil
}

// Stats aggregates assistant turns per tool.
func (r *ChatHistoryRepository) Stats(ctx context.Context) ([]models.ToolStats, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			COALESCE(metadata->>'tool', '') AS tool,
			COUNT(*) AS count,
			COALESCE(AVG(score), 0) AS avg_score,
			MAX(created_at) AS last_used
		FROM chat_history
		WHERE role = $1
		GROUP BY metadata->>'tool'
		ORDER BY count DESC`, models.RoleAssistant)
	if err != nil {
		return nil, fmt.Errorf("failed to query history stats: %w", err)
	}
	defer rows.Close()

	var stats []models.ToolStats
	for rows.Next() {
		var s models.ToolStats
		if err := rows.Scan(&s.Tool, &s.Count, &s.AvgScore, &s.LastUsed); err != nil {
			return nil, fmt.Errorf("failed to scan tool stats: %w", err)
		}
		stats = append(stats, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history stats: %w", err)
	}

	return stats, nil
}

// SearchContent performs a keyword search over past conversation turns.
func (r *ChatHistoryRepository) SearchContent(
	ctx context.Context,
	keyword string,
	limit int,
) ([]models.ChatTurnView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, role, content, COALESCE(metadata->>'tool', ''), COALESCE(score, 0), created_at
		FROM chat_history
		WHERE content ILIKE $1
		ORDER BY created_at DESC
		LIMIT $2`, "%"+keyword+"%", limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search chat history: %w", err)
	}
	defer rows.Close()

	var turns []models.ChatTurnView
	for rows.Next() {
		var t models.ChatTurnView
		if err := rows.Scan(&t.ID, &t.Role, &t.Content, &t.Tool, &t.Score, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan chat turn: %w", err)
		}
		turns = append(turns, t)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating chat history: %w", err)
	}

	return turns, nil
}
