package models

import (
	"time"

	"github.com/google/uuid"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatTurn is one persisted message within a session. Turn indices strictly
// increase per session; the store enforces uniqueness of
// (session_id, turn_index).
type ChatTurn struct {
	ID        uuid.UUID         `json:"id"`
	SessionID string            `json:"session_id"`
	TurnIndex int64             `json:"turn_index"`
	Role      string            `json:"role"`
	Content   string            `json:"content"`
	UserID    string            `json:"user_id"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	Score     int               `json:"score"`
	CreatedAt time.Time         `json:"created_at"`
}

// ChatTurnView is the projection returned by the history endpoint.
type ChatTurnView struct {
	ID        uuid.UUID `json:"id"`
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Tool      string    `json:"tool,omitempty"`
	Score     int       `json:"score"`
	CreatedAt time.Time `json:"created_at"`
}

// ChatExchange carries one completed question/answer pair for persistence.
type ChatExchange struct {
	UserID    string
	SessionID string
	Question  string
	Answer    string
	Tool      string
	Score     int
}

// ToolStats aggregates assistant turns per tool for the stats endpoint.
type ToolStats struct {
	Tool     string     `json:"tool"`
	Count    int64      `json:"count"`
	AvgScore float64    `json:"avg_score"`
	LastUsed *time.Time `json:"last_used,omitempty"`
}
