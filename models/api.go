package models

// AskRequest is the body of POST /api/ask.
type AskRequest struct {
	UserID     string `json:"user_id"`
	Question   string `json:"question" binding:"required"`
	SearchMode string `json:"search_mode"` // "general" or "law"
}

// HistoryResponse is the body of GET /api/history.
type HistoryResponse struct {
	Total   int            `json:"total"`
	History []ChatTurnView `json:"history"`
}

// StatsResponse is the body of GET /api/history/stats.
type StatsResponse struct {
	Stats []ToolStats `json:"stats"`
}

// SearchResult is one ranked hit from a web search backend.
type SearchResult struct {
	Title   string `json:"title"`
	Link    string `json:"link"`
	Snippet string `json:"snippet"`
	Source  string `json:"source"`
}
