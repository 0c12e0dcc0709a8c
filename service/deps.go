package service

import (
	"context"

	"llex-backend/models"
)

// LawChunkStore is the retrieval-store surface the law tools consume.
// Implemented by repository.LawChunkRepository.
type LawChunkStore interface {
	GetByNormalizedKey(ctx context.Context, lawNameNorm, articleNumberNorm string) (*models.LawChunk, error)
	SearchSimilar(ctx context.Context, embedding []float64, limit int) ([]models.LawChunk, error)
	SearchText(ctx context.Context, keyword string, limit int) ([]models.LawChunk, error)
}

// HistoryStore is the conversation persistence surface.
// Implemented by repository.ChatHistoryRepository.
type HistoryStore interface {
	SaveExchange(ctx context.Context, p models.ChatExchange) error
	History(ctx context.Context, userID string, limit int) ([]models.ChatTurnView, error)
	Stats(ctx context.Context) ([]models.ToolStats, error)
	SearchContent(ctx context.Context, keyword string, limit int) ([]models.ChatTurnView, error)
}

// WebSearcher is the outbound search surface. Implemented by search.Client.
type WebSearcher interface {
	SearchNews(ctx context.Context, query string) ([]models.SearchResult, error)
	SearchBlogs(ctx context.Context, query string) ([]models.SearchResult, error)
	SearchWeb(ctx context.Context, query string) ([]models.SearchResult, error)
}
