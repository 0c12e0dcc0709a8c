package llm

import (
	"context"
	"fmt"

	"llex-backend/config"
)

// NewProviderFromConfig constructs the configured provider.
func NewProviderFromConfig(ctx context.Context, cfg *config.Config) (Provider, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAIProvider(OpenAIConfig{
			APIKey:         cfg.OpenAIKey,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: cfg.EmbeddingModel,
			VectorDim:      cfg.VectorDim,
		})
	case "gemini":
		return NewGeminiProvider(ctx, GeminiConfig{
			APIKey:         cfg.GeminiKey,
			ChatModel:      cfg.ChatModel,
			EmbeddingModel: cfg.EmbeddingModel,
			VectorDim:      cfg.VectorDim,
		})
	default:
		return nil, fmt.Errorf("unknown LLM provider: %q", cfg.Provider)
	}
}
