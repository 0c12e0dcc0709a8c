// Package llm wraps the language-model services the tools depend on. Each
// provider is stateless per call and safe for concurrent use.
package llm

import "context"

// DeltaFunc receives one streamed token fragment. Returning an error stops
// the stream; providers propagate it unchanged so callers can abort on
// downstream disconnect.
type DeltaFunc func(delta string) error

// Provider is the narrow LLM contract the tools consume.
type Provider interface {
	// Name identifies the backing service ("openai", "gemini").
	Name() string

	// Complete submits a prompt and returns the full response text.
	Complete(ctx context.Context, prompt string) (string, error)

	// StreamChat submits a prompt and delivers the response incrementally,
	// one fragment per onDelta call, in order.
	StreamChat(ctx context.Context, prompt string, onDelta DeltaFunc) error

	// Embed computes the embedding vector for a query text.
	Embed(ctx context.Context, text string) ([]float64, error)
}
