package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	defaultGeminiChatModel      = "gemini-2.0-flash"
	defaultGeminiEmbeddingModel = "gemini-embedding-001"
	geminiEmbeddingAPI          = "https://generativelanguage.googleapis.com/v1beta/models/%s:embedContent"

	maxRetries     = 3
	initialBackoff = time.Second
)

var ErrEmbeddingFailed = errors.New("failed to generate embedding")

// GeminiConfig holds configuration for the Gemini provider.
type GeminiConfig struct {
	APIKey         string
	ChatModel      string
	EmbeddingModel string
	VectorDim      int
	EmbeddingURL   string // override for tests; defaults to the Gemini API
}

// GeminiProvider implements Provider on Google's generative language API.
// Generation goes through the genai client; embeddings use the REST
// embedContent endpoint directly with retry and backoff.
type GeminiProvider struct {
	client         *genai.Client
	apiKey         string
	chatModel      string
	embeddingModel string
	vectorDim      int
	embeddingURL   string
	httpClient     *http.Client
}

// NewGeminiProvider creates a Gemini-backed provider.
func NewGeminiProvider(ctx context.Context, cfg GeminiConfig) (*GeminiProvider, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Gemini API key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	chatModel := cfg.ChatModel
	if chatModel == "" {
		chatModel = defaultGeminiChatModel
	}
	embeddingModel := cfg.EmbeddingModel
	if embeddingModel == "" {
		embeddingModel = defaultGeminiEmbeddingModel
	}
	embeddingURL := cfg.EmbeddingURL
	if embeddingURL == "" {
		embeddingURL = fmt.Sprintf(geminiEmbeddingAPI, embeddingModel)
	}

	return &GeminiProvider{
		client:         client,
		apiKey:         cfg.APIKey,
		chatModel:      chatModel,
		embeddingModel: embeddingModel,
		vectorDim:      cfg.VectorDim,
		embeddingURL:   embeddingURL,
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}, nil
}

// Name returns the provider name.
func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete submits a prompt and returns the full response text.
func (p *GeminiProvider) Complete(ctx context.Context, prompt string) (string, error) {
	model := p.client.GenerativeModel(p.chatModel)
	model.SetTemperature(0.3)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	return collectText(resp), nil
}

// StreamChat streams the response token fragments in order.
func (p *GeminiProvider) StreamChat(ctx context.Context, prompt string, onDelta DeltaFunc) error {
	model := p.client.GenerativeModel(p.chatModel)
	model.SetTemperature(0.3)

	iter := model.GenerateContentStream(ctx, genai.Text(prompt))
	for {
		resp, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("Gemini stream error: %w", err)
		}
		if delta := collectText(resp); delta != "" {
			if err := onDelta(delta); err != nil {
				return err
			}
		}
	}
}

func collectText(resp *genai.GenerateContentResponse) string {
	var buf bytes.Buffer
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if t, ok := part.(genai.Text); ok {
				buf.WriteString(string(t))
			}
		}
	}
	return buf.String()
}

// embeddingRequest represents an embedContent API request.
type embeddingRequest struct {
	Model                string       `json:"model"`
	Content              contentInput `json:"content"`
	TaskType             string       `json:"task_type,omitempty"`
	OutputDimensionality int          `json:"output_dimensionality,omitempty"`
}

type contentInput struct {
	Parts []partInput `json:"parts"`
}

type partInput struct {
	Text string `json:"text"`
}

// embeddingResponse represents an embedContent API response.
type embeddingResponse struct {
	Embedding embeddingData `json:"embedding"`
}

type embeddingData struct {
	Values []float64 `json:"values"`
}

// Embed generates an L2-normalized query embedding with retry and backoff.
func (p *GeminiProvider) Embed(ctx context.Context, text string) ([]float64, error) {
	reqBody := embeddingRequest{
		Model: "models/" + p.embeddingModel,
		Content: contentInput{
			Parts: []partInput{{Text: text}},
		},
		TaskType:             "RETRIEVAL_QUERY",
		OutputDimensionality: p.vectorDim,
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	backoff := initialBackoff
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		req, err := http.NewRequestWithContext(ctx, "POST", p.embeddingURL, bytes.NewBuffer(jsonData))
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-goog-api-key", p.apiKey)

		resp, err := p.httpClient.Do(req)
		if err != nil {
			if attempt == maxRetries-1 {
				return nil, fmt.Errorf("failed to send request after %d attempts: %w", maxRetries, err)
			}
			continue
		}

		if resp.StatusCode == http.StatusOK {
			var apiResp embeddingResponse
			if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
				resp.Body.Close()
				if attempt == maxRetries-1 {
					return nil, fmt.Errorf("failed to decode response: %w", err)
				}
				continue
			}
			resp.Body.Close()
			return normalizeVector(apiResp.Embedding.Values), nil
		}

		resp.Body.Close()

		// Don't retry on 400 or 401 errors
		if resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("API error: %d", resp.StatusCode)
		}

		if attempt == maxRetries-1 {
			return nil, fmt.Errorf("API error after %d attempts: %d", maxRetries, resp.StatusCode)
		}
	}

	return nil, ErrEmbeddingFailed
}

func normalizeVector(embedding []float64) []float64 {
	norm := 0.0
	for _, v := range embedding {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm > 0 {
		for i := range embedding {
			embedding[i] /= norm
		}
	}
	return embedding
}
