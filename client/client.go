package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"llex-backend/models"
)

// Result is the reconstruction of one completed stream.
type Result struct {
	Answer  string
	Labels  []Label
	Sources []models.SourceInfo
}

// Handlers carries the optional callbacks for one Ask call. OnComplete fires
// exactly once per completed stream and never for a cancelled or superseded
// one.
type Handlers struct {
	OnText     func(delta string)
	OnStatus   func(label string)
	OnError    func(msg string)
	OnComplete func(Result)
}

// Client consumes the ask endpoint. Issuing a new Ask cancels the previous
// in-flight one; only the newest stream's completion callback can fire.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu     sync.Mutex
	cancel context.CancelFunc
}

// New creates a streaming client for the given server base URL.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Ask submits a question and consumes the resulting chunk stream until it
// ends or ctx is cancelled. A previous in-flight Ask on the same client is
// cancelled first.
func (c *Client) Ask(ctx context.Context, req models.AskRequest, h Handlers) (*Result, error) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	if c.cancel != nil {
		c.cancel()
	}
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/ask", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("ask request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ask request failed: HTTP %d", resp.StatusCode)
	}

	consumer := NewConsumer()
	buf := make([]byte, 4096)
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			before := consumer.snapshot()
			consumer.Feed(buf[:n])
			dispatchNew(consumer, before, h)
		}
		if readErr != nil {
			if errors.Is(readErr, context.Canceled) || ctx.Err() != nil {
				return nil, context.Canceled
			}
			// End of stream, clean or otherwise: flush what remains.
			break
		}
	}

	before := consumer.snapshot()
	consumer.Close()
	dispatchNew(consumer, before, h)

	result := Result{
		Answer:  consumer.Answer(),
		Labels:  consumer.Labels(),
		Sources: consumer.Sources(),
	}
	if h.OnComplete != nil {
		h.OnComplete(result)
	}
	return &result, nil
}

// Cancel aborts the in-flight Ask, if any.
func (c *Client) Cancel() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// progress marks how much of the consumer state has been dispatched.
type progress struct {
	answerLen int
	labels    int
}

func (c *Consumer) snapshot() progress {
	return progress{answerLen: c.answer.Len(), labels: len(c.labels)}
}

// dispatchNew fires incremental callbacks for state added since the snapshot.
func dispatchNew(consumer *Consumer, before progress, h Handlers) {
	if h.OnText != nil {
		answer := consumer.Answer()
		if len(answer) > before.answerLen {
			h.OnText(answer[before.answerLen:])
		}
	}
	for _, label := range consumer.Labels()[before.labels:] {
		switch label.Kind {
		case models.ChunkStatus:
			if h.OnStatus != nil {
				h.OnStatus(label.Text)
			}
		case models.ChunkError:
			if h.OnError != nil {
				h.OnError(label.Text)
			}
		}
	}
}
