package models

import (
	"encoding/json"
	"time"
)

// Chunk event kinds. Consumers must ignore kinds they do not recognize.
const (
	ChunkText   = "text"
	ChunkStatus = "status"
	ChunkSource = "source"
	ChunkError  = "error"
)

// StreamChunk is the atomic unit of streamed output. Every tool produces an
// ordered sequence of these; the transport writes each one as a single
// newline-terminated JSON object.
type StreamChunk struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload"`
	At      float64     `json:"at,omitempty"`
}

// SourceInfo is the payload of a "source" chunk: one citation record.
type SourceInfo struct {
	Title     string  `json:"title"`
	Snippet   string  `json:"snippet"`
	Relevance float64 `json:"relevance"`
	Link      string  `json:"link,omitempty"`
}

// NewTextChunk creates a text chunk. The payload is appended (never replaces)
// to the running answer on the consumer side.
func NewTextChunk(text string) StreamChunk {
	return StreamChunk{Event: ChunkText, Payload: text, At: now()}
}

// NewStatusChunk creates a progress label chunk.
func NewStatusChunk(label string) StreamChunk {
	return StreamChunk{Event: ChunkStatus, Payload: label, At: now()}
}

// NewSourceChunk creates a citation chunk.
func NewSourceChunk(src SourceInfo) StreamChunk {
	return StreamChunk{Event: ChunkSource, Payload: src, At: now()}
}

// NewErrorChunk creates a terminal error chunk. Tools convert internal
// failures into one of these instead of returning the error upward.
func NewErrorChunk(msg string) StreamChunk {
	return StreamChunk{Event: ChunkError, Payload: msg, At: now()}
}

// Text returns the payload as a string for text/status/error chunks.
func (c StreamChunk) Text() string {
	if s, ok := c.Payload.(string); ok {
		return s
	}
	return ""
}

// MarshalLine encodes the chunk as one newline-terminated JSON record.
func (c StreamChunk) MarshalLine() ([]byte, error) {
	b, err := json.Marshal(c)
	if err != nil {
		return nil, err
	}
	return append(b, '\n'), nil
}

func now() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Second)
}
