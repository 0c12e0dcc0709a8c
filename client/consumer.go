// Package client consumes a chunk stream from the ask endpoint and
// reconstructs the answer on the receiving side.
package client

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"

	"llex-backend/models"
)

// Label is one status or error line observed during a stream.
type Label struct {
	Kind string
	Text string
}

// Consumer reassembles newline-delimited chunk records from raw byte ranges,
// independent of how the transport fragments them. Feed it byte ranges as
// they arrive, then Close it when the transport ends.
//
// State: a buffer of bytes not yet terminated by a newline, the running
// answer (ordered concatenation of text payloads, nothing else), the ordered
// status/error label list and the collected citations. A record that fails to
// decode is logged and skipped; it never aborts the stream. Unknown event
// kinds are ignored. Bytes of a multi-byte character split across ranges
// stay in the buffer until their line completes, so splitting the same
// stream at any offsets yields identical results.
type Consumer struct {
	buf     bytes.Buffer
	answer  strings.Builder
	labels  []Label
	sources []models.SourceInfo
	closed  bool
}

// NewConsumer creates an empty consumer.
func NewConsumer() *Consumer {
	return &Consumer{}
}

// Feed appends one received byte range and processes every complete line in
// the accumulated buffer. The trailing incomplete fragment is retained.
func (c *Consumer) Feed(p []byte) {
	if c.closed {
		return
	}
	c.buf.Write(p)

	for {
		data := c.buf.Bytes()
		i := bytes.IndexByte(data, '\n')
		if i < 0 {
			return
		}
		line := make([]byte, i)
		copy(line, data[:i])
		c.buf.Next(i + 1)
		c.consumeLine(line)
	}
}

// Close flushes any remaining buffered fragment as a final record. Further
// Feed calls are no-ops.
func (c *Consumer) Close() {
	if c.closed {
		return
	}
	c.closed = true
	if c.buf.Len() > 0 {
		c.consumeLine(c.buf.Bytes())
		c.buf.Reset()
	}
}

// consumeLine strips transport framing, decodes one record and applies it.
func (c *Consumer) consumeLine(line []byte) {
	line = bytes.TrimSuffix(line, []byte("\r"))
	line = bytes.TrimPrefix(line, []byte("data: "))
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return
	}

	var record struct {
		Event   string          `json:"event"`
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(line, &record); err != nil {
		slog.Debug("skipping malformed record", "error", err)
		return
	}

	switch record.Event {
	case models.ChunkText:
		var text string
		if err := json.Unmarshal(record.Payload, &text); err != nil {
			slog.Debug("skipping malformed text payload", "error", err)
			return
		}
		c.answer.WriteString(text)
	case models.ChunkStatus, models.ChunkError:
		var label string
		if err := json.Unmarshal(record.Payload, &label); err != nil {
			slog.Debug("skipping malformed label payload", "error", err)
			return
		}
		c.labels = append(c.labels, Label{Kind: record.Event, Text: label})
	case models.ChunkSource:
		var src models.SourceInfo
		if err := json.Unmarshal(record.Payload, &src); err != nil {
			slog.Debug("skipping malformed source payload", "error", err)
			return
		}
		c.sources = append(c.sources, src)
	default:
		// Unknown kinds are ignorable, not fatal.
	}
}

// Answer returns the running concatenated answer.
func (c *Consumer) Answer() string {
	return c.answer.String()
}

// Labels returns the ordered status/error labels seen so far.
func (c *Consumer) Labels() []Label {
	return c.labels
}

// Sources returns the citations seen so far.
func (c *Consumer) Sources() []models.SourceInfo {
	return c.sources
}
