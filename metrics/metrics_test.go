package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llex-backend/models"
)

func TestCollectorRecordsStreams(t *testing.T) {
	c := NewCollector()

	c.StreamStarted()
	assert.Equal(t, 1.0, testutil.ToFloat64(c.activeStreams))

	c.ChunkEmitted(models.ChunkStatus)
	c.ChunkEmitted(models.ChunkText)
	c.ChunkEmitted(models.ChunkText)
	c.StreamFinished(models.ToolLawRAG, StatusSuccess, 1200*time.Millisecond)

	assert.Equal(t, 0.0, testutil.ToFloat64(c.activeStreams))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues(models.ToolLawRAG, StatusSuccess)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.chunksEmitted.WithLabelValues(models.ChunkText)))

	c.StreamStarted()
	c.StreamFinished(models.ToolLawRAG, StatusFailed, 300*time.Millisecond)
	assert.Equal(t, 1.0, testutil.ToFloat64(c.requests.WithLabelValues(models.ToolLawRAG, StatusFailed)))

	summary := c.Summarize()
	assert.Equal(t, int64(2), summary.TotalRequests)
	assert.Equal(t, int64(1), summary.TotalErrors)
	assert.InDelta(t, 0.5, summary.ErrorRate, 1e-9)
	assert.NotEmpty(t, summary.Timestamp)
}

func TestCollectorSaveAndScore(t *testing.T) {
	c := NewCollector()

	c.SaveFailed()
	c.SaveFailed()
	assert.Equal(t, 2.0, testutil.ToFloat64(c.saveFailures))

	c.AnswerScored(50)
	// Histograms have no single value; the exposition output carries the count.
}

func TestCollectorNilReceiverIsSafe(t *testing.T) {
	var c *Collector
	c.StreamStarted()
	c.StreamFinished(models.ToolGeneral, StatusSuccess, time.Second)
	c.ChunkEmitted(models.ChunkText)
	c.SaveFailed()
	c.AnswerScored(35)
}

func TestCollectorHandlerExposition(t *testing.T) {
	c := NewCollector()
	c.StreamStarted()
	c.StreamFinished(models.ToolNews, StatusSuccess, time.Second)

	w := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/api/metrics", nil)
	c.Handler().ServeHTTP(w, req)

	require.Equal(t, 200, w.Code)
	body := w.Body.String()
	assert.Contains(t, body, "llex_requests_total")
	assert.Contains(t, body, `tool="news_tool"`)
	assert.Contains(t, body, "llex_stream_duration_seconds")
}

func TestSummaryEmptyErrorRate(t *testing.T) {
	c := NewCollector()
	summary := c.Summarize()
	assert.Zero(t, summary.TotalRequests)
	assert.Zero(t, summary.ErrorRate, "no requests means no error rate, not a division by zero")
}
