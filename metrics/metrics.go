// Package metrics collects Prometheus counters and histograms for the
// question pipeline and serves them on the metrics endpoints.
package metrics

import (
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Stream outcome labels.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusAborted   = "aborted"
)

// Collector owns a private registry so tests can instantiate it freely.
// All record methods are safe on a nil receiver, so callers need no guards
// when metrics are disabled.
type Collector struct {
	registry *prometheus.Registry
	start    time.Time

	requests       *prometheus.CounterVec
	streamDuration *prometheus.HistogramVec
	chunksEmitted  *prometheus.CounterVec
	saveFailures   prometheus.Counter
	answerScore    prometheus.Histogram
	activeStreams  prometheus.Gauge

	totalRequests atomic.Int64
	totalErrors   atomic.Int64
}

// NewCollector creates a collector with all pipeline metrics registered.
func NewCollector() *Collector {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Collector{
		registry: registry,
		start:    time.Now(),

		requests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llex",
			Name:      "requests_total",
			Help:      "Question streams by tool and outcome",
		}, []string{"tool", "status"}),

		streamDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "llex",
			Name:      "stream_duration_seconds",
			Help:      "Wall time from classification to end of stream",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
		}, []string{"tool"}),

		chunksEmitted: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llex",
			Name:      "chunks_emitted_total",
			Help:      "Stream chunks delivered downstream by event kind",
		}, []string{"event"}),

		saveFailures: factory.NewCounter(prometheus.CounterOpts{
			Namespace: "llex",
			Name:      "save_failures_total",
			Help:      "Completed exchanges that could not be persisted",
		}),

		answerScore: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: "llex",
			Name:      "answer_score",
			Help:      "Quality score of persisted answers",
			Buckets:   []float64{35, 40, 50, 60, 70, 80, 90, 100},
		}),

		activeStreams: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "llex",
			Name:      "active_streams",
			Help:      "Streams currently in flight",
		}),
	}
}

// StreamStarted marks one stream in flight.
func (c *Collector) StreamStarted() {
	if c == nil {
		return
	}
	c.activeStreams.Inc()
}

// StreamFinished records the outcome of one stream.
func (c *Collector) StreamFinished(tool, status string, duration time.Duration) {
	if c == nil {
		return
	}
	c.activeStreams.Dec()
	c.requests.WithLabelValues(tool, status).Inc()
	c.streamDuration.WithLabelValues(tool).Observe(duration.Seconds())
	c.totalRequests.Add(1)
	if status != StatusSuccess {
		c.totalErrors.Add(1)
	}
}

// ChunkEmitted counts one delivered chunk.
func (c *Collector) ChunkEmitted(event string) {
	if c == nil {
		return
	}
	c.chunksEmitted.WithLabelValues(event).Inc()
}

// SaveFailed counts one persistence failure.
func (c *Collector) SaveFailed() {
	if c == nil {
		return
	}
	c.saveFailures.Inc()
}

// AnswerScored records the quality score of a persisted answer.
func (c *Collector) AnswerScored(score int) {
	if c == nil {
		return
	}
	c.answerScore.Observe(float64(score))
}

// Handler serves the registry in Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Summary is the human-readable aggregate for the summary endpoint.
type Summary struct {
	UptimeSeconds float64 `json:"uptime_seconds"`
	TotalRequests int64   `json:"total_requests"`
	TotalErrors   int64   `json:"total_errors"`
	ErrorRate     float64 `json:"error_rate"`
	Timestamp     string  `json:"timestamp"`
}

// Summarize returns the current aggregate counters.
func (c *Collector) Summarize() Summary {
	requests := c.totalRequests.Load()
	errors := c.totalErrors.Load()

	denominator := requests
	if denominator == 0 {
		denominator = 1
	}
	return Summary{
		UptimeSeconds: time.Since(c.start).Seconds(),
		TotalRequests: requests,
		TotalErrors:   errors,
		ErrorRate:     float64(errors) / float64(denominator),
		Timestamp:     time.Now().Format(time.RFC3339),
	}
}
