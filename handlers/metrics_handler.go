package handlers

import (
	"net/http"

	"llex-backend/metrics"

	"github.com/gin-gonic/gin"
)

// MetricsHandler serves the monitoring endpoints.
type MetricsHandler struct {
	collector *metrics.Collector
	exporter  gin.HandlerFunc
}

// NewMetricsHandler creates a new metrics handler.
func NewMetricsHandler(collector *metrics.Collector) *MetricsHandler {
	return &MetricsHandler{
		collector: collector,
		exporter:  gin.WrapH(collector.Handler()),
	}
}

// Metrics handles GET /api/metrics in Prometheus exposition format.
func (h *MetricsHandler) Metrics(c *gin.Context) {
	h.exporter(c)
}

// Summary handles GET /api/metrics/summary.
func (h *MetricsHandler) Summary(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "LLeX Backend",
		"metrics": h.collector.Summarize(),
		"endpoints": gin.H{
			"prometheus_metrics": "/api/metrics",
			"summary":            "/api/metrics/summary",
		},
	})
}
