package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"llex-backend/metrics"
)

func newMetricsRouter(collector *metrics.Collector) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMetricsHandler(collector)

	r := gin.New()
	api := r.Group("/api")
	api.GET("/metrics", h.Metrics)
	api.GET("/metrics/summary", h.Summary)
	return r
}

func TestMetricsEndpoint(t *testing.T) {
	collector := metrics.NewCollector()
	router := newMetricsRouter(collector)

	req := httptest.NewRequest("GET", "/api/metrics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "llex_active_streams")
}

func TestMetricsSummaryEndpoint(t *testing.T) {
	collector := metrics.NewCollector()
	router := newMetricsRouter(collector)

	req := httptest.NewRequest("GET", "/api/metrics/summary", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Status    string          `json:"status"`
		Service   string          `json:"service"`
		Metrics   metrics.Summary `json:"metrics"`
		Endpoints map[string]string
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "LLeX Backend", resp.Service)
	assert.Equal(t, "/api/metrics", resp.Endpoints["prometheus_metrics"])
	assert.GreaterOrEqual(t, resp.Metrics.UptimeSeconds, 0.0)
}
