package handler

import (
	"net/http"

	"mockmate/internal/metrics"
)

// MetricsHandler exposes activity counters
type MetricsHandler struct {
	metrics *metrics.Metrics
}

// NewMetricsHandler creates a new metrics handler
func NewMetricsHandler(m *metrics.Metrics) *MetricsHandler {
	return &MetricsHandler{metrics: m}
}

// ServeHTTP handles GET /v1/metrics
func (h *MetricsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.metrics.GetSnapshot())
}
