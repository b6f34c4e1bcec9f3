package handlers

import (
	"net/http"

	"sigcheck/internal/platform/metrics"
)

type MetricsHandler struct {
	next http.Handler
}

func NewMetricsHandler() *MetricsHandler {
	return &MetricsHandler{next: metrics.Handler()}
}

func (h *MetricsHandler) Export(w http.ResponseWriter, r *http.Request) {
	h.next.ServeHTTP(w, r)
}
