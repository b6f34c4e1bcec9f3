package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"sigcheck/internal/engine/signature"
)

type HealthHandler struct {
	webhooks *signature.Service
	verifier *signature.Service
}

func NewHealthHandler(webhooks, verifier *signature.Service) *HealthHandler {
	return &HealthHandler{webhooks: webhooks, verifier: verifier}
}

func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	checks := make(map[string]string)

	if h.webhooks.HasSecret() {
		checks["webhook_secret"] = "healthy"
	} else {
		checks["webhook_secret"] = "unhealthy: not configured"
	}

	if h.verifier.HasSecret() {
		checks["verify_secret"] = "healthy"
	} else {
		checks["verify_secret"] = "unhealthy: not configured"
	}

	status := "healthy"
	for _, check := range checks {
		if len(check) >= 9 && check[:9] == "unhealthy" {
			status = "degraded"
			break
		}
	}

	response := struct {
		Status    string            `json:"status"`
		Timestamp int64             `json:"timestamp"`
		Checks    map[string]string `json:"checks"`
	}{
		Status:    status,
		Timestamp: time.Now().Unix(),
		Checks:    checks,
	}

	statusCode := http.StatusOK
	if status == "degraded" {
		statusCode = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}
