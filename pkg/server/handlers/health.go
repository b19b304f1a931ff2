package handlers

import (
	"net/http"
	"time"
)

// HealthHandler handles health check requests for liveness probes.
type HealthHandler struct{}

// NewHealthHandler creates a new health check handler.
func NewHealthHandler() *HealthHandler {
	return &HealthHandler{}
}

// ServeHTTP implements http.Handler for liveness checks.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Unix(),
	})
}

// ReadyHandler handles readiness check requests. The service is ready
// once its stores answer queries.
type ReadyHandler struct {
	checks []func() error
}

// NewReadyHandler creates a readiness handler from store checks.
func NewReadyHandler(checks ...func() error) *ReadyHandler {
	return &ReadyHandler{checks: checks}
}

// ServeHTTP implements http.Handler for readiness checks.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	for _, check := range h.checks {
		if err := check(); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
				"status":    "not_ready",
				"error":     err.Error(),
				"timestamp": time.Now().Unix(),
			})
			return
		}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ready",
		"timestamp": time.Now().Unix(),
	})
}
