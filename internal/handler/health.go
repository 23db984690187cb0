package handler

import (
	"net/http"

	"github.com/bookleaf/support-platform/internal/events"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	eventsClient *events.Client
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(eventsClient *events.Client) *HealthHandler {
	return &HealthHandler{
		eventsClient: eventsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	// Check NATS connection
	if h.eventsClient == nil || !h.eventsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
