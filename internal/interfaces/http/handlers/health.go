package handlers

import (
	"net/http"
	"time"

	"github.com/sony/gobreaker"

	"github.com/sawpanic/pairscreen/internal/providers/dexscreener"
)

// HealthResponse reports process and upstream state.
type HealthResponse struct {
	Status        string                      `json:"status"`
	Version       string                      `json:"version"`
	Timestamp     time.Time                   `json:"timestamp"`
	UptimeSeconds float64                     `json:"uptime_seconds"`
	Upstream      []dexscreener.BreakerStatus `json:"upstream,omitempty"`
}

// Health handles GET /health endpoint
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	resp := HealthResponse{
		Status:        "healthy",
		Version:       h.version,
		Timestamp:     time.Now().UTC(),
		UptimeSeconds: time.Since(h.started).Seconds(),
	}
	if h.breakers != nil {
		resp.Upstream = h.breakers.Breakers()
		for _, b := range resp.Upstream {
			if b.State == gobreaker.StateOpen.String() {
				resp.Status = "degraded"
			}
		}
	}
	h.writeJSON(w, http.StatusOK, resp)
}
