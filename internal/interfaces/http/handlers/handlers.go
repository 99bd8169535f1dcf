package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/pairscreen/internal/application"
	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/providers/dexscreener"
	"github.com/sawpanic/pairscreen/internal/series"
)

// Screener is the application surface the handlers serve.
type Screener interface {
	Pairs(ctx context.Context, c pairs.Criteria) (application.PairsResult, error)
	Series(ctx context.Context, chainID, pairAddress string) (series.Series, error)
}

// BreakerReporter exposes upstream circuit breaker state for /health.
type BreakerReporter interface {
	Breakers() []dexscreener.BreakerStatus
}

// Handlers manages all HTTP endpoint handlers.
type Handlers struct {
	screener Screener
	breakers BreakerReporter
	defaults pairs.Criteria
	version  string
	started  time.Time
}

// NewHandlers wires the handlers. breakers may be nil.
func NewHandlers(screener Screener, breakers BreakerReporter, defaults pairs.Criteria, version string) *Handlers {
	return &Handlers{
		screener: screener,
		breakers: breakers,
		defaults: defaults,
		version:  version,
		started:  time.Now(),
	}
}

type ctxKey string

const requestIDKey ctxKey = "request_id"

// WithRequestID stores the request id on ctx.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestID returns the id stored by WithRequestID, or "unknown".
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return "unknown"
}

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error     string    `json:"error"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message"`
	RequestID string    `json:"request_id"`
	Timestamp time.Time `json:"timestamp"`
}

// writeJSON writes JSON response with proper error handling
func (h *Handlers) writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// writeError writes standardized error response
func (h *Handlers) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string) {
	h.writeErrorText(w, r, status, http.StatusText(status), code, message)
}

func (h *Handlers) writeErrorText(w http.ResponseWriter, r *http.Request, status int, text, code, message string) {
	h.writeJSON(w, status, ErrorResponse{
		Error:     text,
		Code:      code,
		Message:   message,
		RequestID: RequestID(r.Context()),
		Timestamp: time.Now().UTC(),
	})
}

// NotFound handles 404 responses
func (h *Handlers) NotFound(w http.ResponseWriter, r *http.Request) {
	h.writeError(w, r, http.StatusNotFound, "endpoint_not_found",
		"The requested endpoint does not exist")
}
