// Package stream serves the live dashboard over a websocket: filter changes
// and periodic refreshes push pair lists, selections push series.
package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/pairscreen/internal/application"
	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/series"
)

// Screener is the application surface a session drives.
type Screener interface {
	Pairs(ctx context.Context, c pairs.Criteria) (application.PairsResult, error)
	Series(ctx context.Context, chainID, pairAddress string) (series.Series, error)
}

// Metrics receives session lifecycle and stale-drop events.
type Metrics interface {
	SessionOpened()
	SessionClosed()
	StaleDropped(kind string)
}

type nopMetrics struct{}

func (nopMetrics) SessionOpened()      {}
func (nopMetrics) SessionClosed()      {}
func (nopMetrics) StaleDropped(string) {}

// Config tunes websocket sessions.
type Config struct {
	RefreshInterval time.Duration
	PingInterval    time.Duration
	WriteTimeout    time.Duration
	AllowedOrigins  []string
}

// DefaultConfig returns the session defaults.
func DefaultConfig() Config {
	return Config{
		RefreshInterval: 30 * time.Second,
		PingInterval:    25 * time.Second,
		WriteTimeout:    10 * time.Second,
		AllowedOrigins:  []string{"*"},
	}
}

// Handler upgrades /ws requests and runs one session per connection.
type Handler struct {
	screener Screener
	metrics  Metrics
	defaults pairs.Criteria
	config   Config
	upgrader websocket.Upgrader

	closing   chan struct{}
	closeOnce sync.Once
}

// NewHandler creates a stream handler. Sessions start with defaults as their
// criteria. m may be nil.
func NewHandler(screener Screener, m Metrics, defaults pairs.Criteria, config Config) *Handler {
	def := DefaultConfig()
	if config.RefreshInterval <= 0 {
		config.RefreshInterval = def.RefreshInterval
	}
	if config.PingInterval <= 0 {
		config.PingInterval = def.PingInterval
	}
	if config.WriteTimeout <= 0 {
		config.WriteTimeout = def.WriteTimeout
	}
	if len(config.AllowedOrigins) == 0 {
		config.AllowedOrigins = def.AllowedOrigins
	}
	if m == nil {
		m = nopMetrics{}
	}

	h := &Handler{
		screener: screener,
		metrics:  m,
		defaults: defaults,
		config:   config,
		closing:  make(chan struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

func (h *Handler) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.config.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// ServeHTTP runs a session until the client leaves or Close is called.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		log.Warn().Err(err).Str("remote", r.RemoteAddr).Msg("WebSocket upgrade failed")
		return
	}

	s := newSession(uuid.New().String()[:8], conn, h.screener, h.metrics, h.defaults, h.config)

	h.metrics.SessionOpened()
	defer h.metrics.SessionClosed()

	log.Info().Str("session", s.id).Str("remote", r.RemoteAddr).Msg("Stream session opened")
	s.run(r.Context(), h.closing)
	log.Info().Str("session", s.id).Msg("Stream session closed")
}

// Close ends every open session. It is safe to call more than once.
func (h *Handler) Close() {
	h.closeOnce.Do(func() { close(h.closing) })
}
