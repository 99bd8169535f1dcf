package stream

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/providers/dexscreener"
	"github.com/sawpanic/pairscreen/internal/selection"
)

const (
	maxMessageSize = 8 << 10
	sendBuffer     = 16
)

const upstreamErrorText = "Dexscreener API error"

// session is one dashboard connection. The pair list and the series each
// have their own tracker, so a slow response never overwrites a newer one.
type session struct {
	id       string
	conn     *websocket.Conn
	screener Screener
	metrics  Metrics
	config   Config

	send chan ServerMessage

	pairsReq  selection.Tracker
	seriesReq selection.Tracker

	// mu guards criteria and selected, and orders pushes against them.
	mu       sync.Mutex
	criteria pairs.Criteria
	selected pairs.Key
}

func newSession(id string, conn *websocket.Conn, screener Screener, m Metrics, defaults pairs.Criteria, config Config) *session {
	return &session{
		id:       id,
		conn:     conn,
		screener: screener,
		metrics:  m,
		config:   config,
		send:     make(chan ServerMessage, sendBuffer),
		criteria: cloneCriteria(defaults),
	}
}

func (s *session) run(parent context.Context, closing <-chan struct{}) {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.writeLoop(ctx)
	}()
	go func() {
		defer wg.Done()
		s.refreshLoop(ctx, closing, cancel)
	}()

	s.refresh(ctx)
	s.readLoop(ctx)

	cancel()
	s.pairsReq.Stop()
	s.seriesReq.Stop()
	wg.Wait()
	_ = s.conn.Close()
}

func (s *session) readLoop(ctx context.Context) {
	pongWait := 2 * s.config.PingInterval
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := s.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Warn().Err(err).Str("session", s.id).Msg("Stream read failed")
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))

		var msg ClientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			s.push(ctx, errorMessage("message", "invalid message: "+err.Error()))
			continue
		}
		s.handle(ctx, msg)
	}
}

func (s *session) handle(ctx context.Context, msg ClientMessage) {
	log.Debug().Str("session", s.id).Str("type", msg.Type).Msg("Stream message")

	switch msg.Type {
	case TypeFilters:
		if msg.Criteria == nil {
			s.push(ctx, errorMessage(TypeFilters, "criteria are required"))
			return
		}
		c, err := normalizeCriteria(*msg.Criteria)
		if err != nil {
			s.push(ctx, errorMessage(TypeFilters, err.Error()))
			return
		}
		s.mu.Lock()
		s.criteria = c
		s.mu.Unlock()
		s.refresh(ctx)

	case TypeToggleChain:
		s.mu.Lock()
		s.criteria.Chains = pairs.ToggleChain(s.criteria.Chains, msg.ChainID)
		s.mu.Unlock()
		s.refresh(ctx)

	case TypeSelect:
		s.selectPair(ctx, pairs.Key{
			ChainID:     strings.TrimSpace(msg.ChainID),
			PairAddress: strings.TrimSpace(msg.PairAddress),
		})

	default:
		s.push(ctx, errorMessage("message", "unknown message type "+msg.Type))
	}
}

// refresh starts a pairs request with the current criteria, superseding any
// request still in flight.
func (s *session) refresh(ctx context.Context) {
	s.mu.Lock()
	c := cloneCriteria(s.criteria)
	s.mu.Unlock()

	reqCtx, ticket := s.pairsReq.Begin(ctx, pairs.Key{})
	go func() {
		result, err := s.screener.Pairs(reqCtx, c)

		s.mu.Lock()
		defer s.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if !s.pairsReq.Current(ticket) {
			s.metrics.StaleDropped(TypePairs)
			return
		}
		if err != nil {
			s.push(ctx, upstreamError(TypePairs, err))
			return
		}

		next := selection.Reconcile(s.selected, result.List())
		changed := next != s.selected
		s.selected = next
		s.push(ctx, ServerMessage{Type: TypePairs, Pairs: &result, Selection: &next})
		if changed {
			s.loadSeries(ctx, next)
		}
	}()
}

func (s *session) selectPair(ctx context.Context, key pairs.Key) {
	if key.ChainID == "" || key.PairAddress == "" {
		s.seriesReq.Stop()
		s.mu.Lock()
		s.selected = pairs.Key{}
		s.push(ctx, ServerMessage{Type: TypeIdle})
		s.mu.Unlock()
		return
	}

	s.mu.Lock()
	s.selected = key
	s.mu.Unlock()
	s.loadSeries(ctx, key)
}

// loadSeries must not take s.mu; refresh calls it while holding the lock.
func (s *session) loadSeries(ctx context.Context, key pairs.Key) {
	reqCtx, ticket := s.seriesReq.Begin(ctx, key)
	go func() {
		result, err := s.screener.Series(reqCtx, key.ChainID, key.PairAddress)

		s.mu.Lock()
		defer s.mu.Unlock()
		if ctx.Err() != nil {
			return
		}
		if !s.seriesReq.Current(ticket) {
			s.metrics.StaleDropped(TypeSeries)
			return
		}
		if err != nil {
			s.push(ctx, errorMessage(TypeSeries, err.Error()))
			return
		}
		s.push(ctx, ServerMessage{Type: TypeSeries, Selection: &key, Series: &result})
	}()
}

func (s *session) push(ctx context.Context, msg ServerMessage) {
	select {
	case s.send <- msg:
	case <-ctx.Done():
	}
}

func (s *session) writeLoop(ctx context.Context) {
	ping := time.NewTicker(s.config.PingInterval)
	defer ping.Stop()

	for {
		select {
		case msg := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := s.conn.WriteJSON(msg); err != nil {
				log.Warn().Err(err).Str("session", s.id).Msg("Stream write failed")
				_ = s.conn.Close()
				return
			}

		case <-ping.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := s.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				_ = s.conn.Close()
				return
			}

		case <-ctx.Done():
			deadline := time.Now().Add(s.config.WriteTimeout)
			_ = s.conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), deadline)
			_ = s.conn.Close()
			return
		}
	}
}

func (s *session) refreshLoop(ctx context.Context, closing <-chan struct{}, cancel context.CancelFunc) {
	ticker := time.NewTicker(s.config.RefreshInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-closing:
			cancel()
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func normalizeCriteria(c pairs.Criteria) (pairs.Criteria, error) {
	category, err := pairs.ParseCategory(string(c.Category))
	if err != nil {
		return pairs.Criteria{}, err
	}
	if c.MinLiquidity < 0 || c.MinVolume < 0 {
		return pairs.Criteria{}, errors.New("minimums cannot be negative")
	}
	return pairs.Criteria{
		Query:        strings.TrimSpace(c.Query),
		Chains:       pairs.ParseChains(strings.Join(c.Chains, ",")),
		MinLiquidity: c.MinLiquidity,
		MinVolume:    c.MinVolume,
		Category:     category,
	}, nil
}

func cloneCriteria(c pairs.Criteria) pairs.Criteria {
	c.Chains = append([]string(nil), c.Chains...)
	return c
}

func errorMessage(kind, text string) ServerMessage {
	return ServerMessage{Type: TypeError, Kind: kind, Error: text}
}

func upstreamError(kind string, err error) ServerMessage {
	msg := errorMessage(kind, upstreamErrorText)
	if code, ok := dexscreener.StatusCode(err); ok {
		msg.Status = code
	}
	return msg
}
