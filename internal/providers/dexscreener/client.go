package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/sawpanic/pairscreen/internal/data/cache"
	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/infrastructure/httpclient"
)

const maxBodyBytes = 8 << 20

// Request outcomes reported to the Observer.
const (
	ResultOK        = "ok"
	ResultStatus    = "status"
	ResultError     = "error"
	ResultOpen      = "open"
	ResultCancelled = "cancelled"
)

// Observer receives per-request telemetry.
type Observer interface {
	UpstreamRequest(endpoint string, result string, elapsed time.Duration)
	CacheLookup(endpoint string, hit bool)
}

type nopObserver struct{}

func (nopObserver) UpstreamRequest(string, string, time.Duration) {}
func (nopObserver) CacheLookup(string, bool)                      {}

// Client talks to the public DexScreener API. It is safe for concurrent use.
type Client struct {
	cfg        Config
	httpClient *http.Client
	pool       *httpclient.Pool
	limiter    *rate.Limiter
	breakers   map[Endpoint]*gobreaker.CircuitBreaker
	cache      cache.Cache
	observer   Observer
}

// Option customises a Client.
type Option func(*Client)

// WithCache shares response bodies through c.
func WithCache(c cache.Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

// WithObserver reports request outcomes to o.
func WithObserver(o Observer) Option {
	return func(cl *Client) { cl.observer = o }
}

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) { cl.httpClient = hc }
}

// New builds a client. Zero config fields take their defaults.
func New(cfg Config, opts ...Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("dexscreener config: %w", err)
	}

	c := &Client{
		cfg:      cfg,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RateLimitRPS), cfg.Burst),
		breakers: newBreakers(cfg.Breaker),
		cache:    cache.Nop{},
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.pool = httpclient.New(httpclient.Config{
		MaxConcurrency: cfg.MaxConcurrency,
		RequestTimeout: cfg.RequestTimeout,
		MaxRetries:     cfg.MaxRetries,
		UserAgent:      cfg.UserAgent,
	}, c.httpClient)
	return c, nil
}

// Search runs a free-text pair search. An absent pairs array decodes as an
// empty result.
func (c *Client) Search(ctx context.Context, query string) ([]pairs.Pair, error) {
	q := url.Values{"q": {query}}
	body, err := c.fetch(ctx, EndpointSearch, "/latest/dex/search", q, "search:"+query, c.cfg.SearchTTL)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	out, err := DecodePairs(body)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", query, err)
	}
	return out, nil
}

// Snapshot is the current price and 24h volume of one pair. Either value is
// nil when the upstream omits it.
type Snapshot struct {
	PriceUSD  *float64
	Volume24h *float64
}

// Snapshot fetches the live state of a single pair.
func (c *Client) Snapshot(ctx context.Context, chainID, pairAddress string) (Snapshot, error) {
	path := "/latest/dex/pairs/" + url.PathEscape(chainID) + "/" + url.PathEscape(pairAddress)
	key := "pair:" + chainID + ":" + pairAddress
	body, err := c.fetch(ctx, EndpointPair, path, nil, key, c.cfg.SeriesTTL)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pair %s:%s: %w", chainID, pairAddress, err)
	}
	snap, err := DecodeSnapshot(body)
	if err != nil {
		return Snapshot{}, fmt.Errorf("pair %s:%s: %w", chainID, pairAddress, err)
	}
	return snap, nil
}

// History fetches a TradingView-style OHLCV payload and returns the raw body.
// The body is cached per symbol and resolution, not per window.
func (c *Client) History(ctx context.Context, symbol, resolution string, from, to time.Time) ([]byte, error) {
	q := url.Values{
		"symbol":     {symbol},
		"resolution": {resolution},
		"from":       {strconv.FormatInt(from.Unix(), 10)},
		"to":         {strconv.FormatInt(to.Unix(), 10)},
	}
	key := "history:" + symbol + ":" + resolution
	body, err := c.fetch(ctx, EndpointHistory, "/tradingview/history", q, key, c.cfg.SeriesTTL)
	if err != nil {
		return nil, fmt.Errorf("history %s: %w", symbol, err)
	}
	return body, nil
}

// Breakers reports the state of every endpoint breaker.
func (c *Client) Breakers() []BreakerStatus {
	out := make([]BreakerStatus, 0, len(endpoints))
	for _, ep := range endpoints {
		cb := c.breakers[ep]
		counts := cb.Counts()
		out = append(out, BreakerStatus{
			Endpoint:            ep,
			State:               cb.State().String(),
			Requests:            counts.Requests,
			TotalFailures:       counts.TotalFailures,
			ConsecutiveFailures: counts.ConsecutiveFailures,
		})
	}
	return out
}

func (c *Client) fetch(ctx context.Context, ep Endpoint, path string, query url.Values, cacheKey string, ttl time.Duration) ([]byte, error) {
	if b, ok := c.cache.Get(ctx, cacheKey); ok {
		c.observer.CacheLookup(string(ep), true)
		return b, nil
	}
	c.observer.CacheLookup(string(ep), false)

	start := time.Now()
	body, err := c.do(ctx, ep, path, query)
	elapsed := time.Since(start)
	c.observer.UpstreamRequest(string(ep), resultOf(err), elapsed)
	if err != nil {
		log.Debug().
			Err(err).
			Str("endpoint", string(ep)).
			Str("path", path).
			Dur("elapsed", elapsed).
			Msg("Upstream request failed")
		return nil, err
	}

	if ttl > 0 {
		c.cache.Set(ctx, cacheKey, body, ttl)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, ep Endpoint, path string, query url.Values) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	target := c.cfg.BaseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	res, err := c.breakers[ep].Execute(func() (interface{}, error) {
		resp, err := c.pool.Get(ctx, target)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
			return nil, &StatusError{Endpoint: ep, StatusCode: resp.StatusCode}
		}
		b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
		return b, nil
	})
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

func resultOf(err error) string {
	switch {
	case err == nil:
		return ResultOK
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		return ResultOpen
	case errors.Is(err, ErrUpstreamStatus):
		return ResultStatus
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return ResultCancelled
	default:
		return ResultError
	}
}
