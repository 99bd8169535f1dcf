package httpclient

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"net"
	"net/http"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
)

// Config tunes a Pool.
type Config struct {
	MaxConcurrency int
	RequestTimeout time.Duration
	MaxRetries     int
	BackoffBase    time.Duration
	BackoffMax     time.Duration
	UserAgent      string
}

// Pool is an http.Client wrapper bounding in-flight requests and retrying
// idempotent GETs on transient failures.
type Pool struct {
	config    Config
	semaphore chan struct{}
	client    *http.Client
	stats     counters
}

// Stats is a snapshot of the pool counters.
type Stats struct {
	TotalRequests   int64
	SuccessRequests int64
	FailedRequests  int64
	RetriedRequests int64
}

type counters struct {
	total   atomic.Int64
	success atomic.Int64
	failed  atomic.Int64
	retried atomic.Int64
}

// New builds a Pool. client may be nil.
func New(config Config, client *http.Client) *Pool {
	if config.MaxConcurrency <= 0 {
		config.MaxConcurrency = 8
	}
	if config.BackoffBase <= 0 {
		config.BackoffBase = 200 * time.Millisecond
	}
	if config.BackoffMax <= 0 {
		config.BackoffMax = 2 * time.Second
	}
	if client == nil {
		client = &http.Client{Timeout: config.RequestTimeout}
	}
	return &Pool{
		config:    config,
		semaphore: make(chan struct{}, config.MaxConcurrency),
		client:    client,
	}
}

// Get issues a GET for url. The caller closes the response body.
func (p *Pool) Get(ctx context.Context, url string) (*http.Response, error) {
	select {
	case p.semaphore <- struct{}{}:
		defer func() { <-p.semaphore }()
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	var lastErr error
	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			p.stats.retried.Add(1)
			backoff := p.backoff(attempt)
			log.Debug().
				Dur("backoff", backoff).
				Int("attempt", attempt).
				Str("url", url).
				Msg("Retrying upstream request")

			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if p.config.UserAgent != "" {
			req.Header.Set("User-Agent", p.config.UserAgent)
		}

		p.stats.total.Add(1)
		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			p.stats.failed.Add(1)
			if ctx.Err() == nil && retryableError(err) {
				continue
			}
			return nil, err
		}

		if retryableStatus(resp.StatusCode) && attempt < p.config.MaxRetries {
			resp.Body.Close()
			lastErr = fmt.Errorf("HTTP %d", resp.StatusCode)
			p.stats.failed.Add(1)
			continue
		}

		p.stats.success.Add(1)
		return resp, nil
	}

	return nil, lastErr
}

// Stats returns the current counters.
func (p *Pool) Stats() Stats {
	return Stats{
		TotalRequests:   p.stats.total.Load(),
		SuccessRequests: p.stats.success.Load(),
		FailedRequests:  p.stats.failed.Load(),
		RetriedRequests: p.stats.retried.Load(),
	}
}

func (p *Pool) backoff(attempt int) time.Duration {
	backoff := p.config.BackoffBase * time.Duration(1<<uint(attempt-1))
	if backoff > p.config.BackoffMax {
		backoff = p.config.BackoffMax
	}
	// up to 10% jitter
	return backoff + time.Duration(rand.Float64()*0.1*float64(backoff))
}

func retryableError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, syscall.ECONNREFUSED) || errors.Is(err, syscall.ECONNRESET)
}

func retryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}
