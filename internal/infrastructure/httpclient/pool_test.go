package httpclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPool_RetriesTransientStatus(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		assert.Equal(t, "screener-test/1.0", r.Header.Get("User-Agent"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(Config{MaxRetries: 1, BackoffBase: time.Millisecond, UserAgent: "screener-test/1.0"}, nil)

	resp, err := p.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, int32(2), calls.Load())
	stats := p.Stats()
	assert.Equal(t, int64(2), stats.TotalRequests)
	assert.Equal(t, int64(1), stats.RetriedRequests)
	assert.Equal(t, int64(1), stats.SuccessRequests)
}

func TestPool_ReturnsLastStatusWhenRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	p := New(Config{MaxRetries: 2, BackoffBase: time.Millisecond}, nil)

	resp, err := p.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
	assert.Equal(t, int64(2), p.Stats().RetriedRequests)
}

func TestPool_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := New(Config{MaxRetries: 3, BackoffBase: time.Millisecond}, nil)

	resp, err := p.Get(context.Background(), srv.URL)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, int32(1), calls.Load())
}

func TestPool_CancelledContext(t *testing.T) {
	p := New(Config{MaxConcurrency: 1}, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	p.semaphore <- struct{}{}
	_, err := p.Get(ctx, "http://127.0.0.1:0")
	assert.ErrorIs(t, err, context.Canceled)
}
