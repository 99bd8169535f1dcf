package dexscreener

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/pairscreen/internal/data/cache"
)

const searchBody = `{
  "schemaVersion": "1.0.0",
  "pairs": [
    {
      "chainId": "ethereum",
      "dexId": "uniswap",
      "url": "https://dexscreener.com/ethereum/0xabc",
      "pairAddress": "0xabc",
      "baseToken": {"address": "0x1", "name": "Pepe", "symbol": "PEPE"},
      "quoteToken": {"address": "0x2", "name": "Wrapped Ether", "symbol": "WETH"},
      "priceNative": "0.000000003",
      "priceUsd": "0.00001234",
      "txns": {"h1": {"buys": 10, "sells": 5}, "h6": {"buys": 60, "sells": 40}, "h24": {"buys": 900, "sells": 700}},
      "volume": {"h1": 1500.5, "h6": 9000, "h24": 64000.25},
      "priceChange": {"m5": 0.1, "h1": -1.2, "h24": 12},
      "liquidity": {"usd": 250000, "base": 1000000, "quote": 50},
      "fdv": 1200000,
      "pairCreatedAt": 1700000000000,
      "info": {"imageUrl": "https://img/pepe.png", "websites": [{"url": "https://pepe.vip"}], "socials": [{"type": "twitter", "url": "https://x.com/pepe"}]}
    },
    {
      "chainId": "solana",
      "dexId": "raydium",
      "pairAddress": "So1",
      "baseToken": {"symbol": "SOL"},
      "quoteToken": {"symbol": "USDC"},
      "priceUsd": null,
      "txns": {"h24": 42}
    }
  ]
}`

type mockObserver struct {
	mock.Mock
}

func (m *mockObserver) UpstreamRequest(endpoint, result string, elapsed time.Duration) {
	m.Called(endpoint, result)
}

func (m *mockObserver) CacheLookup(endpoint string, hit bool) {
	m.Called(endpoint, hit)
}

func testConfig(baseURL string) Config {
	return Config{
		BaseURL:        baseURL,
		RateLimitRPS:   1000,
		Burst:          100,
		RequestTimeout: 2 * time.Second,
	}
}

func TestSearch_DecodesPairs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/search", r.URL.Path)
		assert.Equal(t, "pepe weth", r.URL.Query().Get("q"))
		assert.Equal(t, "AgenticDeFiScreener/1.0", r.Header.Get("User-Agent"))
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	got, err := c.Search(context.Background(), "pepe weth")
	require.NoError(t, err)
	require.Len(t, got, 2)

	p := got[0]
	assert.Equal(t, "ethereum", p.ChainID)
	assert.Equal(t, "PEPE", p.BaseToken.Symbol)
	require.NotNil(t, p.PriceUSD)
	assert.InDelta(t, 0.00001234, *p.PriceUSD, 1e-12)
	assert.Equal(t, int64(1600), p.Txns24h())
	assert.Equal(t, int64(15), *p.Txns.H1)
	assert.Equal(t, 64000.25, p.Volume24h())
	assert.Equal(t, 250000.0, p.LiquidityUSD())
	assert.Nil(t, p.PriceChange.H6)
	require.NotNil(t, p.PairCreatedAt)
	assert.Equal(t, int64(1700000000000), *p.PairCreatedAt)
	require.NotNil(t, p.Info)
	assert.Equal(t, "https://x.com/pepe", p.Info.Socials[0].URL)

	sol := got[1]
	assert.Nil(t, sol.PriceUSD)
	assert.Nil(t, sol.Liquidity.USD)
	assert.Equal(t, int64(42), sol.Txns24h())
	assert.Nil(t, sol.Info)
}

func TestSearch_MissingPairsIsEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"schemaVersion":"1.0.0","pairs":null}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	got, err := c.Search(context.Background(), "nothing")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestSearch_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "top")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamStatus)
	code, ok := StatusCode(err)
	assert.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, code)
}

func TestSearch_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`<html>`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "top")
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestSearch_CachedWithinTTL(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Write([]byte(searchBody))
	}))
	defer srv.Close()

	obs := &mockObserver{}
	obs.On("CacheLookup", "search", false).Once()
	obs.On("UpstreamRequest", "search", ResultOK).Once()
	obs.On("CacheLookup", "search", true).Once()

	c, err := New(testConfig(srv.URL), WithCache(cache.NewMemory()), WithObserver(obs))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "top")
	require.NoError(t, err)
	got, err := c.Search(context.Background(), "top")
	require.NoError(t, err)

	assert.Len(t, got, 2)
	assert.Equal(t, int32(1), calls.Load())
	obs.AssertExpectations(t)
}

func TestBreaker_OpensAfterConsecutiveFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Breaker.ConsecutiveFailures = 2
	cfg.Breaker.Timeout = time.Hour
	c, err := New(cfg)
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		_, err = c.Search(context.Background(), "top")
		assert.ErrorIs(t, err, ErrUpstreamStatus)
	}
	_, err = c.Search(context.Background(), "top")
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
	assert.Equal(t, ResultOpen, resultOf(err))

	statuses := c.Breakers()
	require.Len(t, statuses, 3)
	assert.Equal(t, EndpointSearch, statuses[0].Endpoint)
	assert.Equal(t, "open", statuses[0].State)
	assert.Equal(t, "closed", statuses[2].State)
}

func TestBreaker_IgnoresNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Breaker.ConsecutiveFailures = 1
	c, err := New(cfg)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = c.Snapshot(context.Background(), "ethereum", "0xdead")
		assert.ErrorIs(t, err, ErrUpstreamStatus)
	}
	assert.Equal(t, "closed", c.Breakers()[1].State)
}

func TestBreaker_IgnoresCallerCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-time.After(100 * time.Millisecond):
		case <-r.Context().Done():
			return
		}
		w.Write([]byte(`{"s":"ok","t":[1],"c":[2],"v":[3]}`))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Breaker.ConsecutiveFailures = 2
	cfg.Breaker.Timeout = time.Hour
	c, err := New(cfg)
	require.NoError(t, err)

	now := time.Now()
	for i := 0; i < 5; i++ {
		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(10*time.Millisecond, cancel)
		_, err = c.History(ctx, "ethereum:0xabc", "30", now.Add(-time.Hour), now)
		assert.ErrorIs(t, err, context.Canceled)
		cancel()
	}

	status := c.Breakers()[2]
	assert.Equal(t, EndpointHistory, status.Endpoint)
	assert.Equal(t, "closed", status.State)
	assert.Zero(t, status.ConsecutiveFailures)

	body, err := c.History(context.Background(), "ethereum:0xfresh", "30", now.Add(-time.Hour), now)
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"ok","t":[1],"c":[2],"v":[3]}`, string(body))
}

func TestBreakerSuccess(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, true},
		{"cancelled", fmt.Errorf("read body: %w", context.Canceled), true},
		{"not found", &StatusError{Endpoint: EndpointPair, StatusCode: http.StatusNotFound}, true},
		{"rate limited", &StatusError{Endpoint: EndpointSearch, StatusCode: http.StatusTooManyRequests}, false},
		{"server error", &StatusError{Endpoint: EndpointSearch, StatusCode: http.StatusBadGateway}, false},
		{"deadline", context.DeadlineExceeded, false},
		{"transport", errors.New("connection reset"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, breakerSuccess(tt.err))
		})
	}
}

func TestSnapshot(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/latest/dex/pairs/bsc/0xpair", r.URL.Path)
		w.Write([]byte(`{"pairs":[{"priceUsd":"2.5","volume":{"h24":1000}},{"priceUsd":"9"}]}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	snap, err := c.Snapshot(context.Background(), "bsc", "0xpair")
	require.NoError(t, err)
	require.NotNil(t, snap.PriceUSD)
	require.NotNil(t, snap.Volume24h)
	assert.Equal(t, 2.5, *snap.PriceUSD)
	assert.Equal(t, 1000.0, *snap.Volume24h)
}

func TestDecodeSnapshot_Absent(t *testing.T) {
	snap, err := DecodeSnapshot([]byte(`{"pairs":[]}`))
	require.NoError(t, err)
	assert.Nil(t, snap.PriceUSD)
	assert.Nil(t, snap.Volume24h)

	snap, err = DecodeSnapshot([]byte(`{"pair":{"priceUsd":"abc","volume":{"h24":"12.5"}}}`))
	require.NoError(t, err)
	assert.Nil(t, snap.PriceUSD)
	require.NotNil(t, snap.Volume24h)
	assert.Equal(t, 12.5, *snap.Volume24h)
}

func TestHistory_Query(t *testing.T) {
	from := time.Unix(1_700_000_000, 0)
	to := from.Add(7 * 24 * time.Hour)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/tradingview/history", r.URL.Path)
		assert.Equal(t, "ethereum:0xabc", q.Get("symbol"))
		assert.Equal(t, "30", q.Get("resolution"))
		assert.Equal(t, "1700000000", q.Get("from"))
		assert.Equal(t, "1700604800", q.Get("to"))
		w.Write([]byte(`{"s":"ok","t":[1],"c":[2],"v":[3]}`))
	}))
	defer srv.Close()

	c, err := New(testConfig(srv.URL))
	require.NoError(t, err)

	body, err := c.History(context.Background(), "ethereum:0xabc", "30", from, to)
	require.NoError(t, err)
	assert.JSONEq(t, `{"s":"ok","t":[1],"c":[2],"v":[3]}`, string(body))
}

func TestConfig_Validate(t *testing.T) {
	cfg := DefaultConfig()
	assert.NoError(t, cfg.Validate())

	cfg.Breaker.ErrorRateThreshold = 150
	assert.Error(t, cfg.Validate())

	cfg = DefaultConfig()
	cfg.MaxRetries = -1
	assert.Error(t, cfg.Validate())

	_, err := New(Config{RateLimitRPS: -1})
	assert.Error(t, err)
}
