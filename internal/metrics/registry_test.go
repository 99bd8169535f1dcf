package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, c.Write(m))
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	m := &dto.Metric{}
	require.NoError(t, g.Write(m))
	return m.GetGauge().GetValue()
}

func TestRegistry_IndependentInstances(t *testing.T) {
	a := New()
	b := New()

	a.SeriesServed("synthetic")

	assert.Equal(t, 1.0, counterValue(t, a.SeriesSources.WithLabelValues("synthetic")))
	assert.Equal(t, 0.0, counterValue(t, b.SeriesSources.WithLabelValues("synthetic")))
}

func TestRegistry_CacheHitRatio(t *testing.T) {
	r := New()

	r.CacheLookup("search", false)
	r.CacheLookup("search", true)
	r.CacheLookup("history", true)
	r.CacheLookup("pair", false)

	assert.Equal(t, 0.5, gaugeValue(t, r.CacheHitRatio))
	assert.Equal(t, 1.0, counterValue(t, r.CacheHits.WithLabelValues("search")))
	assert.Equal(t, 1.0, counterValue(t, r.CacheMisses.WithLabelValues("pair")))
}

func TestRegistry_UpstreamAndHTTP(t *testing.T) {
	r := New()

	r.UpstreamRequest("search", "ok", 120*time.Millisecond)
	r.UpstreamRequest("search", "status", 80*time.Millisecond)
	r.ObserveHTTP("/api/pairs", 200, 10*time.Millisecond)
	r.StaleDropped("series")
	r.SessionOpened()
	r.SessionOpened()
	r.SessionClosed()

	assert.Equal(t, 1.0, counterValue(t, r.UpstreamRequests.WithLabelValues("search", "ok")))
	assert.Equal(t, 1.0, counterValue(t, r.UpstreamRequests.WithLabelValues("search", "status")))
	assert.Equal(t, 1.0, counterValue(t, r.HTTPRequests.WithLabelValues("/api/pairs", "200")))
	assert.Equal(t, 1.0, counterValue(t, r.StaleDrops.WithLabelValues("series")))
	assert.Equal(t, 1.0, gaugeValue(t, r.StreamSessions))
}

func TestRegistry_Handler(t *testing.T) {
	r := New()
	r.SeriesServed("primary")

	rr := httptest.NewRecorder()
	r.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	body, err := io.ReadAll(rr.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `pairscreen_series_served_total{source="primary"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
