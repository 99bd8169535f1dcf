// Package metrics holds the Prometheus instruments of the screener.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"github.com/rs/zerolog/log"
)

// Registry owns a private prometheus.Registry so tests and multiple servers
// in one process never collide.
type Registry struct {
	reg *prometheus.Registry

	UpstreamRequests *prometheus.CounterVec
	UpstreamDuration *prometheus.HistogramVec

	CacheHitRatio prometheus.Gauge
	CacheHits     *prometheus.CounterVec
	CacheMisses   *prometheus.CounterVec

	SeriesSources *prometheus.CounterVec

	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	StreamSessions prometheus.Gauge
	StaleDrops     *prometheus.CounterVec
}

var upstreamEndpoints = []string{"search", "pair", "history"}

// New creates and registers every instrument.
func New() *Registry {
	r := &Registry{
		reg: prometheus.NewRegistry(),

		UpstreamRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscreen_upstream_requests_total",
				Help: "Upstream API requests by endpoint and result",
			},
			[]string{"endpoint", "result"},
		),

		UpstreamDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairscreen_upstream_duration_seconds",
				Help:    "Upstream API request latency in seconds",
				Buckets: []float64{0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0},
			},
			[]string{"endpoint"},
		),

		CacheHitRatio: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairscreen_cache_hit_ratio",
				Help: "Response cache hit ratio (0.0 to 1.0)",
			},
		),

		CacheHits: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscreen_cache_hits_total",
				Help: "Response cache hits by endpoint",
			},
			[]string{"endpoint"},
		),

		CacheMisses: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscreen_cache_misses_total",
				Help: "Response cache misses by endpoint",
			},
			[]string{"endpoint"},
		),

		SeriesSources: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscreen_series_served_total",
				Help: "Series served by provenance (primary or synthetic)",
			},
			[]string{"source"},
		),

		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscreen_http_requests_total",
				Help: "API requests by route and status code",
			},
			[]string{"route", "code"},
		),

		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pairscreen_http_duration_seconds",
				Help:    "API request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"route"},
		),

		StreamSessions: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pairscreen_stream_sessions",
				Help: "Open websocket sessions",
			},
		),

		StaleDrops: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pairscreen_stale_responses_dropped_total",
				Help: "Responses discarded because a newer request superseded them",
			},
			[]string{"kind"},
		),
	}

	r.reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.UpstreamRequests,
		r.UpstreamDuration,
		r.CacheHitRatio,
		r.CacheHits,
		r.CacheMisses,
		r.SeriesSources,
		r.HTTPRequests,
		r.HTTPDuration,
		r.StreamSessions,
		r.StaleDrops,
	)

	log.Debug().Msg("Prometheus metrics registry initialized")
	return r
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{Registry: r.reg})
}

// Gatherer exposes the underlying registry.
func (r *Registry) Gatherer() prometheus.Gatherer { return r.reg }

// UpstreamRequest records one upstream call.
func (r *Registry) UpstreamRequest(endpoint, result string, elapsed time.Duration) {
	r.UpstreamRequests.WithLabelValues(endpoint, result).Inc()
	r.UpstreamDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

// CacheLookup records a response cache hit or miss.
func (r *Registry) CacheLookup(endpoint string, hit bool) {
	if hit {
		r.CacheHits.WithLabelValues(endpoint).Inc()
	} else {
		r.CacheMisses.WithLabelValues(endpoint).Inc()
	}
	r.updateCacheHitRatio()
}

// SeriesServed records the provenance of a served series.
func (r *Registry) SeriesServed(source string) {
	r.SeriesSources.WithLabelValues(source).Inc()
}

// ObserveHTTP records one API request.
func (r *Registry) ObserveHTTP(route string, code int, elapsed time.Duration) {
	r.HTTPRequests.WithLabelValues(route, strconv.Itoa(code)).Inc()
	r.HTTPDuration.WithLabelValues(route).Observe(elapsed.Seconds())
}

// SessionOpened and SessionClosed track websocket sessions.
func (r *Registry) SessionOpened() { r.StreamSessions.Inc() }
func (r *Registry) SessionClosed() { r.StreamSessions.Dec() }

// StaleDropped counts a superseded response of the given kind.
func (r *Registry) StaleDropped(kind string) {
	r.StaleDrops.WithLabelValues(kind).Inc()
}

func (r *Registry) updateCacheHitRatio() {
	hitMetric := &dto.Metric{}
	missMetric := &dto.Metric{}

	var hits, misses float64
	for _, ep := range upstreamEndpoints {
		if c, err := r.CacheHits.GetMetricWithLabelValues(ep); err == nil {
			if err := c.Write(hitMetric); err == nil {
				hits += hitMetric.GetCounter().GetValue()
			}
		}
		if c, err := r.CacheMisses.GetMetricWithLabelValues(ep); err == nil {
			if err := c.Write(missMetric); err == nil {
				misses += missMetric.GetCounter().GetValue()
			}
		}
	}

	if total := hits + misses; total > 0 {
		r.CacheHitRatio.Set(hits / total)
	}
}
