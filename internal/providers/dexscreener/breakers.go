package dexscreener

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
)

// Endpoint names one upstream API route. Breakers, cache keys and metrics are
// kept per endpoint.
type Endpoint string

const (
	EndpointSearch  Endpoint = "search"
	EndpointPair    Endpoint = "pair"
	EndpointHistory Endpoint = "history"
)

var endpoints = []Endpoint{EndpointSearch, EndpointPair, EndpointHistory}

// BreakerStatus is the externally visible state of one breaker.
type BreakerStatus struct {
	Endpoint            Endpoint `json:"endpoint"`
	State               string   `json:"state"`
	Requests            uint32   `json:"requests"`
	TotalFailures       uint32   `json:"totalFailures"`
	ConsecutiveFailures uint32   `json:"consecutiveFailures"`
}

func newBreakers(cfg BreakerConfig) map[Endpoint]*gobreaker.CircuitBreaker {
	out := make(map[Endpoint]*gobreaker.CircuitBreaker, len(endpoints))
	for _, ep := range endpoints {
		out[ep] = gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:         "dexscreener-" + string(ep),
			MaxRequests:  cfg.MaxRequests,
			Interval:     cfg.Interval,
			Timeout:      cfg.Timeout,
			ReadyToTrip:  tripCondition(cfg),
			IsSuccessful: breakerSuccess,
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().
					Str("breaker", name).
					Str("from", from.String()).
					Str("to", to.String()).
					Msg("Upstream circuit breaker state changed")
			},
		})
	}
	return out
}

func tripCondition(cfg BreakerConfig) func(gobreaker.Counts) bool {
	return func(counts gobreaker.Counts) bool {
		if counts.Requests >= 10 {
			errorRate := float64(counts.TotalFailures) / float64(counts.Requests) * 100
			if errorRate >= cfg.ErrorRateThreshold {
				return true
			}
		}
		return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
	}
}

// breakerSuccess keeps client errors other than 429 from tripping a breaker;
// an unknown pair address is not an upstream outage. Requests abandoned by
// the caller say nothing about upstream health either.
func breakerSuccess(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 400 && se.StatusCode < 500 && se.StatusCode != http.StatusTooManyRequests
	}
	return false
}
