package handlers

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/providers/dexscreener"
	"github.com/sawpanic/pairscreen/internal/series"
)

// upstreamErrorText is the error field of every upstream failure reply.
const upstreamErrorText = "Dexscreener API error"

// ParseCriteria reads filter criteria from query parameters. Absent
// parameters leave the matching predicate disabled.
func ParseCriteria(q url.Values) (pairs.Criteria, error) {
	c := pairs.Criteria{
		Query:  strings.TrimSpace(q.Get("query")),
		Chains: pairs.ParseChains(q.Get("chains")),
	}

	var err error
	if c.MinLiquidity, err = parseAmount(q, "minLiquidity"); err != nil {
		return pairs.Criteria{}, err
	}
	if c.MinVolume, err = parseAmount(q, "minVolume"); err != nil {
		return pairs.Criteria{}, err
	}
	if c.Category, err = pairs.ParseCategory(q.Get("pairType")); err != nil {
		return pairs.Criteria{}, fmt.Errorf("pairType: %w", err)
	}
	return c, nil
}

func parseAmount(q url.Values, name string) (float64, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%s must be a finite number, got %q", name, raw)
	}
	return v, nil
}

// Pairs handles GET /api/pairs
func (h *Handlers) Pairs(w http.ResponseWriter, r *http.Request) {
	criteria, err := ParseCriteria(r.URL.Query())
	if err != nil {
		h.writeError(w, r, http.StatusBadRequest, "invalid_parameter", err.Error())
		return
	}

	result, err := h.screener.Pairs(r.Context(), criteria)
	if err != nil {
		h.writeUpstreamError(w, r, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

// Series handles GET /api/pairs/{chainId}/{pairAddress}/timeseries
func (h *Handlers) Series(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	s, err := h.screener.Series(r.Context(), vars["chainId"], vars["pairAddress"])
	switch {
	case errors.Is(err, series.ErrMissingPair):
		h.writeError(w, r, http.StatusBadRequest, "missing_pair", err.Error())
	case err != nil:
		h.writeError(w, r, http.StatusServiceUnavailable, "request_cancelled", err.Error())
	default:
		h.writeJSON(w, http.StatusOK, s)
	}
}

// writeUpstreamError mirrors an upstream non-2xx status to the caller and
// maps transport failures onto gateway errors.
func (h *Handlers) writeUpstreamError(w http.ResponseWriter, r *http.Request, err error) {
	log.Warn().
		Err(err).
		Str("request_id", RequestID(r.Context())).
		Msg("Pairs search failed")

	if code, ok := dexscreener.StatusCode(err); ok {
		h.writeErrorText(w, r, code, upstreamErrorText, "upstream_status", err.Error())
		return
	}

	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		h.writeErrorText(w, r, http.StatusServiceUnavailable, upstreamErrorText, "upstream_unavailable", err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		h.writeErrorText(w, r, http.StatusGatewayTimeout, upstreamErrorText, "upstream_timeout", err.Error())
	default:
		h.writeErrorText(w, r, http.StatusBadGateway, upstreamErrorText, "upstream_error", err.Error())
	}
}
