package application

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/series"
)

// Searcher runs a free-text pair search upstream.
type Searcher interface {
	Search(ctx context.Context, query string) ([]pairs.Pair, error)
}

// SeriesFetcher resolves the series of one pair.
type SeriesFetcher interface {
	GetSeries(ctx context.Context, chainID, pairAddress string) (series.Series, error)
}

// PairView is a pair with its derived display attributes.
type PairView struct {
	pairs.Pair
	Category pairs.Category `json:"category"`
	Activity pairs.Activity `json:"activity,omitempty"`
}

// PairsResult is one screener refresh.
type PairsResult struct {
	Pairs     []PairView     `json:"pairs"`
	Headline  pairs.Headline `json:"headline"`
	Criteria  pairs.Criteria `json:"criteria"`
	FetchedAt time.Time      `json:"fetchedAt"`
}

// List returns the plain pairs of the result, in order.
func (r PairsResult) List() []pairs.Pair {
	out := make([]pairs.Pair, len(r.Pairs))
	for i, v := range r.Pairs {
		out[i] = v.Pair
	}
	return out
}

// Screener combines search, filtering, aggregation and series retrieval.
type Screener struct {
	searcher Searcher
	series   SeriesFetcher
	now      func() time.Time
}

// NewScreener wires a Screener.
func NewScreener(searcher Searcher, fetcher SeriesFetcher) *Screener {
	return &Screener{searcher: searcher, series: fetcher, now: time.Now}
}

// Pairs searches upstream and returns the filtered pairs with their headline
// metrics. Upstream errors are returned unchanged in the chain so callers can
// inspect the upstream status.
func (s *Screener) Pairs(ctx context.Context, c pairs.Criteria) (PairsResult, error) {
	query := c.SearchQuery()
	raw, err := s.searcher.Search(ctx, query)
	if err != nil {
		return PairsResult{}, fmt.Errorf("search pairs: %w", err)
	}

	filtered := pairs.Filter(raw, c)
	views := make([]PairView, len(filtered))
	for i, p := range filtered {
		views[i] = PairView{Pair: p, Category: p.Category(), Activity: pairs.ActivityOf(p)}
	}

	log.Debug().
		Str("query", query).
		Int("upstream", len(raw)).
		Int("kept", len(filtered)).
		Msg("Pairs refreshed")

	return PairsResult{
		Pairs:     views,
		Headline:  pairs.Aggregate(filtered),
		Criteria:  c,
		FetchedAt: s.now().UTC(),
	}, nil
}

// Series returns the price and volume series of one pair.
func (s *Screener) Series(ctx context.Context, chainID, pairAddress string) (series.Series, error) {
	return s.series.GetSeries(ctx, chainID, pairAddress)
}
