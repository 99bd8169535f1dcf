package series

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/pairscreen/internal/providers/dexscreener"
)

// HistorySource serves raw TradingView history payloads.
type HistorySource interface {
	History(ctx context.Context, symbol, resolution string, from, to time.Time) ([]byte, error)
}

// SnapshotSource serves the live price and volume of a pair.
type SnapshotSource interface {
	Snapshot(ctx context.Context, chainID, pairAddress string) (dexscreener.Snapshot, error)
}

// Observer is told which source produced each series.
type Observer interface {
	SeriesServed(source string)
}

// Config controls history retrieval.
type Config struct {
	Resolution   string        `yaml:"resolution"`
	Window       time.Duration `yaml:"window"`
	StageTimeout time.Duration `yaml:"stage_timeout"`
}

// DefaultConfig asks for 30-minute candles over the last seven days.
func DefaultConfig() Config {
	return Config{
		Resolution:   "30",
		Window:       7 * 24 * time.Hour,
		StageTimeout: 8 * time.Second,
	}
}

// Fetcher resolves a series through history, then snapshot, then synthesis.
// Stages run sequentially, each bounded by StageTimeout.
type Fetcher struct {
	history  HistorySource
	snapshot SnapshotSource
	cfg      Config
	now      func() time.Time
	observer Observer

	rngMu sync.Mutex
	rng   Random
}

// FetcherOption customises a Fetcher.
type FetcherOption func(*Fetcher)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) FetcherOption {
	return func(f *Fetcher) { f.now = now }
}

// WithRandom fixes the noise source of synthetic series.
func WithRandom(rng Random) FetcherOption {
	return func(f *Fetcher) { f.rng = rng }
}

// WithObserver reports served sources to o.
func WithObserver(o Observer) FetcherOption {
	return func(f *Fetcher) { f.observer = o }
}

// NewFetcher builds a Fetcher. Zero config fields take their defaults.
func NewFetcher(history HistorySource, snapshot SnapshotSource, cfg Config, opts ...FetcherOption) *Fetcher {
	d := DefaultConfig()
	if cfg.Resolution == "" {
		cfg.Resolution = d.Resolution
	}
	if cfg.Window <= 0 {
		cfg.Window = d.Window
	}
	if cfg.StageTimeout <= 0 {
		cfg.StageTimeout = d.StageTimeout
	}
	f := &Fetcher{
		history:  history,
		snapshot: snapshot,
		cfg:      cfg,
		now:      time.Now,
		rng:      globalRandom{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// GetSeries returns the series of one pair. Upstream failures never surface:
// they degrade to a synthetic series. Errors are ErrMissingPair or the
// caller's own context error.
func (f *Fetcher) GetSeries(ctx context.Context, chainID, pairAddress string) (Series, error) {
	chainID = strings.TrimSpace(chainID)
	pairAddress = strings.TrimSpace(pairAddress)
	if chainID == "" || pairAddress == "" {
		return Series{}, ErrMissingPair
	}

	logger := log.With().Str("chain", chainID).Str("pair", pairAddress).Logger()

	if points := f.primary(ctx, chainID, pairAddress); len(points) > 0 {
		return f.serve(points, SourcePrimary), nil
	}
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}

	price, volume := f.secondary(ctx, chainID, pairAddress)
	if err := ctx.Err(); err != nil {
		return Series{}, err
	}

	logger.Debug().
		Bool("snapshot_price", price != nil).
		Bool("snapshot_volume", volume != nil).
		Msg("Serving synthetic series")

	basePrice, baseVolume := defaultBasePrice, defaultBaseVolume
	if price != nil {
		basePrice = *price
	}
	if volume != nil {
		baseVolume = *volume
	}

	f.rngMu.Lock()
	points := Synthetic(f.now(), basePrice, baseVolume, f.rng)
	f.rngMu.Unlock()

	return f.serve(points, SourceSynthetic), nil
}

func (f *Fetcher) primary(ctx context.Context, chainID, pairAddress string) []Point {
	now := f.now()
	symbol := chainID + ":" + pairAddress
	body, err := runStage(ctx, f.cfg.StageTimeout, func(ctx context.Context) ([]byte, error) {
		return f.history.History(ctx, symbol, f.cfg.Resolution, now.Add(-f.cfg.Window), now)
	})
	if err != nil {
		log.Debug().Err(err).Str("symbol", symbol).Msg("History unavailable")
		return nil
	}
	points, ok := ParseHistory(body)
	if !ok {
		log.Debug().Str("symbol", symbol).Msg("History payload unusable")
		return nil
	}
	return points
}

// secondary returns nil for any value the snapshot cannot provide. Zero
// values count as absent.
func (f *Fetcher) secondary(ctx context.Context, chainID, pairAddress string) (price, volume *float64) {
	snap, err := runStage(ctx, f.cfg.StageTimeout, func(ctx context.Context) (dexscreener.Snapshot, error) {
		return f.snapshot.Snapshot(ctx, chainID, pairAddress)
	})
	if err != nil {
		log.Debug().Err(err).Str("chain", chainID).Str("pair", pairAddress).Msg("Snapshot unavailable")
		return nil, nil
	}
	return nonZero(snap.PriceUSD), nonZero(snap.Volume24h)
}

func (f *Fetcher) serve(points []Point, source Source) Series {
	if f.observer != nil {
		f.observer.SeriesServed(string(source))
	}
	return Series{Points: points, Source: source, Summary: Summarize(points)}
}

func nonZero(v *float64) *float64 {
	if v == nil || *v == 0 || !finite(*v) {
		return nil
	}
	return v
}

// runStage bounds fn by timeout even when fn ignores its context.
func runStage[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		v   T
		err error
	}
	ch := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		ch <- result{v, err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}
