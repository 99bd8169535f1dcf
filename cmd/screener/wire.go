package main

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/sawpanic/pairscreen/internal/application"
	"github.com/sawpanic/pairscreen/internal/config"
	"github.com/sawpanic/pairscreen/internal/data/cache"
	"github.com/sawpanic/pairscreen/internal/metrics"
	"github.com/sawpanic/pairscreen/internal/providers/dexscreener"
	"github.com/sawpanic/pairscreen/internal/series"
)

// app holds the wired application layer shared by every command.
type app struct {
	cache    cache.Cache
	client   *dexscreener.Client
	screener *application.Screener
}

// buildApp wires cache, upstream client, series fetcher and screener. reg
// may be nil for one-off commands.
func buildApp(ctx context.Context, c config.Config, reg *metrics.Registry) (*app, error) {
	responses := cache.New(cache.RedisOptions{
		Addr:     c.Cache.RedisAddr,
		Password: c.Cache.RedisPassword,
		DB:       c.Cache.RedisDB,
		Prefix:   c.Cache.Prefix,
	})
	if r, ok := responses.(*cache.Redis); ok {
		if err := r.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Redis unreachable, upstream responses will not be cached")
		} else {
			log.Info().Str("addr", c.Cache.RedisAddr).Msg("Using redis response cache")
		}
	}

	clientOpts := []dexscreener.Option{dexscreener.WithCache(responses)}
	var fetcherOpts []series.FetcherOption
	if reg != nil {
		clientOpts = append(clientOpts, dexscreener.WithObserver(reg))
		fetcherOpts = append(fetcherOpts, series.WithObserver(reg))
	}

	client, err := dexscreener.New(c.DexScreener, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create dexscreener client: %w", err)
	}
	fetcher := series.NewFetcher(client, client, c.Series, fetcherOpts...)

	return &app{
		cache:    responses,
		client:   client,
		screener: application.NewScreener(client, fetcher),
	}, nil
}

func (a *app) Close() {
	if closer, ok := a.cache.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Warn().Err(err).Msg("Failed to close response cache")
		}
	}
}
