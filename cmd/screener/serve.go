package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	httpserver "github.com/sawpanic/pairscreen/internal/interfaces/http"
	"github.com/sawpanic/pairscreen/internal/interfaces/http/handlers"
	"github.com/sawpanic/pairscreen/internal/interfaces/stream"
	"github.com/sawpanic/pairscreen/internal/metrics"
)

const shutdownTimeout = 15 * time.Second

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the dashboard API and websocket stream",
		Long: `Starts the HTTP server with /api/pairs, /api/pairs/{chainId}/{pairAddress}/timeseries,
/api/networks, /health, /metrics and the /ws dashboard stream.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("host") {
				cfg.Server.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Server.Port = port
			}
			return runServe(cmd.Context())
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "HTTP server host (overrides config)")
	cmd.Flags().IntVar(&port, "port", 0, "HTTP server port (overrides config)")
	return cmd
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := metrics.New()
	a, err := buildApp(ctx, cfg, reg)
	if err != nil {
		return err
	}
	defer a.Close()

	defaults := cfg.Screener.DefaultCriteria()
	h := handlers.NewHandlers(a.screener, a.client, defaults, version)

	live := stream.NewHandler(a.screener, reg, defaults, stream.Config{
		RefreshInterval: cfg.Stream.RefreshInterval,
		PingInterval:    cfg.Stream.PingInterval,
		WriteTimeout:    cfg.Stream.WriteTimeout,
		AllowedOrigins:  cfg.Server.AllowedOrigins,
	})

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		ReadTimeout:    cfg.Server.ReadTimeout,
		RequestTimeout: cfg.Server.RequestTimeout,
		AllowedOrigins: cfg.Server.AllowedOrigins,
	}, h, reg, live)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start()
	}()

	log.Info().
		Str("app", appName).
		Str("version", version).
		Str("pairs", fmt.Sprintf("http://%s/api/pairs", server.Address())).
		Str("stream", fmt.Sprintf("ws://%s/ws", server.Address())).
		Str("metrics", fmt.Sprintf("http://%s/metrics", server.Address())).
		Msg("Screener endpoints available")

	select {
	case <-ctx.Done():
		log.Info().Msg("Shutdown signal received")
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	live.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown error")
		return err
	}

	log.Info().Msg("Screener shutdown complete")
	return nil
}
