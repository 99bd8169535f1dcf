package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/sawpanic/pairscreen/internal/config"
	"github.com/sawpanic/pairscreen/internal/logging"
)

const appName = "pairscreen"

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

var (
	configPath string
	logLevel   string
	logFormat  string

	// cfg is loaded once by the root command before any subcommand runs.
	cfg config.Config
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "screener",
		Short:   "DeFi pair screener",
		Version: version,
		Long: `pairscreen searches DexScreener for trading pairs, filters and classifies
them, and serves headline metrics and per-pair price/volume series.

Run 'screener serve' for the dashboard API and websocket stream, or use the
pairs, series and networks commands for one-off queries.`,
		SilenceUsage:      true,
		PersistentPreRunE: loadConfig,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&configPath, "config", "c", "", "Path to YAML config (defaults built in)")
	flags.StringVar(&logLevel, "log-level", "", "Log level override (debug|info|warn|error)")
	flags.StringVar(&logFormat, "log-format", "", "Log format override (auto|console|json)")

	rootCmd.AddCommand(
		newServeCmd(),
		newPairsCmd(),
		newSeriesCmd(),
		newNetworksCmd(),
	)
	return rootCmd
}

func loadConfig(cmd *cobra.Command, _ []string) error {
	loaded, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if logLevel != "" {
		loaded.Log.Level = logLevel
	}
	if logFormat != "" {
		loaded.Log.Format = logFormat
	}
	if err := logging.Setup(loaded.Log.Level, loaded.Log.Format, os.Stderr); err != nil {
		return err
	}
	cfg = loaded

	log.Debug().
		Str("command", cmd.Name()).
		Str("config", configPath).
		Str("upstream", cfg.DexScreener.BaseURL).
		Msg("Configuration loaded")
	return nil
}
