package main

import (
	"github.com/spf13/cobra"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
)

func newSeriesCmd() *cobra.Command {
	var (
		asJSON bool
		last   int
	)

	cmd := &cobra.Command{
		Use:   "series <chainId> <pairAddress>",
		Short: "Print the price and volume series of one pair",
		Long: `Fetches the 7-day history of a pair. When the history endpoint has nothing
usable a synthetic series around the live price is printed instead, marked
with source "synthetic".`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := buildApp(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			key := pairs.Key{ChainID: args[0], PairAddress: args[1]}
			s, err := a.screener.Series(cmd.Context(), key.ChainID, key.PairAddress)
			if err != nil {
				return err
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), s)
			}
			return printSeries(cmd.OutOrStdout(), key, s, last)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&last, "last", 12, "Print only the most recent points (0 for all)")
	return cmd
}
