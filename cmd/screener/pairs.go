package main

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
)

// criteriaFlags are the filter flags shared by the pairs command.
type criteriaFlags struct {
	query        string
	chains       []string
	allChains    bool
	minLiquidity float64
	minVolume    float64
	pairType     string
}

func (f *criteriaFlags) register(fs *pflag.FlagSet) {
	fs.StringVarP(&f.query, "query", "q", "", "Search text (empty searches \"top\")")
	fs.StringSliceVar(&f.chains, "chains", nil, "Comma-separated chain ids (default from config)")
	fs.BoolVar(&f.allChains, "all-chains", false, "Do not restrict chains")
	fs.Float64Var(&f.minLiquidity, "min-liquidity", 0, "Minimum liquidity in USD (default from config)")
	fs.Float64Var(&f.minVolume, "min-volume", 0, "Minimum 24h volume in USD (default from config)")
	fs.StringVarP(&f.pairType, "type", "t", "", "Pair type: all|stable|meme|volatile (default from config)")
}

// criteria starts from base and applies every flag the user set.
func (f *criteriaFlags) criteria(fs *pflag.FlagSet, base pairs.Criteria) (pairs.Criteria, error) {
	c := base
	c.Query = strings.TrimSpace(f.query)

	if fs.Changed("chains") {
		c.Chains = pairs.ParseChains(strings.Join(f.chains, ","))
	}
	if f.allChains {
		c.Chains = nil
	}
	if fs.Changed("min-liquidity") {
		if f.minLiquidity < 0 || math.IsNaN(f.minLiquidity) || math.IsInf(f.minLiquidity, 0) {
			return pairs.Criteria{}, fmt.Errorf("--min-liquidity must be a non-negative number")
		}
		c.MinLiquidity = f.minLiquidity
	}
	if fs.Changed("min-volume") {
		if f.minVolume < 0 || math.IsNaN(f.minVolume) || math.IsInf(f.minVolume, 0) {
			return pairs.Criteria{}, fmt.Errorf("--min-volume must be a non-negative number")
		}
		c.MinVolume = f.minVolume
	}
	if fs.Changed("type") {
		category, err := pairs.ParseCategory(f.pairType)
		if err != nil {
			return pairs.Criteria{}, fmt.Errorf("--type: %w", err)
		}
		c.Category = category
	}
	return c, nil
}

func newPairsCmd() *cobra.Command {
	var (
		filters criteriaFlags
		asJSON  bool
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Search, filter and classify pairs",
		Long: `Searches DexScreener and prints the filtered pairs with headline metrics.
Unset filters fall back to the configured screener defaults.

Examples:
  screener pairs
  screener pairs -q pepe --type meme --chains ethereum,base
  screener pairs --all-chains --min-liquidity 0 --json`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := filters.criteria(cmd.Flags(), cfg.Screener.DefaultCriteria())
			if err != nil {
				return err
			}

			a, err := buildApp(cmd.Context(), cfg, nil)
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := a.screener.Pairs(cmd.Context(), c)
			if err != nil {
				return err
			}
			if limit > 0 && len(res.Pairs) > limit {
				res.Pairs = res.Pairs[:limit]
			}

			if asJSON {
				return printJSON(cmd.OutOrStdout(), res)
			}
			return printPairs(cmd.OutOrStdout(), res)
		},
	}

	filters.register(cmd.Flags())
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	cmd.Flags().IntVar(&limit, "limit", 0, "Show at most this many rows (headline still covers all)")
	return cmd
}
