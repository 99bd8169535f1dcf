package main

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/sawpanic/pairscreen/internal/application"
	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/series"
)

// formatUSD renders a compact dollar amount such as $1.25M.
func formatUSD(v float64) string {
	sign := ""
	if v < 0 {
		sign = "-"
		v = -v
	}
	switch {
	case v >= 1e9:
		return fmt.Sprintf("%s$%.2fB", sign, v/1e9)
	case v >= 1e6:
		return fmt.Sprintf("%s$%.2fM", sign, v/1e6)
	case v >= 1e3:
		return fmt.Sprintf("%s$%.2fK", sign, v/1e3)
	default:
		return fmt.Sprintf("%s$%.2f", sign, v)
	}
}

// formatPrice shows two decimals above $1 and up to eight significant
// decimals below, so sub-cent tokens stay readable.
func formatPrice(p *float64) string {
	if p == nil || math.IsNaN(*p) {
		return "-"
	}
	v := *p
	if math.Abs(v) >= 1 {
		return "$" + decimal.NewFromFloat(v).StringFixed(2)
	}
	return "$" + decimal.NewFromFloat(v).Round(8).String()
}

func formatChange(p *float64) string {
	if p == nil {
		return "-"
	}
	return fmt.Sprintf("%+.2f%%", *p)
}

func categoryLabel(c pairs.Category) string {
	switch c {
	case pairs.CategoryStable:
		return color.CyanString(string(c))
	case pairs.CategoryMeme:
		return color.MagentaString(string(c))
	default:
		return color.YellowString(string(c))
	}
}

func activityLabel(a pairs.Activity) string {
	switch a {
	case pairs.ActivityInstitutional:
		return color.GreenString(string(a))
	case pairs.ActivityHot:
		return color.RedString(string(a))
	default:
		return ""
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func printPairs(w io.Writer, res application.PairsResult) error {
	h := res.Headline
	fmt.Fprintf(w, "%s  liquidity %s  volume %s  avg txns %.0f  venues %d\n\n",
		color.New(color.Bold).Sprintf("%d pairs", len(res.Pairs)),
		formatUSD(h.TotalLiquidity), formatUSD(h.TotalVolume), h.AvgTxns, h.UniqueVenues)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tPAIR\tCHAIN\tDEX\tPRICE\t24H\tLIQUIDITY\tVOLUME 24H\tTXNS\tTYPE")
	for i, p := range res.Pairs {
		base, quote := p.Symbols()
		label := categoryLabel(p.Category)
		if a := activityLabel(p.Activity); a != "" {
			label += " " + a
		}
		fmt.Fprintf(tw, "%d\t%s/%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\t%s\n",
			i+1, base, quote, p.ChainID, p.DexID,
			formatPrice(p.PriceUSD), formatChange(p.PriceChange.H24),
			formatUSD(p.LiquidityUSD()), formatUSD(p.Volume24h()), p.Txns24h(), label)
	}
	return tw.Flush()
}

func printSeries(w io.Writer, key pairs.Key, s series.Series, last int) error {
	source := color.GreenString(string(s.Source))
	if s.Source == series.SourceSynthetic {
		source = color.YellowString(string(s.Source))
	}
	fmt.Fprintf(w, "%s  source %s  points %d\n", color.New(color.Bold).Sprint(key.String()), source, len(s.Points))
	if len(s.Points) == 0 {
		return nil
	}
	fmt.Fprintf(w, "latest %s at %s  recent volume %s\n\n",
		formatPrice(&s.Summary.LatestPrice),
		time.UnixMilli(s.Summary.LatestAt).UTC().Format(time.RFC3339),
		formatUSD(s.Summary.RecentVolume))

	points := s.Points
	if last > 0 && len(points) > last {
		points = points[len(points)-last:]
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tPRICE\tVOLUME")
	for _, p := range points {
		price := p.PriceUSD
		fmt.Fprintf(tw, "%s\t%s\t%s\n",
			time.UnixMilli(p.Timestamp).UTC().Format("2006-01-02 15:04"),
			formatPrice(&price), formatUSD(p.VolumeUSD))
	}
	return tw.Flush()
}

func printNetworks(w io.Writer, groups []pairs.NetworkGroup, selected []string) error {
	chosen := make(map[string]bool, len(selected))
	for _, id := range selected {
		chosen[strings.ToLower(id)] = true
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, g := range groups {
		fmt.Fprintf(tw, "%s\t\t\n", color.New(color.Bold).Sprint(g.Label))
		for _, n := range g.Networks {
			mark := " "
			if chosen[n.ID] {
				mark = "*"
			}
			fmt.Fprintf(tw, "  %s %s\t%s\t\n", mark, n.ID, n.Label)
		}
	}
	return tw.Flush()
}
