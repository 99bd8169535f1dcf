package main

import (
	"bytes"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sawpanic/pairscreen/internal/application"
	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/series"
)

func init() {
	color.NoColor = true
}

func f64(v float64) *float64 { return &v }
func i64(v int64) *int64     { return &v }

func TestFormatUSD(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{0, "$0.00"},
		{12.346, "$12.35"},
		{999.99, "$999.99"},
		{1_500, "$1.50K"},
		{2_345_678, "$2.35M"},
		{7_100_000_000, "$7.10B"},
		{-25_000, "-$25.00K"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, formatUSD(tt.in), "formatUSD(%v)", tt.in)
	}
}

func TestFormatPrice(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{"absent", nil, "-"},
		{"dollar amount", f64(1834.5), "$1834.50"},
		{"sub dollar", f64(0.5), "$0.5"},
		{"sub cent", f64(0.0000012345), "$0.00000123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatPrice(tt.in))
		})
	}
}

func TestFormatChange(t *testing.T) {
	assert.Equal(t, "-", formatChange(nil))
	assert.Equal(t, "+4.20%", formatChange(f64(4.2)))
	assert.Equal(t, "-1.05%", formatChange(f64(-1.05)))
}

func TestCriteriaFlags(t *testing.T) {
	base := pairs.Criteria{
		Chains:       []string{"ethereum", "bsc"},
		MinLiquidity: 100_000,
		Category:     pairs.CategoryAll,
	}

	tests := []struct {
		name    string
		args    []string
		want    pairs.Criteria
		wantErr bool
	}{
		{
			name: "defaults kept",
			args: nil,
			want: base,
		},
		{
			name: "overrides",
			args: []string{"-q", " pepe ", "--chains", "Base,solana", "--min-liquidity", "0", "--type", "meme"},
			want: pairs.Criteria{
				Query:    "pepe",
				Chains:   []string{"base", "solana"},
				Category: pairs.CategoryMeme,
			},
		},
		{
			name: "all chains",
			args: []string{"--all-chains", "--min-volume", "5000"},
			want: pairs.Criteria{MinLiquidity: 100_000, MinVolume: 5_000, Category: pairs.CategoryAll},
		},
		{
			name:    "negative minimum",
			args:    []string{"--min-volume=-1"},
			wantErr: true,
		},
		{
			name:    "unknown type",
			args:    []string{"--type", "exotic"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var f criteriaFlags
			fs := pflag.NewFlagSet("pairs", pflag.ContinueOnError)
			f.register(fs)
			require.NoError(t, fs.Parse(tt.args))

			got, err := f.criteria(fs, base)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPrintPairs(t *testing.T) {
	p := pairs.Pair{
		ChainID:     "ethereum",
		DexID:       "uniswap",
		PairAddress: "0xabc",
		BaseToken:   pairs.Token{Symbol: "PEPE"},
		QuoteToken:  pairs.Token{Symbol: "WETH"},
		PriceUSD:    f64(0.0000042),
		PriceChange: pairs.PriceChange{H24: f64(12.5)},
		Liquidity:   pairs.Liquidity{USD: f64(2_500_000)},
		Volume:      pairs.WindowVolumes{H24: f64(6_000_000)},
		Txns:        pairs.WindowCounts{H24: i64(2_000)},
	}
	res := application.PairsResult{
		Pairs:    []application.PairView{{Pair: p, Category: p.Category(), Activity: pairs.ActivityOf(p)}},
		Headline: pairs.Aggregate([]pairs.Pair{p}),
	}

	var buf bytes.Buffer
	require.NoError(t, printPairs(&buf, res))
	out := buf.String()

	assert.Contains(t, out, "1 pairs  liquidity $2.50M  volume $6.00M  avg txns 2000  venues 1")
	assert.Contains(t, out, "PEPE/WETH")
	assert.Contains(t, out, "$0.0000042")
	assert.Contains(t, out, "+12.50%")
	assert.Contains(t, out, "meme institutional")
}

func TestPrintSeries(t *testing.T) {
	points := make([]series.Point, 20)
	for i := range points {
		points[i] = series.Point{Timestamp: int64(i) * 3_600_000, PriceUSD: 2, VolumeUSD: 100}
	}
	s := series.Series{Points: points, Source: series.SourceSynthetic, Summary: series.Summarize(points)}

	var buf bytes.Buffer
	require.NoError(t, printSeries(&buf, pairs.Key{ChainID: "bsc", PairAddress: "0x1"}, s, 5))
	out := buf.String()

	assert.Contains(t, out, "bsc:0x1  source synthetic  points 20")
	assert.Contains(t, out, "recent volume $800.00")
	// header, summary, blank line, table header and five rows
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 9)
}

func TestPrintNetworks(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printNetworks(&buf, pairs.NetworkGroups(), []string{"ethereum", "solana"}))
	out := buf.String()

	assert.Contains(t, out, "EVM")
	assert.Contains(t, out, "Non-EVM")
	assert.Regexp(t, `\* ethereum\s+Ethereum`, out)
	assert.Regexp(t, `\* solana\s+Solana`, out)
	assert.NotRegexp(t, `\* bsc`, out)
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := newRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "pairs", "series", "networks"})
	assert.NotNil(t, root.PersistentFlags().Lookup("config"))
}
