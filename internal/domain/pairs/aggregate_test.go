package pairs

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAggregate_Empty(t *testing.T) {
	assert.Equal(t, Headline{}, Aggregate(nil))
	assert.Equal(t, Headline{}, Aggregate([]Pair{}))
}

func TestAggregate_LiquidityOnly(t *testing.T) {
	a := testPair("ethereum", "0xa", "WETH", "WBTC")
	a.Liquidity.USD = f64(100)
	b := testPair("ethereum", "0xb", "WETH", "WBTC")
	b.Liquidity.USD = f64(200)
	b.DexID = "sushiswap"

	h := Aggregate([]Pair{a, b})

	assert.Equal(t, 300.0, h.TotalLiquidity)
	assert.Equal(t, 0.0, h.TotalVolume)
	assert.Equal(t, 0.0, h.AvgTxns)
	assert.Equal(t, 2, h.UniqueVenues)
}

func TestAggregate_Full(t *testing.T) {
	a := testPair("ethereum", "0xa", "WETH", "WBTC")
	a.Volume.H24 = f64(1000)
	a.Txns.H24 = i64(10)
	b := testPair("base", "0xb", "WETH", "USDC")
	b.Volume.H24 = f64(500)
	b.Txns.H24 = i64(5)
	c := testPair("base", "0xc", "PEPE", "WETH")
	c.DexID = "aerodrome"

	h := Aggregate([]Pair{a, b, c})

	assert.Equal(t, 1500.0, h.TotalVolume)
	assert.InDelta(t, 5.0, h.AvgTxns, 1e-9)
	assert.Equal(t, 2, h.UniqueVenues)
	assert.Equal(t, h, Aggregate([]Pair{a, b, c}))
}

func TestActivityOf(t *testing.T) {
	whale := testPair("ethereum", "0xa", "WETH", "USDC")
	whale.Volume.H24 = f64(6_000_000)
	whale.Txns.H24 = i64(5000)

	busy := testPair("ethereum", "0xb", "PEPE", "WETH")
	busy.Volume.H24 = f64(10_000)
	busy.Txns.H24 = i64(1501)

	quiet := testPair("ethereum", "0xc", "WETH", "WBTC")

	assert.Equal(t, ActivityInstitutional, ActivityOf(whale))
	assert.Equal(t, ActivityHot, ActivityOf(busy))
	assert.Equal(t, ActivityNone, ActivityOf(quiet))
}

func TestToggleChain(t *testing.T) {
	sel := []string{"ethereum", "bsc"}

	assert.Equal(t, []string{"ethereum", "bsc", "solana"}, ToggleChain(sel, "Solana"))
	assert.Equal(t, []string{"bsc"}, ToggleChain(sel, "ethereum"))
	assert.Equal(t, []string{"bsc"}, ToggleChain([]string{"bsc"}, "bsc"))
	assert.Equal(t, sel, ToggleChain(sel, " "))
}

func TestNetworkGroups(t *testing.T) {
	groups := NetworkGroups()

	assert.Len(t, groups, 2)
	assert.Equal(t, NetworkEVM, groups[0].Type)
	for _, g := range groups {
		for _, n := range g.Networks {
			assert.Equal(t, g.Type, n.Type)
		}
	}

	n, ok := LookupNetwork(" SOLANA ")
	assert.True(t, ok)
	assert.Equal(t, NetworkNonEVM, n.Type)
}
