package pairs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name  string
		base  string
		quote string
		want  Category
	}{
		{name: "stable_quote", base: "ETH", quote: "USDC", want: CategoryStable},
		{name: "stable_base", base: "DAI", quote: "WETH", want: CategoryStable},
		{name: "usd_plus", base: "USD+", quote: "SOL", want: CategoryStable},
		{name: "stable_beats_meme", base: "PEPE", quote: "USDT", want: CategoryStable},
		{name: "meme_substring", base: "BABYDOGE", quote: "WBNB", want: CategoryMeme},
		{name: "meme_in_quote", base: "WETH", quote: "SHIBA", want: CategoryMeme},
		{name: "inu_suffix", base: "SHIKOKUINU", quote: "SOL", want: CategoryMeme},
		{name: "volatile", base: "WETH", quote: "WBTC", want: CategoryVolatile},
		{name: "stable_needs_exact_match", base: "USDCX", quote: "SOL", want: CategoryVolatile},
		{name: "empty_symbols", base: "", quote: "", want: CategoryVolatile},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.base, tt.quote))
		})
	}
}

func TestClassify_CaseInsensitive(t *testing.T) {
	assert.Equal(t, Classify("USDC", "xyz"), Classify("usdc", "xyz"))
	assert.Equal(t, CategoryMeme, Classify("pepe", "weth"))
	assert.Equal(t, CategoryStable, Classify("frax", "floki"))
}

func TestClassify_Deterministic(t *testing.T) {
	for i := 0; i < 5; i++ {
		assert.Equal(t, CategoryMeme, Classify("WOJAK", "WETH"))
	}
}

func TestParseCategory(t *testing.T) {
	for in, want := range map[string]Category{
		"":         CategoryAll,
		"all":      CategoryAll,
		" Stable ": CategoryStable,
		"MEME":     CategoryMeme,
		"volatile": CategoryVolatile,
	} {
		got, err := ParseCategory(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseCategory("blue-chip")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnknownCategory)
}
