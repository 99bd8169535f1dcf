package pairs

// Token identifies one side of a pair.
type Token struct {
	Address string `json:"address"`
	Symbol  string `json:"symbol"`
	Name    string `json:"name"`
}

// PriceChange holds rolling-window price change percentages. Any window may be
// missing upstream.
type PriceChange struct {
	M5  *float64 `json:"m5"`
	H1  *float64 `json:"h1"`
	H6  *float64 `json:"h6"`
	H24 *float64 `json:"h24"`
}

// WindowCounts holds transaction counts per rolling window.
type WindowCounts struct {
	H1  *int64 `json:"h1"`
	H6  *int64 `json:"h6"`
	H24 *int64 `json:"h24"`
}

// WindowVolumes holds traded USD volume per rolling window.
type WindowVolumes struct {
	H1  *float64 `json:"h1"`
	H6  *float64 `json:"h6"`
	H24 *float64 `json:"h24"`
}

// Liquidity is the pool depth in USD and in each asset.
type Liquidity struct {
	USD   *float64 `json:"usd"`
	Base  *float64 `json:"base"`
	Quote *float64 `json:"quote"`
}

// Link is an informational URL attached to a pair.
type Link struct {
	URL string `json:"url"`
}

// Info carries optional presentation links.
type Info struct {
	ImageURL string `json:"imageUrl,omitempty"`
	Websites []Link `json:"websites,omitempty"`
	Socials  []Link `json:"socials,omitempty"`
}

// Pair is a tradeable token pair on one venue. (ChainID, PairAddress) is
// unique within a single query result. Pairs are rebuilt from every upstream
// response and never mutated afterwards.
type Pair struct {
	ChainID       string        `json:"chainId"`
	DexID         string        `json:"dexId"`
	URL           string        `json:"url"`
	PairAddress   string        `json:"pairAddress"`
	BaseToken     Token         `json:"baseToken"`
	QuoteToken    Token         `json:"quoteToken"`
	PriceUSD      *float64      `json:"priceUsd"`
	PriceNative   *float64      `json:"priceNative"`
	PriceChange   PriceChange   `json:"priceChange"`
	Txns          WindowCounts  `json:"txns"`
	Volume        WindowVolumes `json:"volume"`
	Liquidity     Liquidity     `json:"liquidity"`
	FDV           *float64      `json:"fdv"`
	PairCreatedAt *int64        `json:"pairCreatedAt"`
	Info          *Info         `json:"info,omitempty"`
}

// Key is the identity of a pair inside one result set.
type Key struct {
	ChainID     string `json:"chainId"`
	PairAddress string `json:"pairAddress"`
}

// IsZero reports whether no pair is identified.
func (k Key) IsZero() bool {
	return k.ChainID == "" && k.PairAddress == ""
}

func (k Key) String() string {
	return k.ChainID + ":" + k.PairAddress
}

// Key returns the pair identity.
func (p Pair) Key() Key {
	return Key{ChainID: p.ChainID, PairAddress: p.PairAddress}
}

// LiquidityUSD returns the USD liquidity, 0 when absent.
func (p Pair) LiquidityUSD() float64 {
	return valueOr(p.Liquidity.USD, 0)
}

// Volume24h returns the 24h USD volume, 0 when absent.
func (p Pair) Volume24h() float64 {
	return valueOr(p.Volume.H24, 0)
}

// Txns24h returns the 24h transaction count, 0 when absent.
func (p Pair) Txns24h() int64 {
	if p.Txns.H24 == nil {
		return 0
	}
	return *p.Txns.H24
}

// Symbols returns the base and quote symbols.
func (p Pair) Symbols() (string, string) {
	return p.BaseToken.Symbol, p.QuoteToken.Symbol
}

// Category classifies the pair from its symbols.
func (p Pair) Category() Category {
	return Classify(p.Symbols())
}

func valueOr(v *float64, def float64) float64 {
	if v == nil {
		return def
	}
	return *v
}
