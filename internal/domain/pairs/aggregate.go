package pairs

// Headline is the dashboard summary of a filtered pair list.
type Headline struct {
	TotalLiquidity float64 `json:"totalLiquidity"`
	TotalVolume    float64 `json:"totalVolume"`
	AvgTxns        float64 `json:"avgTxns"`
	UniqueVenues   int     `json:"uniqueVenues"`
}

// Aggregate sums liquidity and 24h volume, averages 24h transactions and
// counts distinct venues. An empty input yields the zero Headline.
func Aggregate(in []Pair) Headline {
	if len(in) == 0 {
		return Headline{}
	}

	var h Headline
	var txns int64
	venues := make(map[string]struct{}, len(in))
	for _, p := range in {
		h.TotalLiquidity += p.LiquidityUSD()
		h.TotalVolume += p.Volume24h()
		txns += p.Txns24h()
		venues[p.DexID] = struct{}{}
	}
	h.AvgTxns = float64(txns) / float64(len(in))
	h.UniqueVenues = len(venues)
	return h
}

// Activity tags pairs with unusual flow for the table view.
type Activity string

const (
	ActivityNone          Activity = ""
	ActivityInstitutional Activity = "institutional"
	ActivityHot           Activity = "hot"
)

const (
	institutionalVolume = 5_000_000
	hotTxns             = 1500
)

// ActivityOf returns the activity tag of p. Volume takes precedence over
// transaction count.
func ActivityOf(p Pair) Activity {
	switch {
	case p.Volume24h() > institutionalVolume:
		return ActivityInstitutional
	case p.Txns24h() > hotTxns:
		return ActivityHot
	default:
		return ActivityNone
	}
}
