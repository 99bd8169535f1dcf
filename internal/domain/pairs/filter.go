package pairs

import "strings"

// MaxResults caps the size of a filtered result set.
const MaxResults = 60

// DefaultQuery is searched when the user leaves the search box empty.
const DefaultQuery = "top"

// Criteria describes one user query. Zero values disable the corresponding
// predicate; an empty Chains set allows every chain.
type Criteria struct {
	Query        string   `json:"query"`
	Chains       []string `json:"chains"`
	MinLiquidity float64  `json:"minLiquidity"`
	MinVolume    float64  `json:"minVolume"`
	Category     Category `json:"pairType"`
}

// SearchQuery returns the trimmed query text, falling back to DefaultQuery.
func (c Criteria) SearchQuery() string {
	if q := strings.TrimSpace(c.Query); q != "" {
		return q
	}
	return DefaultQuery
}

// Filter keeps the pairs matching c, preserving input order, and truncates the
// result to MaxResults. It never returns nil.
func Filter(in []Pair, c Criteria) []Pair {
	allowed := chainSet(c.Chains)
	wantCategory := c.Category != "" && c.Category != CategoryAll

	out := make([]Pair, 0, min(len(in), MaxResults))
	for _, p := range in {
		if len(out) == MaxResults {
			break
		}
		if p.ChainID == "" {
			continue
		}
		if len(allowed) > 0 {
			if _, ok := allowed[strings.ToLower(p.ChainID)]; !ok {
				continue
			}
		}
		if c.MinLiquidity > 0 && p.LiquidityUSD() < c.MinLiquidity {
			continue
		}
		if c.MinVolume > 0 && p.Volume24h() < c.MinVolume {
			continue
		}
		if wantCategory && p.Category() != c.Category {
			continue
		}
		out = append(out, p)
	}
	return out
}

// ParseChains splits a comma separated chain list into lowercase ids,
// dropping empty entries.
func ParseChains(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	var out []string
	for _, id := range strings.Split(raw, ",") {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			out = append(out, id)
		}
	}
	return out
}

func chainSet(chains []string) map[string]struct{} {
	if len(chains) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(chains))
	for _, id := range chains {
		if id = strings.ToLower(strings.TrimSpace(id)); id != "" {
			set[id] = struct{}{}
		}
	}
	return set
}
