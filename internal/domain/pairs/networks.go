package pairs

import "strings"

// NetworkType groups networks by execution environment.
type NetworkType string

const (
	NetworkEVM    NetworkType = "evm"
	NetworkNonEVM NetworkType = "non-evm"
)

// Network is a chain the screener knows how to label.
type Network struct {
	ID    string      `json:"id"`
	Label string      `json:"label"`
	Type  NetworkType `json:"type"`
}

// NetworkGroup is a labelled set of networks of one type.
type NetworkGroup struct {
	Type     NetworkType `json:"type"`
	Label    string      `json:"label"`
	Networks []Network   `json:"networks"`
}

// Networks lists chain ids as used by DexScreener.
var Networks = []Network{
	{ID: "ethereum", Label: "Ethereum", Type: NetworkEVM},
	{ID: "bsc", Label: "BNB Chain", Type: NetworkEVM},
	{ID: "base", Label: "Base", Type: NetworkEVM},
	{ID: "arbitrum", Label: "Arbitrum", Type: NetworkEVM},
	{ID: "polygon", Label: "Polygon", Type: NetworkEVM},
	{ID: "avalanche", Label: "Avalanche", Type: NetworkEVM},
	{ID: "optimism", Label: "Optimism", Type: NetworkEVM},
	{ID: "solana", Label: "Solana", Type: NetworkNonEVM},
	{ID: "ton", Label: "TON", Type: NetworkNonEVM},
	{ID: "sui", Label: "Sui", Type: NetworkNonEVM},
	{ID: "tron", Label: "Tron", Type: NetworkNonEVM},
}

// DefaultChains is the initial chain selection of the dashboard.
var DefaultChains = []string{"ethereum", "bsc", "solana", "base"}

// NetworkGroups returns Networks grouped by type, EVM first.
func NetworkGroups() []NetworkGroup {
	groups := []NetworkGroup{
		{Type: NetworkEVM, Label: "EVM"},
		{Type: NetworkNonEVM, Label: "Non-EVM"},
	}
	for _, n := range Networks {
		for i := range groups {
			if groups[i].Type == n.Type {
				groups[i].Networks = append(groups[i].Networks, n)
			}
		}
	}
	return groups
}

// LookupNetwork finds a known network by id, case-insensitively.
func LookupNetwork(id string) (Network, bool) {
	id = strings.ToLower(strings.TrimSpace(id))
	for _, n := range Networks {
		if n.ID == id {
			return n, true
		}
	}
	return Network{}, false
}

// ToggleChain adds id to the selection or removes it. Removing the last
// selected chain is refused so the selection never becomes empty.
func ToggleChain(selected []string, id string) []string {
	id = strings.ToLower(strings.TrimSpace(id))
	if id == "" {
		return selected
	}
	out := make([]string, 0, len(selected)+1)
	found := false
	for _, s := range selected {
		if s == id {
			found = true
			continue
		}
		out = append(out, s)
	}
	if !found {
		return append(out, id)
	}
	if len(out) == 0 {
		return selected
	}
	return out
}
