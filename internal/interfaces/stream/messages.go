package stream

import (
	"github.com/sawpanic/pairscreen/internal/application"
	"github.com/sawpanic/pairscreen/internal/domain/pairs"
	"github.com/sawpanic/pairscreen/internal/series"
)

// Client message types.
const (
	TypeFilters     = "filters"
	TypeSelect      = "select"
	TypeToggleChain = "toggle_chain"
)

// Server message types.
const (
	TypePairs  = "pairs"
	TypeSeries = "series"
	TypeIdle   = "idle"
	TypeError  = "error"
)

// ClientMessage is anything a dashboard may send.
type ClientMessage struct {
	Type        string          `json:"type"`
	Criteria    *pairs.Criteria `json:"criteria,omitempty"`
	ChainID     string          `json:"chainId,omitempty"`
	PairAddress string          `json:"pairAddress,omitempty"`
}

// ServerMessage is pushed to the dashboard. Only the fields of its Type are
// set.
type ServerMessage struct {
	Type      string                   `json:"type"`
	Pairs     *application.PairsResult `json:"pairs,omitempty"`
	Selection *pairs.Key               `json:"selection,omitempty"`
	Series    *series.Series           `json:"series,omitempty"`

	// error replies
	Kind   string `json:"kind,omitempty"`
	Error  string `json:"error,omitempty"`
	Status int    `json:"status,omitempty"`
}
