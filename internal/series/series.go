// Package series builds per-pair price and volume series, falling back to a
// synthetic series when the history endpoint has nothing usable.
package series

import "errors"

// ErrMissingPair is returned when the chain id or pair address is empty.
var ErrMissingPair = errors.New("chain id and pair address are required")

// Point is one sample of a series. Timestamp is in milliseconds since epoch.
type Point struct {
	Timestamp int64   `json:"timestamp"`
	PriceUSD  float64 `json:"priceUsd"`
	VolumeUSD float64 `json:"volumeUsd"`
}

// Source records where a series came from.
type Source string

const (
	SourcePrimary   Source = "primary"
	SourceSynthetic Source = "synthetic"
)

// recentWindow is the number of trailing points summed into RecentVolume.
const recentWindow = 8

// Summary is the detail-panel digest of a series.
type Summary struct {
	LatestPrice  float64 `json:"latestPrice"`
	LatestAt     int64   `json:"latestAt"`
	RecentVolume float64 `json:"recentVolume"`
}

// Series is the result of GetSeries. Points are ordered by timestamp.
type Series struct {
	Points  []Point `json:"points"`
	Source  Source  `json:"source"`
	Summary Summary `json:"summary"`
}

// Summarize reports the last point and the volume of the trailing points.
func Summarize(points []Point) Summary {
	if len(points) == 0 {
		return Summary{}
	}
	last := points[len(points)-1]
	s := Summary{LatestPrice: last.PriceUSD, LatestAt: last.Timestamp}
	for _, p := range points[max(0, len(points)-recentWindow):] {
		s.RecentVolume += p.VolumeUSD
	}
	return s
}
