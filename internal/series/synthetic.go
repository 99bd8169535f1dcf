package series

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/shopspring/decimal"
)

// Random yields uniform samples in [0, 1).
type Random interface {
	Float64() float64
}

type globalRandom struct{}

func (globalRandom) Float64() float64 { return rand.Float64() }

const (
	syntheticPoints   = 49
	defaultBasePrice  = 1.0
	defaultBaseVolume = 500_000.0
)

// Synthetic produces 49 hourly points ending at now. Each point draws price
// noise first, then volume noise.
func Synthetic(now time.Time, basePrice, baseVolume float64, rng Random) []Point {
	if !finite(basePrice) {
		basePrice = defaultBasePrice
	}
	if !finite(baseVolume) {
		baseVolume = defaultBaseVolume
	}
	points := make([]Point, 0, syntheticPoints)
	end := now.UnixMilli()
	for i := syntheticPoints - 1; i >= 0; i-- {
		noise := 1 + (rng.Float64()-0.5)*0.1
		volNoise := 1 + (rng.Float64()-0.5)*0.4

		points = append(points, Point{
			Timestamp: end - int64(i)*time.Hour.Milliseconds(),
			PriceUSD:  decimal.NewFromFloat(basePrice * noise).Round(6).InexactFloat64(),
			VolumeUSD: max(baseVolume*volNoise*0.05, 0),
		})
	}
	return points
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
