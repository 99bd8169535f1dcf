package series

import (
	"math"
	"sort"

	"github.com/tidwall/gjson"
)

// ParseHistory zips a TradingView history payload into points. ok is false
// when the payload is unusable: invalid JSON, status other than "ok", or no
// "t" array. Missing or non-numeric entries become 0; a missing "v" array
// means zero volume throughout.
func ParseHistory(body []byte) (points []Point, ok bool) {
	if !gjson.ValidBytes(body) {
		return nil, false
	}
	res := gjson.ParseBytes(body)
	if res.Get("s").String() != "ok" {
		return nil, false
	}
	t := res.Get("t")
	if !t.IsArray() {
		return nil, false
	}

	ts := t.Array()
	closes := res.Get("c").Array()
	volumes := res.Get("v").Array()

	points = make([]Point, len(ts))
	for i, tv := range ts {
		points[i] = Point{
			Timestamp: int64(math.Round(number(tv) * 1000)),
			PriceUSD:  numberAt(closes, i),
			VolumeUSD: numberAt(volumes, i),
		}
	}
	sort.SliceStable(points, func(i, j int) bool {
		return points[i].Timestamp < points[j].Timestamp
	})
	return points, true
}

func numberAt(values []gjson.Result, i int) float64 {
	if i >= len(values) {
		return 0
	}
	return number(values[i])
}

func number(r gjson.Result) float64 {
	switch r.Type {
	case gjson.Number, gjson.String:
		v := r.Float()
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0
		}
		return v
	default:
		return 0
	}
}
