package dexscreener

import (
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/sawpanic/pairscreen/internal/domain/pairs"
)

// ErrMalformed is returned for bodies that are not valid JSON.
var ErrMalformed = errors.New("malformed dexscreener payload")

// DecodePairs decodes a search or pairs response. Entries keep upstream order.
func DecodePairs(body []byte) ([]pairs.Pair, error) {
	if !gjson.ValidBytes(body) {
		return nil, ErrMalformed
	}
	list := gjson.GetBytes(body, "pairs")
	if !list.IsArray() {
		return []pairs.Pair{}, nil
	}
	items := list.Array()
	out := make([]pairs.Pair, 0, len(items))
	for _, item := range items {
		if !item.IsObject() {
			continue
		}
		out = append(out, decodePair(item))
	}
	return out, nil
}

// DecodeSnapshot reads price and 24h volume of the first pair in body.
func DecodeSnapshot(body []byte) (Snapshot, error) {
	if !gjson.ValidBytes(body) {
		return Snapshot{}, ErrMalformed
	}
	first := gjson.GetBytes(body, "pairs.0")
	if !first.Exists() {
		first = gjson.GetBytes(body, "pair")
	}
	return Snapshot{
		PriceUSD:  optFloat(first.Get("priceUsd")),
		Volume24h: optFloat(first.Get("volume.h24")),
	}, nil
}

func decodePair(r gjson.Result) pairs.Pair {
	p := pairs.Pair{
		ChainID:     r.Get("chainId").String(),
		DexID:       r.Get("dexId").String(),
		URL:         r.Get("url").String(),
		PairAddress: r.Get("pairAddress").String(),
		BaseToken:   decodeToken(r.Get("baseToken")),
		QuoteToken:  decodeToken(r.Get("quoteToken")),
		PriceUSD:    optFloat(r.Get("priceUsd")),
		PriceNative: optFloat(r.Get("priceNative")),
		PriceChange: pairs.PriceChange{
			M5:  optFloat(r.Get("priceChange.m5")),
			H1:  optFloat(r.Get("priceChange.h1")),
			H6:  optFloat(r.Get("priceChange.h6")),
			H24: optFloat(r.Get("priceChange.h24")),
		},
		Txns: pairs.WindowCounts{
			H1:  optCount(r.Get("txns.h1")),
			H6:  optCount(r.Get("txns.h6")),
			H24: optCount(r.Get("txns.h24")),
		},
		Volume: pairs.WindowVolumes{
			H1:  optFloat(r.Get("volume.h1")),
			H6:  optFloat(r.Get("volume.h6")),
			H24: optFloat(r.Get("volume.h24")),
		},
		Liquidity: pairs.Liquidity{
			USD:   optFloat(r.Get("liquidity.usd")),
			Base:  optFloat(r.Get("liquidity.base")),
			Quote: optFloat(r.Get("liquidity.quote")),
		},
		FDV: optFloat(r.Get("fdv")),
	}
	if created := r.Get("pairCreatedAt"); created.Type == gjson.Number {
		ms := created.Int()
		p.PairCreatedAt = &ms
	}
	if info := r.Get("info"); info.IsObject() {
		p.Info = &pairs.Info{
			ImageURL: info.Get("imageUrl").String(),
			Websites: decodeLinks(info.Get("websites")),
			Socials:  decodeLinks(info.Get("socials")),
		}
	}
	return p
}

func decodeToken(r gjson.Result) pairs.Token {
	return pairs.Token{
		Address: r.Get("address").String(),
		Symbol:  r.Get("symbol").String(),
		Name:    r.Get("name").String(),
	}
}

func decodeLinks(r gjson.Result) []pairs.Link {
	var out []pairs.Link
	r.ForEach(func(_, v gjson.Result) bool {
		if u := v.Get("url").String(); u != "" {
			out = append(out, pairs.Link{URL: u})
		}
		return true
	})
	return out
}

// optFloat accepts JSON numbers and numeric strings; anything else is absent.
func optFloat(r gjson.Result) *float64 {
	switch r.Type {
	case gjson.Number:
		v := r.Float()
		return &v
	case gjson.String:
		v, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			return nil
		}
		return &v
	default:
		return nil
	}
}

// optCount reads a per-window transaction count, either {buys, sells} or a
// plain number.
func optCount(r gjson.Result) *int64 {
	if r.IsObject() {
		buys, sells := r.Get("buys"), r.Get("sells")
		if !buys.Exists() && !sells.Exists() {
			return nil
		}
		n := buys.Int() + sells.Int()
		return &n
	}
	if f := optFloat(r); f != nil {
		n := int64(*f)
		return &n
	}
	return nil
}
