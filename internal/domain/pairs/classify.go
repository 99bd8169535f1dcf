package pairs

import (
	"errors"
	"fmt"
	"strings"
)

// Category is the derived kind of a pair.
type Category string

const (
	CategoryStable   Category = "stable"
	CategoryMeme     Category = "meme"
	CategoryVolatile Category = "volatile"

	// CategoryAll is only meaningful as a filter value.
	CategoryAll Category = "all"
)

// ErrUnknownCategory is returned by ParseCategory for unsupported values.
var ErrUnknownCategory = errors.New("unknown pair category")

var stableSymbols = map[string]struct{}{
	"USDC": {},
	"USDT": {},
	"DAI":  {},
	"BUSD": {},
	"USDD": {},
	"TUSD": {},
	"FRAX": {},
	"LUSD": {},
	"USD+": {},
}

var memeKeywords = []string{"PEPE", "DOGE", "INU", "FLOKI", "SHIB", "WOJAK", "MEME"}

// Classify maps a symbol pair to a category. A stablecoin on either side wins
// over any meme keyword.
func Classify(baseSymbol, quoteSymbol string) Category {
	base := strings.ToUpper(baseSymbol)
	quote := strings.ToUpper(quoteSymbol)

	if isStable(base) || isStable(quote) {
		return CategoryStable
	}
	if hasMemeKeyword(base) || hasMemeKeyword(quote) {
		return CategoryMeme
	}
	return CategoryVolatile
}

func isStable(symbol string) bool {
	_, ok := stableSymbols[symbol]
	return ok
}

func hasMemeKeyword(symbol string) bool {
	for _, kw := range memeKeywords {
		if strings.Contains(symbol, kw) {
			return true
		}
	}
	return false
}

// ParseCategory parses a filter value. Empty input means CategoryAll.
func ParseCategory(s string) (Category, error) {
	switch c := Category(strings.ToLower(strings.TrimSpace(s))); c {
	case "":
		return CategoryAll, nil
	case CategoryAll, CategoryStable, CategoryMeme, CategoryVolatile:
		return c, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
}
