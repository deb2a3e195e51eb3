package entity

import (
	"sort"
	"strings"
)

// Source tags describing where a rate entry came from
const (
	SourcePrimary  = "primary"
	SourceFallback = "fallback"
	SourceBase     = "base"
)

// RateType selects which side of a quote is used for a conversion
type RateType string

const (
	// RateBuying is the rate at which the bank buys foreign currency
	RateBuying RateType = "buying"
	// RateSelling is the rate at which the bank sells foreign currency
	RateSelling RateType = "selling"
)

// ParseRateType normalizes a rate type string, defaulting to selling when empty
func ParseRateType(s string) (RateType, bool) {
	switch RateType(strings.ToLower(strings.TrimSpace(s))) {
	case "", RateSelling:
		return RateSelling, true
	case RateBuying:
		return RateBuying, true
	default:
		return "", false
	}
}

// RateEntry is a buy/sell quote for one currency, expressed in local currency
type RateEntry struct {
	Currency  string  `json:"currency"`
	Buying    float64 `json:"buying"`
	Selling   float64 `json:"selling"`
	Source    string  `json:"source"`
	Timestamp string  `json:"timestamp"`
}

// Rate returns the side of the quote selected by rt
func (e RateEntry) Rate(rt RateType) float64 {
	if rt == RateBuying {
		return e.Buying
	}
	return e.Selling
}

// RateTable maps currency codes to their rate entries for a single fetch
type RateTable map[string]RateEntry

// Lookup finds an entry by code, ignoring case
func (t RateTable) Lookup(code string) (RateEntry, bool) {
	e, ok := t[NormalizeCode(code)]
	return e, ok
}

// Codes returns the currency codes in the table in sorted order
func (t RateTable) Codes() []string {
	codes := make([]string, 0, len(t))
	for code := range t {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// NormalizeCode trims and upper-cases a currency code
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// TrendPoint is one synthetic day in a simulated trend
type TrendPoint struct {
	Date   string  `json:"date"`
	Rate   float64 `json:"rate"`
	Change float64 `json:"change"`
}
