// Package history holds the closing-price observations produced by the
// fetchers and their XML representation.
package history

import (
	"strings"
	"time"
	"unicode/utf16"

	"github.com/shopspring/decimal"
)

// Namespace is the XML namespace of historyPoint elements.
const Namespace = "http://service.parabank.parasoft.com/"

// StringLayout is the date layout used by Point.String.
const StringLayout = "Mon Jan 02 15:04:05 MST 2006"

const hashPrime int32 = 31

// Point is one closing-price observation for a symbol on a date.
//
// A nil field is absent. Absent only equals absent; it never equals a
// concrete value such as "" or zero. Point is not safe for concurrent
// mutation.
type Point struct {
	Symbol       *string
	Date         *time.Time
	ClosingPrice *decimal.Decimal
}

// New returns a point with all three fields set.
func New(symbol string, date time.Time, closingPrice decimal.Decimal) *Point {
	p := &Point{}
	p.SetSymbol(symbol)
	p.SetDate(date)
	p.SetClosingPrice(closingPrice)
	return p
}

// SetSymbol sets the ticker symbol.
func (p *Point) SetSymbol(symbol string) { p.Symbol = &symbol }

// SetDate sets the trading date.
func (p *Point) SetDate(date time.Time) { p.Date = &date }

// SetClosingPrice sets the closing price. Its scale is kept as given.
func (p *Point) SetClosingPrice(price decimal.Decimal) { p.ClosingPrice = &price }

// SymbolOrEmpty returns the symbol, or "" when it is absent.
func (p *Point) SymbolOrEmpty() string {
	if p == nil || p.Symbol == nil {
		return ""
	}
	return *p.Symbol
}

// Equal reports whether p and other hold pairwise equal fields. Dates compare
// by instant. Prices compare by value and scale, so 300.350 does not equal
// 300.35.
func (p *Point) Equal(other *Point) bool {
	if p == other {
		return true
	}
	if p == nil || other == nil {
		return false
	}
	return equalPtr(p.Symbol, other.Symbol, func(a, b string) bool { return a == b }) &&
		equalPtr(p.Date, other.Date, time.Time.Equal) &&
		equalPtr(p.ClosingPrice, other.ClosingPrice, equalPrice)
}

func equalPrice(a, b decimal.Decimal) bool {
	return a.Exponent() == b.Exponent() && a.Equal(b)
}

func equalPtr[T any](a, b *T, eq func(T, T) bool) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return eq(*a, *b)
}

// Hash combines the field hashes with multiplier 31, an absent field
// contributing 0. Points that are Equal have the same hash.
func (p *Point) Hash() int32 {
	result := int32(1)
	if p == nil {
		return result
	}

	var symbolHash, dateHash, priceHash int32
	if p.Symbol != nil {
		symbolHash = stringHash(*p.Symbol)
	}
	if p.Date != nil {
		dateHash = timeHash(*p.Date)
	}
	if p.ClosingPrice != nil {
		priceHash = priceHashOf(*p.ClosingPrice)
	}

	result = hashPrime*result + symbolHash
	result = hashPrime*result + dateHash
	result = hashPrime*result + priceHash
	return result
}

func stringHash(s string) int32 {
	var h int32
	for _, c := range utf16.Encode([]rune(s)) {
		h = hashPrime*h + int32(c)
	}
	return h
}

// priceHashOf folds the unscaled value and the scale, so prices that differ
// only in trailing zeros hash apart like they compare apart.
func priceHashOf(d decimal.Decimal) int32 {
	return hashPrime*stringHash(d.Coefficient().String()) - d.Exponent()
}

// priceText renders d with its scale, so 300.350 stays 300.350.
func priceText(d decimal.Decimal) string {
	if exp := d.Exponent(); exp < 0 {
		return d.StringFixed(-exp)
	}
	return d.String()
}

func timeHash(t time.Time) int32 {
	n := t.UnixNano()
	return int32(n ^ int64(uint64(n)>>32))
}

// String returns a diagnostic form such as
// "HistoryPoint [symbol=AAPL, date=Thu Jan 02 00:00:00 UTC 2020, closingPrice=300.35]".
func (p *Point) String() string {
	if p == nil {
		return "null"
	}

	var b strings.Builder
	b.WriteString("HistoryPoint [symbol=")
	if p.Symbol != nil {
		b.WriteString(*p.Symbol)
	} else {
		b.WriteString("null")
	}
	b.WriteString(", date=")
	if p.Date != nil {
		b.WriteString(p.Date.Format(StringLayout))
	} else {
		b.WriteString("null")
	}
	b.WriteString(", closingPrice=")
	if p.ClosingPrice != nil {
		b.WriteString(priceText(*p.ClosingPrice))
	} else {
		b.WriteString("null")
	}
	b.WriteString("]")
	return b.String()
}
