package history

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var jan2 = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

func aapl(price string) *Point {
	return New("AAPL", jan2, decimal.RequireFromString(price))
}

func TestPoint_Accessors(t *testing.T) {
	p := &Point{}
	assert.Nil(t, p.Symbol)
	assert.Nil(t, p.Date)
	assert.Nil(t, p.ClosingPrice)

	price := decimal.RequireFromString("300.35")
	p.SetSymbol("AAPL")
	p.SetDate(jan2)
	p.SetClosingPrice(price)

	require.NotNil(t, p.Symbol)
	require.NotNil(t, p.Date)
	require.NotNil(t, p.ClosingPrice)
	assert.Equal(t, "AAPL", *p.Symbol)
	assert.Equal(t, "AAPL", p.SymbolOrEmpty())
	assert.True(t, jan2.Equal(*p.Date))
	assert.True(t, price.Equal(*p.ClosingPrice))
}

func TestPoint_NegativePriceIsStored(t *testing.T) {
	p := New("XYZ", jan2, decimal.RequireFromString("-1.5"))
	assert.Equal(t, "-1.5", p.ClosingPrice.String())
}

func TestPoint_Equal(t *testing.T) {
	sym := func(s string) *string { return &s }
	at := func(v time.Time) *time.Time { return &v }
	price := func(s string) *decimal.Decimal {
		d := decimal.RequireFromString(s)
		return &d
	}

	tests := []struct {
		name string
		a, b *Point
		want bool
	}{
		{"identical fields", aapl("300.35"), aapl("300.35"), true},
		{"different price", aapl("300.35"), aapl("300.36"), false},
		{"same scale", aapl("300.350"), aapl("300.350"), true},
		{"trailing zero", aapl("300.35"), aapl("300.350"), false},
		{"zero at other scale", aapl("0"), aapl("0.000"), false},
		{"different symbol", aapl("1"), New("MSFT", jan2, decimal.NewFromInt(1)), false},
		{"different date", aapl("1"), New("AAPL", jan2.AddDate(0, 0, 1), decimal.NewFromInt(1)), false},
		{
			"same instant other zone",
			aapl("1"),
			New("AAPL", jan2.In(time.FixedZone("EST", -5*3600)), decimal.NewFromInt(1)),
			true,
		},
		{"both empty", &Point{}, &Point{}, true},
		{"absent vs empty symbol", &Point{}, &Point{Symbol: sym("")}, false},
		{"absent vs zero date", &Point{}, &Point{Date: at(time.Time{})}, false},
		{"absent vs zero price", &Point{}, &Point{ClosingPrice: price("0")}, false},
		{"nil vs empty", nil, &Point{}, false},
		{"nil vs nil", nil, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Equal(tt.b))
			assert.Equal(t, tt.want, tt.b.Equal(tt.a), "Equal must be symmetric")
		})
	}
}

func TestPoint_EqualReflexive(t *testing.T) {
	for _, p := range []*Point{aapl("300.35"), {}, {Symbol: aapl("1").Symbol}} {
		assert.True(t, p.Equal(p))
	}
}

func TestPoint_HashConsistentWithEqual(t *testing.T) {
	pairs := [][2]*Point{
		{aapl("300.35"), aapl("300.35")},
		{aapl("300.350"), aapl("300.350")},
		{aapl("0.000"), New("AAPL", jan2, decimal.New(0, -3))},
		{aapl("1"), New("AAPL", jan2.In(time.FixedZone("CET", 3600)), decimal.NewFromInt(1))},
		{{}, {}},
	}

	for _, pair := range pairs {
		require.True(t, pair[0].Equal(pair[1]))
		assert.Equal(t, pair[0].Hash(), pair[1].Hash(), "%v vs %v", pair[0], pair[1])
	}
}

func TestPoint_Hash(t *testing.T) {
	// 31*(31*(31*1+0)+0)+0
	assert.Equal(t, int32(29791), (&Point{}).Hash())

	// "AB" hashes to 31*65+66 = 2081.
	p := &Point{}
	p.SetSymbol("AB")
	assert.Equal(t, int32(31*(31*(31+2081))), p.Hash())

	assert.NotEqual(t, aapl("300.35").Hash(), aapl("300.36").Hash())
}

func TestPoint_HashIncludesPriceScale(t *testing.T) {
	priced := func(s string) *Point {
		p := &Point{}
		p.SetClosingPrice(decimal.RequireFromString(s))
		return p
	}

	// 1.5 is 15 at scale 1: 29791 + 31*hash("15") + 1.
	assert.Equal(t, int32(78524), priced("1.5").Hash())
	// 1.50 is 150 at scale 2: 29791 + 31*hash("150") + 2.
	assert.Equal(t, int32(1541973), priced("1.50").Hash())
	assert.NotEqual(t, aapl("300.35").Hash(), aapl("300.350").Hash())
}

func TestPoint_String(t *testing.T) {
	assert.Equal(t,
		"HistoryPoint [symbol=AAPL, date=Thu Jan 02 00:00:00 UTC 2020, closingPrice=300.35]",
		aapl("300.35").String())

	assert.Equal(t,
		"HistoryPoint [symbol=null, date=null, closingPrice=null]",
		(&Point{}).String())

	var nilPoint *Point
	assert.Equal(t, "null", nilPoint.String())
}

func TestPoint_StringKeepsScale(t *testing.T) {
	tests := map[string]string{
		"1.50":    "1.50",
		"300.350": "300.350",
		"0.000":   "0.000",
		"-2.10":   "-2.10",
		"42":      "42",
	}

	for in, want := range tests {
		t.Run(in, func(t *testing.T) {
			assert.Contains(t, aapl(in).String(), "closingPrice="+want+"]")
		})
	}
}
