package history

import (
	"cmp"
	"slices"
	"time"
)

// Series is an ordered list of points.
type Series []*Point

// Sort orders the series chronologically. Points without a date come first;
// points on the same instant keep their relative order.
func (s Series) Sort() {
	slices.SortStableFunc(s, func(a, b *Point) int {
		ta, okA := dateOf(a)
		tb, okB := dateOf(b)
		switch {
		case !okA && !okB:
			return 0
		case !okA:
			return -1
		case !okB:
			return 1
		}
		return ta.Compare(tb)
	})
}

// SortBySymbol groups the series by symbol, each group in chronological
// order. Points without a symbol come first.
func (s Series) SortBySymbol() {
	s.Sort()
	slices.SortStableFunc(s, func(a, b *Point) int {
		return cmp.Compare(a.SymbolOrEmpty(), b.SymbolOrEmpty())
	})
}

// Between returns the points dated within [start, end]. A zero start or end
// leaves that side open. Undated points are never included.
func (s Series) Between(start, end time.Time) Series {
	var out Series
	for _, p := range s {
		t, ok := dateOf(p)
		if !ok {
			continue
		}
		if !start.IsZero() && t.Before(start) {
			continue
		}
		if !end.IsZero() && t.After(end) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Latest returns the point with the latest date, or nil if no point is dated.
func (s Series) Latest() *Point {
	var latest *Point
	var latestAt time.Time
	for _, p := range s {
		t, ok := dateOf(p)
		if !ok {
			continue
		}
		if latest == nil || t.After(latestAt) {
			latest, latestAt = p, t
		}
	}
	return latest
}

// Equal reports whether both series hold equal points in the same order.
func (s Series) Equal(other Series) bool {
	return slices.EqualFunc(s, other, (*Point).Equal)
}

func dateOf(p *Point) (time.Time, bool) {
	if p == nil || p.Date == nil {
		return time.Time{}, false
	}
	return *p.Date, true
}
