package testutil

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"pricehistory/internal/fetcher"
	"pricehistory/internal/history"
)

// MockFetcher is a fetcher.Fetcher driven by function fields.
type MockFetcher struct {
	FetchFunc func(ctx context.Context) (history.Series, error)
	KeyFunc   func() string
}

// Fetch calls FetchFunc, or returns no points and no error when it is nil.
func (m *MockFetcher) Fetch(ctx context.Context) (history.Series, error) {
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx)
	}
	return nil, nil
}

// Key calls KeyFunc, or returns "mock:key" when it is nil.
func (m *MockFetcher) Key() string {
	if m.KeyFunc != nil {
		return m.KeyFunc()
	}
	return "mock:key"
}

// NewMockFetcher returns a fetcher that always yields points and err.
func NewMockFetcher(key string, points history.Series, err error) fetcher.Fetcher {
	return &MockFetcher{
		FetchFunc: func(ctx context.Context) (history.Series, error) {
			return points, err
		},
		KeyFunc: func() string {
			return key
		},
	}
}

// Daily builds one point per closing price on consecutive days starting at from.
func Daily(symbol string, from time.Time, closes ...string) history.Series {
	series := make(history.Series, 0, len(closes))
	for i, c := range closes {
		series = append(series, history.New(symbol, from.AddDate(0, 0, i), decimal.RequireFromString(c)))
	}
	return series
}
