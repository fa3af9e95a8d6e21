package fetcher

import (
	"context"

	"pricehistory/internal/history"
)

// Fetcher retrieves the price history of one instrument from one source.
type Fetcher interface {
	// Fetch returns the history points, sorted chronologically.
	Fetch(ctx context.Context) (history.Series, error)

	// Key identifies the fetcher in logs and reports.
	// Format: fetcher:{source}:{kind}:{identifier}, e.g. fetcher:alphavantage:history:AAPL
	Key() string
}
