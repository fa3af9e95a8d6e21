package fetcher

import "pricehistory/internal/history"

// Result is what a worker goroutine hands back to the coordinator.
type Result struct {
	Key string

	// Points is only meaningful when Error is nil.
	Points history.Series

	Error error
}
