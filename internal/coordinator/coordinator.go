package coordinator

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"pricehistory/internal/fetcher"
	"pricehistory/internal/history"
)

// ErrNoFetchers is returned by Run when nothing is configured.
var ErrNoFetchers = errors.New("no fetchers configured")

// Report is the outcome of one Run.
type Report struct {
	// Points holds every fetched point, grouped by symbol and sorted by date.
	Points history.Series
	// Failures maps fetcher keys to the error they returned.
	Failures map[string]error
	// Succeeded counts fetchers that returned without error.
	Succeeded int
}

// Coordinator runs fetchers concurrently and merges their series.
type Coordinator struct {
	fetchers []fetcher.Fetcher
	log      *zap.Logger
}

// New creates a Coordinator. A nil log discards output.
func New(fetchers []fetcher.Fetcher, log *zap.Logger) *Coordinator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Coordinator{
		fetchers: fetchers,
		log:      log,
	}
}

// Run executes every fetcher in its own goroutine. Individual failures are
// logged and recorded in the report; Run only fails when there is nothing to run.
func (c *Coordinator) Run(ctx context.Context) (*Report, error) {
	if len(c.fetchers) == 0 {
		return nil, ErrNoFetchers
	}

	resultChan := make(chan fetcher.Result, len(c.fetchers))

	var wg sync.WaitGroup
	for _, f := range c.fetchers {
		wg.Add(1)
		go func(ft fetcher.Fetcher) {
			defer wg.Done()

			points, err := ft.Fetch(ctx)
			resultChan <- fetcher.Result{
				Key:    ft.Key(),
				Points: points,
				Error:  err,
			}
		}(f)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	report := &Report{Failures: make(map[string]error)}
	for result := range resultChan {
		if result.Error != nil {
			c.log.Warn("fetch failed",
				zap.String("key", result.Key),
				zap.String("error_type", string(fetcher.TypeOf(result.Error))),
				zap.Bool("retryable", fetcher.IsRetryable(result.Error)),
				zap.Error(result.Error))
			report.Failures[result.Key] = result.Error
			continue
		}

		report.Succeeded++
		report.Points = append(report.Points, result.Points...)

		fields := []zap.Field{zap.String("key", result.Key), zap.Int("points", len(result.Points))}
		if latest := result.Points.Latest(); latest != nil {
			fields = append(fields, zap.Stringer("latest", latest))
		}
		c.log.Info("fetch succeeded", fields...)
	}

	report.Points.SortBySymbol()
	return report, nil
}
