package coordinator

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"pricehistory/internal/fetcher"
	"pricehistory/internal/history"
	"pricehistory/internal/testutil"
)

var jan2 = time.Date(2020, 1, 2, 0, 0, 0, 0, time.UTC)

func TestNew(t *testing.T) {
	fetchers := []fetcher.Fetcher{
		testutil.NewMockFetcher("test:key1", nil, nil),
		testutil.NewMockFetcher("test:key2", nil, nil),
	}

	coord := New(fetchers, nil)
	if coord == nil {
		t.Fatal("New() returned nil")
	}
	if len(coord.fetchers) != len(fetchers) {
		t.Errorf("New() created coordinator with %d fetchers, want %d", len(coord.fetchers), len(fetchers))
	}
	if coord.log == nil {
		t.Error("New() left log nil")
	}
}

func TestRun_Success(t *testing.T) {
	fetchers := []fetcher.Fetcher{
		testutil.NewMockFetcher("test:msft", testutil.Daily("MSFT", jan2, "160.62", "158.62"), nil),
		testutil.NewMockFetcher("test:aapl", testutil.Daily("AAPL", jan2, "300.35", "297.43", "299.80"), nil),
	}

	report, err := New(fetchers, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if report.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", report.Succeeded)
	}
	if len(report.Failures) != 0 {
		t.Errorf("Failures = %v, want none", report.Failures)
	}

	want := append(testutil.Daily("AAPL", jan2, "300.35", "297.43", "299.80"), testutil.Daily("MSFT", jan2, "160.62", "158.62")...)
	if !report.Points.Equal(want) {
		t.Errorf("Points = %v, want %v", report.Points, want)
	}
}

func TestRun_WithErrors(t *testing.T) {
	testErr := errors.New("fetch failed")

	fetchers := []fetcher.Fetcher{
		testutil.NewMockFetcher("test:key1", testutil.Daily("AAPL", jan2, "1"), nil),
		testutil.NewMockFetcher("test:key2", nil, testErr),
		testutil.NewMockFetcher("test:key3", testutil.Daily("IBM", jan2, "3"), nil),
	}

	report, err := New(fetchers, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if report.Succeeded != 2 {
		t.Errorf("Succeeded = %d, want 2", report.Succeeded)
	}
	if got := report.Failures["test:key2"]; !errors.Is(got, testErr) {
		t.Errorf("Failures[test:key2] = %v, want %v", got, testErr)
	}
	if len(report.Points) != 2 {
		t.Errorf("len(Points) = %d, want 2", len(report.Points))
	}
}

func TestRun_NoFetchers(t *testing.T) {
	_, err := New([]fetcher.Fetcher{}, nil).Run(context.Background())
	if !errors.Is(err, ErrNoFetchers) {
		t.Fatalf("Run() error = %v, want %v", err, ErrNoFetchers)
	}
	if err.Error() != "no fetchers configured" {
		t.Errorf("Run() error = %q, want %q", err.Error(), "no fetchers configured")
	}
}

func TestRun_ContextCancellation(t *testing.T) {
	slowFetcher := &testutil.MockFetcher{
		FetchFunc: func(ctx context.Context) (history.Series, error) {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(5 * time.Second):
				return testutil.Daily("SLOW", jan2, "1"), nil
			}
		},
		KeyFunc: func() string {
			return "test:slow"
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	report, err := New([]fetcher.Fetcher{slowFetcher}, nil).Run(ctx)
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}
	if !errors.Is(report.Failures["test:slow"], context.DeadlineExceeded) {
		t.Errorf("Failures[test:slow] = %v, want context.DeadlineExceeded", report.Failures["test:slow"])
	}
}

func TestRun_ConcurrentExecution(t *testing.T) {
	delayed := func(key string, delay time.Duration) fetcher.Fetcher {
		return &testutil.MockFetcher{
			FetchFunc: func(ctx context.Context) (history.Series, error) {
				time.Sleep(delay)
				return testutil.Daily(key, jan2, "1"), nil
			},
			KeyFunc: func() string { return "test:" + key },
		}
	}

	fetchers := []fetcher.Fetcher{
		delayed("A", 100*time.Millisecond),
		delayed("B", 100*time.Millisecond),
		delayed("C", 100*time.Millisecond),
	}

	start := time.Now()
	report, err := New(fetchers, nil).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	if report.Succeeded != 3 {
		t.Errorf("Succeeded = %d, want 3", report.Succeeded)
	}
	// Sequential execution would take at least 300ms.
	if d := time.Since(start); d > 250*time.Millisecond {
		t.Errorf("Run() took %v, fetchers likely ran sequentially", d)
	}
}

func TestRun_LogsResults(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)

	fetchers := []fetcher.Fetcher{
		testutil.NewMockFetcher("test:ok", testutil.Daily("AAPL", jan2, "300.35"), nil),
		testutil.NewMockFetcher("test:bad", nil, fetcher.NewServerError(503)),
	}

	if _, err := New(fetchers, zap.New(core)).Run(context.Background()); err != nil {
		t.Fatalf("Run() returned unexpected error: %v", err)
	}

	failed := logs.FilterMessage("fetch failed").All()
	if len(failed) != 1 {
		t.Fatalf("got %d 'fetch failed' entries, want 1", len(failed))
	}
	ctx := failed[0].ContextMap()
	if ctx["key"] != "test:bad" || ctx["error_type"] != "server" || ctx["retryable"] != true {
		t.Errorf("unexpected failure fields: %v", ctx)
	}

	succeeded := logs.FilterMessage("fetch succeeded").All()
	if len(succeeded) != 1 {
		t.Fatalf("got %d 'fetch succeeded' entries, want 1", len(succeeded))
	}
	want := "HistoryPoint [symbol=AAPL, date=Thu Jan 02 00:00:00 UTC 2020, closingPrice=300.35]"
	if got := succeeded[0].ContextMap()["latest"]; got != want {
		t.Errorf("latest = %v, want %q", got, want)
	}
}
