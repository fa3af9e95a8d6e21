package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pricehistory/internal/alphavantage"
	"pricehistory/internal/config"
	"pricehistory/internal/coordinator"
	"pricehistory/internal/fetcher"
	"pricehistory/internal/history"
	"pricehistory/internal/logger"
	"pricehistory/internal/ratelimit"
)

const fetchTimeout = 30 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.LogEnv)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("price history run failed", zap.Error(err))
		log.Sync()
		os.Exit(1)
	}
}

// run fetches every configured symbol and writes the historyPoints document.
// opts are applied to every fetcher after the configured ones.
func run(ctx context.Context, cfg *config.Config, log *zap.Logger, opts ...alphavantage.Option) error {
	limiter := ratelimit.New()
	limiter.SetPerMinute(ratelimit.APIAlphaVantage, cfg.AlphavantageRequestsPerMinute, 1)

	fetchers := buildFetchers(cfg, limiter, log, opts)

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	log.Info("fetching price history",
		zap.Strings("symbols", cfg.StockSymbols),
		zap.Time("start", cfg.Start),
		zap.Time("end", cfg.End))

	report, err := coordinator.New(fetchers, log).Run(fetchCtx)
	if err != nil {
		return err
	}
	if report.Succeeded == 0 {
		return fmt.Errorf("all %d fetches failed", len(report.Failures))
	}

	if err := writeOutput(cfg.OutputPath, report.Points); err != nil {
		return err
	}

	log.Info("price history written",
		zap.String("output", cfg.OutputPath),
		zap.Int("points", len(report.Points)),
		zap.Int("failed", len(report.Failures)))
	return nil
}

func buildFetchers(cfg *config.Config, limiter *ratelimit.Limiter, log *zap.Logger, extra []alphavantage.Option) []fetcher.Fetcher {
	fetchers := make([]fetcher.Fetcher, 0, len(cfg.StockSymbols))
	for _, symbol := range cfg.StockSymbols {
		opts := append([]alphavantage.Option{
			alphavantage.WithRange(cfg.Start, cfg.End),
			alphavantage.WithOutputSize(cfg.AlphavantageOutputSize),
			alphavantage.WithLimiter(limiter),
			alphavantage.WithLogger(log.With(zap.String("symbol", symbol))),
		}, extra...)

		fetchers = append(fetchers, alphavantage.NewHistoryFetcher(
			cfg.AlphavantageAPIKey,
			symbol,
			cfg.AlphavantageBaseURL,
			opts...,
		))
	}
	return fetchers
}

// writeOutput writes points to path, or to stdout when path is "" or "-".
func writeOutput(path string, points history.Series) error {
	if path == "" || path == "-" {
		if err := history.Encode(os.Stdout, points); err != nil {
			return fmt.Errorf("failed to write stdout: %w", err)
		}
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	return encodeAndClose(f, path, points)
}

// encodeAndClose encodes points to w and always closes it. A failed close is
// returned as an error.
func encodeAndClose(w io.WriteCloser, name string, points history.Series) error {
	if err := history.Encode(w, points); err != nil {
		w.Close()
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", name, err)
	}
	return nil
}
