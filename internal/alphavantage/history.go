package alphavantage

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"resty.dev/v3"

	"pricehistory/internal/fetcher"
	"pricehistory/internal/history"
	"pricehistory/internal/ratelimit"
)

const (
	functionDaily = "TIME_SERIES_DAILY"
	dayLayout     = "2006-01-02"

	OutputSizeCompact = "compact"
	OutputSizeFull    = "full"
)

// DailyResponse is the TIME_SERIES_DAILY payload. On failure AlphaVantage
// still answers 200 and fills one of Note, Information or ErrorMessage.
type DailyResponse struct {
	MetaData struct {
		Information   string `json:"1. Information"`
		Symbol        string `json:"2. Symbol"`
		LastRefreshed string `json:"3. Last Refreshed"`
		OutputSize    string `json:"4. Output Size"`
		TimeZone      string `json:"5. Time Zone"`
	} `json:"Meta Data"`
	TimeSeries map[string]DailyBar `json:"Time Series (Daily)"`

	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

// DailyBar is one trading day of a DailyResponse.
type DailyBar struct {
	Open   string `json:"1. open"`
	High   string `json:"2. high"`
	Low    string `json:"3. low"`
	Close  string `json:"4. close"`
	Volume string `json:"5. volume"`
}

// HistoryFetcher fetches daily closing prices for one symbol.
type HistoryFetcher struct {
	apiKey     string
	symbol     string
	outputSize string
	start, end time.Time
	client     *resty.Client
	limiter    *ratelimit.Limiter
	log        *zap.Logger

	retryCount int
	retryWait  time.Duration
}

// Option configures a HistoryFetcher.
type Option func(*HistoryFetcher)

// WithRange keeps only points dated within [start, end]. Zero bounds are open.
func WithRange(start, end time.Time) Option {
	return func(f *HistoryFetcher) { f.start, f.end = start, end }
}

// WithOutputSize selects "compact" (last 100 days) or "full".
func WithOutputSize(size string) Option {
	return func(f *HistoryFetcher) {
		if size != "" {
			f.outputSize = size
		}
	}
}

// WithLimiter throttles requests through l instead of ratelimit.Default.
func WithLimiter(l *ratelimit.Limiter) Option {
	return func(f *HistoryFetcher) { f.limiter = l }
}

// WithLogger sets the logger used for retries and skipped days.
func WithLogger(log *zap.Logger) Option {
	return func(f *HistoryFetcher) { f.log = log }
}

// WithRetry overrides the client's retry count and base wait.
func WithRetry(count int, wait time.Duration) Option {
	return func(f *HistoryFetcher) { f.retryCount, f.retryWait = count, wait }
}

// NewHistoryFetcher creates a fetcher for symbol against baseURL.
func NewHistoryFetcher(apiKey, symbol, baseURL string, opts ...Option) *HistoryFetcher {
	f := &HistoryFetcher{
		apiKey:     apiKey,
		symbol:     strings.ToUpper(strings.TrimSpace(symbol)),
		outputSize: OutputSizeCompact,
		limiter:    ratelimit.Default(),
		log:        zap.NewNop(),
		retryCount: -1,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.log == nil {
		f.log = zap.NewNop()
	}

	f.client = fetcher.NewHTTPClient(baseURL, f.log)
	if f.retryCount >= 0 {
		f.client.SetRetryCount(f.retryCount).
			SetRetryWaitTime(f.retryWait).
			SetRetryMaxWaitTime(10 * f.retryWait)
	}
	return f
}

// Fetch retrieves the daily closing prices, oldest first.
func (f *HistoryFetcher) Fetch(ctx context.Context) (history.Series, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, ratelimit.APIAlphaVantage); err != nil {
			return nil, fetcher.NewTimeoutError(err)
		}
	}

	var result DailyResponse
	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"apikey":     f.apiKey,
			"function":   functionDaily,
			"symbol":     f.symbol,
			"outputsize": f.outputSize,
		}).
		SetResult(&result).
		Get("")
	if err != nil {
		return nil, fetcher.ClassifyTransportError(err)
	}
	if !resp.IsSuccess() {
		return nil, fetcher.ClassifyHTTPError(resp.StatusCode())
	}

	switch {
	case result.Note != "":
		return nil, fetcher.NewRateLimitError(0, result.Note)
	case result.Information != "":
		return nil, fetcher.NewRateLimitError(0, result.Information)
	case result.ErrorMessage != "":
		return nil, fetcher.NewClientError(resp.StatusCode(), result.ErrorMessage)
	case len(result.TimeSeries) == 0:
		return nil, fetcher.NewValidationError(fmt.Sprintf("time series not found in response for %s", f.symbol))
	}

	points, err := f.toSeries(result.TimeSeries)
	if err != nil {
		return nil, err
	}

	f.log.Debug("fetched price history",
		zap.String("symbol", f.symbol),
		zap.Int("days", len(result.TimeSeries)),
		zap.Int("kept", len(points)))

	return points, nil
}

func (f *HistoryFetcher) toSeries(bars map[string]DailyBar) (history.Series, error) {
	series := make(history.Series, 0, len(bars))
	for day, bar := range bars {
		date, err := time.ParseInLocation(dayLayout, day, time.UTC)
		if err != nil {
			return nil, fetcher.NewValidationError(fmt.Sprintf("invalid trading day %q for %s", day, f.symbol))
		}
		if bar.Close == "" {
			return nil, fetcher.NewValidationError(fmt.Sprintf("closing price missing on %s for %s", day, f.symbol))
		}
		price, err := decimal.NewFromString(bar.Close)
		if err != nil {
			return nil, fetcher.NewValidationError(fmt.Sprintf("invalid closing price %q on %s for %s", bar.Close, day, f.symbol))
		}
		series = append(series, history.New(f.symbol, date, price))
	}

	series.Sort()
	return series.Between(f.start, f.end), nil
}

// Key returns fetcher:alphavantage:history:<SYMBOL>.
func (f *HistoryFetcher) Key() string {
	return fmt.Sprintf("fetcher:alphavantage:history:%s", f.symbol)
}
