package ratelimit

import (
	"context"
	"os"
	"strings"
	"sync"

	"golang.org/x/time/rate"
)

// API names a throttled upstream.
type API string

const (
	APIAlphaVantage API = "alphavantage"
)

// AlphaVantageFreeTierPerMinute is the documented free-tier quota.
const AlphaVantageFreeTierPerMinute = 5

// Limiter holds one token bucket per API. APIs without a bucket are not throttled.
type Limiter struct {
	mu       sync.RWMutex
	limiters map[API]*rate.Limiter
}

var (
	instance *Limiter
	once     sync.Once
)

// New returns a limiter with no buckets.
func New() *Limiter {
	return &Limiter{limiters: make(map[API]*rate.Limiter)}
}

// Default returns the process-wide limiter. It applies the AlphaVantage free
// tier quota, or no limit at all when running under go test.
func Default() *Limiter {
	once.Do(func() {
		instance = New()
		if isTestMode() {
			instance.SetLimit(APIAlphaVantage, rate.Inf, 1)
			return
		}
		instance.SetPerMinute(APIAlphaVantage, AlphaVantageFreeTierPerMinute, 1)
	})
	return instance
}

// SetPerMinute installs a bucket allowing perMinute requests per minute.
// A non-positive perMinute removes throttling for api.
func (l *Limiter) SetPerMinute(api API, perMinute float64, burst int) {
	if perMinute <= 0 {
		l.SetLimit(api, rate.Inf, burst)
		return
	}
	l.SetLimit(api, rate.Limit(perMinute/60.0), burst)
}

// SetLimit installs a bucket with the given rate in events per second.
func (l *Limiter) SetLimit(api API, limit rate.Limit, burst int) {
	if burst < 1 {
		burst = 1
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.limiters[api] = rate.NewLimiter(limit, burst)
}

// Wait blocks until api may be called or ctx is done.
func (l *Limiter) Wait(ctx context.Context, api API) error {
	limiter := l.get(api)
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

// Allow reports whether api may be called now, consuming a token if so.
func (l *Limiter) Allow(api API) bool {
	limiter := l.get(api)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (l *Limiter) get(api API) *rate.Limiter {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.limiters[api]
}

func isTestMode() bool {
	if os.Getenv("GO_TESTING") == "1" {
		return true
	}
	for _, arg := range os.Args {
		if strings.HasPrefix(arg, "-test.") {
			return true
		}
	}
	return false
}
