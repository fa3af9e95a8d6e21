package fetcher

import (
	"net/http"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"
)

const (
	defaultRetryCount       = 3
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second
)

// NewHTTPClient creates a JSON client with retries and exponential backoff.
// A nil log disables retry logging.
func NewHTTPClient(baseURL string, log *zap.Logger) *resty.Client {
	if log == nil {
		log = zap.NewNop()
	}

	return resty.New().
		SetBaseURL(baseURL).
		SetHeader("Accept", "application/json").
		SetRetryCount(defaultRetryCount).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook(log))
}

// retryCondition retries transport errors, 408, 429 and 5xx.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	code := r.StatusCode()
	return code >= 500 || code == http.StatusTooManyRequests || code == http.StatusRequestTimeout
}

func retryHook(log *zap.Logger) func(*resty.Response, error) {
	return func(r *resty.Response, err error) {
		if err != nil {
			log.Debug("retrying request after error",
				zap.Any("url", r.Request.URL),
				zap.Int("attempt", r.Request.Attempt),
				zap.Error(err))
			return
		}

		log.Debug("retrying request after status",
			zap.Any("url", r.Request.URL),
			zap.Int("attempt", r.Request.Attempt),
			zap.Int("status_code", r.StatusCode()))
	}
}
