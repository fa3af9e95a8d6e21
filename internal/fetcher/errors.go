package fetcher

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

// ErrorType categorises a failed fetch.
type ErrorType string

const (
	// ErrorTypeNetwork is a connection-level failure (DNS, refused, reset).
	ErrorTypeNetwork ErrorType = "network"
	// ErrorTypeRateLimit is an HTTP 429 or a throttling notice from the API.
	ErrorTypeRateLimit ErrorType = "rate_limit"
	// ErrorTypeServer is an HTTP 5xx response.
	ErrorTypeServer ErrorType = "server"
	// ErrorTypeClient is an HTTP 4xx response other than 429.
	ErrorTypeClient ErrorType = "client"
	// ErrorTypeValidation is a response that could not be turned into points.
	ErrorTypeValidation ErrorType = "validation"
	// ErrorTypeTimeout is a request that ran past its deadline.
	ErrorTypeTimeout ErrorType = "timeout"
	// ErrorTypeUnknown is any error that is not a FetchError.
	ErrorTypeUnknown ErrorType = "unknown"
)

// FetchError is the error returned by fetchers for remote failures and bad payloads.
type FetchError struct {
	Type       ErrorType
	Retryable  bool
	StatusCode int
	Message    string
	Cause      error
}

func (e *FetchError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s error (status %d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Type, e.Message)
}

func (e *FetchError) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether err carries a retryable FetchError.
func IsRetryable(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Retryable
}

// TypeOf returns the ErrorType of err, or ErrorTypeUnknown for foreign errors.
func TypeOf(err error) ErrorType {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Type
	}
	return ErrorTypeUnknown
}

// NewNetworkError wraps a retryable transport failure.
func NewNetworkError(cause error) *FetchError {
	return &FetchError{Type: ErrorTypeNetwork, Retryable: true, Message: "network request failed", Cause: cause}
}

// NewTimeoutError wraps a retryable deadline or timeout failure.
func NewTimeoutError(cause error) *FetchError {
	return &FetchError{Type: ErrorTypeTimeout, Retryable: true, Message: "request timed out", Cause: cause}
}

// NewRateLimitError is used both for HTTP 429 and for throttling notices
// that arrive with a 200 status, in which case statusCode is 0.
func NewRateLimitError(statusCode int, message string) *FetchError {
	if message == "" {
		message = "rate limit exceeded"
	}
	return &FetchError{Type: ErrorTypeRateLimit, Retryable: true, StatusCode: statusCode, Message: message}
}

// NewServerError reports a retryable 5xx response.
func NewServerError(statusCode int) *FetchError {
	return &FetchError{Type: ErrorTypeServer, Retryable: true, StatusCode: statusCode, Message: "server returned an error"}
}

// NewClientError reports a non-retryable 4xx response.
func NewClientError(statusCode int, message string) *FetchError {
	return &FetchError{Type: ErrorTypeClient, StatusCode: statusCode, Message: message}
}

// NewValidationError reports a payload that could not be mapped to points.
func NewValidationError(message string) *FetchError {
	return &FetchError{Type: ErrorTypeValidation, Message: message}
}

// ClassifyTransportError wraps an error returned before any response was read.
func ClassifyTransportError(err error) *FetchError {
	if errors.Is(err, context.DeadlineExceeded) {
		return NewTimeoutError(err)
	}
	return NewNetworkError(err)
}

// ClassifyHTTPError maps a non-success status code to a FetchError.
func ClassifyHTTPError(statusCode int) *FetchError {
	switch {
	case statusCode == http.StatusTooManyRequests:
		return NewRateLimitError(statusCode, "")
	case statusCode == http.StatusRequestTimeout:
		return &FetchError{Type: ErrorTypeTimeout, Retryable: true, StatusCode: statusCode, Message: "request timed out"}
	case statusCode >= 500:
		return NewServerError(statusCode)
	case statusCode >= 400:
		return NewClientError(statusCode, fmt.Sprintf("client error: HTTP %d", statusCode))
	default:
		return &FetchError{
			Type:       ErrorTypeUnknown,
			StatusCode: statusCode,
			Message:    fmt.Sprintf("unexpected status code: %d", statusCode),
		}
	}
}
