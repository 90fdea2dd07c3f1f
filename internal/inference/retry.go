package inference

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

// IsRetryableError determines if an error should trigger a retry
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// A truncated or sloppy answer often succeeds on the next attempt
	if errors.Is(err, ErrIncompleteSummary) {
		return true
	}

	errStr := err.Error()
	if strings.Contains(errStr, "json.Unmarshal") || strings.Contains(errStr, "unexpected end of JSON input") {
		return true
	}

	// Retry on network-related errors
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}

	// Retry on 5xx errors (server errors)
	if strings.Contains(errStr, "response error 5") {
		return true
	}

	// Retry on rate limiting (429)
	if strings.Contains(errStr, "response error 429") {
		return true
	}

	return false
}

// Retry calls fn until it succeeds, fails with a non-retryable error,
// or maxRetryAttempts retries have been spent.
func Retry[T any](ctx context.Context, maxRetryAttempts uint, fn func() (T, error)) (T, error) {
	var result T
	if err := retry.Do(
		func() error {
			response, err := fn()
			if err != nil {
				if !IsRetryableError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			result = response
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxRetryAttempts+1),
		retry.LastErrorOnly(true),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		var zero T
		return zero, err
	}
	return result, nil
}
