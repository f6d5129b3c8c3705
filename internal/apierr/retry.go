package apierr

import (
	"context"
	"time"
)

type BackoffKind int

const (
	BackoffExponential BackoffKind = iota
	BackoffLinear
)

type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Backoff     BackoffKind
	// ShouldRetry gates each repeat; nil defaults to Retryable. Callers use
	// this to restrict retries to idempotent operations.
	ShouldRetry func(error) bool
}

// Retry runs fn up to MaxAttempts times with backoff between attempts.
// It returns the first success or the last error once attempts or the
// predicate are exhausted.
func Retry(ctx context.Context, config RetryConfig, fn func() error) error {
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = 3
	}
	if config.BaseDelay <= 0 {
		config.BaseDelay = 300 * time.Millisecond
	}
	shouldRetry := config.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = Retryable
	}

	var lastErr error
	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if attempt == config.MaxAttempts || !shouldRetry(lastErr) {
			break
		}

		delay := config.BaseDelay * time.Duration(attempt)
		if config.Backoff == BackoffExponential {
			delay = config.BaseDelay << (attempt - 1)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return lastErr
}
