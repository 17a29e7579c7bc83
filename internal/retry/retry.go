// Package retry provides the exponential backoff policy shared by the
// hosting API and chat completion clients.
package retry

import (
	"context"
	"fmt"
	"time"
)

// Policy describes how many times to retry and how long to wait in between.
// The zero value never retries.
type Policy struct {
	MaxRetries    int
	InitialDelay  time.Duration
	BackoffFactor float64
}

// None returns a policy that performs exactly one attempt.
func None() Policy {
	return Policy{}
}

// Do runs fn until it succeeds, returns a non-retryable error, or the retry
// budget is spent. retryable decides whether an error is worth another
// attempt; a nil retryable treats every error as final.
func (p Policy) Do(ctx context.Context, fn func() error, retryable func(error) bool) error {
	delay := p.InitialDelay
	factor := p.BackoffFactor
	if factor <= 0 {
		factor = 1
	}

	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if retryable == nil || !retryable(lastErr) {
			return lastErr
		}

		if attempt < p.MaxRetries {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * factor)
			}
		}
	}

	if p.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("max retries exceeded: %w", lastErr)
}
