package services

import (
	"context"
	"time"

	"github.com/iolph/wpr/pkg/logger"
)

// RetryPolicy retries a fallible external call with exponential backoff.
// Used by the AI summary client and reusable for any outbound call.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  int
}

// DefaultRetryPolicy is 3 attempts with 1s/2s/4s backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: time.Second, Multiplier: 2}
}

// Do runs fn until it succeeds, attempts are exhausted, or ctx is done.
// The delay before attempt n+1 is BaseDelay * Multiplier^n.
func (p RetryPolicy) Do(ctx context.Context, name string, fn func(context.Context) error) error {
	delay := p.BaseDelay
	var lastErr error

	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == p.MaxAttempts {
			break
		}

		logger.Warn().
			Str("call", name).
			Int("attempt", attempt).
			Dur("backoff", delay).
			Err(lastErr).
			Msg("retrying after failure")

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay *= time.Duration(p.Multiplier)
	}

	return lastErr
}
