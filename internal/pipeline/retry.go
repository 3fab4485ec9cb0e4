package pipeline

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/repomind-ai/repomind/internal/port"
)

// RetryConfig configures exponential backoff for rate-limited calls.
type RetryConfig struct {
	MaxRetries int           // retries after the initial attempt
	BaseDelay  time.Duration // initial delay, doubled each attempt
	MaxJitter  time.Duration // random jitter added to every delay
}

// DefaultMaxJitter spreads retries of concurrent callers apart.
const DefaultMaxJitter = time.Second

// backoffDelay computes the delay before retry attempt i:
// BaseDelay * 2^i plus a random jitter in [0, MaxJitter).
func (c RetryConfig) backoffDelay(attempt int) time.Duration {
	delay := c.BaseDelay << uint(attempt)
	if c.MaxJitter > 0 {
		delay += time.Duration(rand.Int63n(int64(c.MaxJitter)))
	}
	return delay
}

// RetryRateLimited executes fn, retrying with exponential backoff as long as
// the failure is classified as a rate limit. Any other error propagates
// immediately. After MaxRetries retries the last rate-limit error is
// returned to the caller.
func RetryRateLimited[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		result, err := fn()
		if err == nil {
			return result, nil
		}
		// Only ordinary throttling is worth backing off for; permanent
		// quota exhaustion and every other failure propagate at once.
		if !port.IsRateLimit(err) || port.IsPermanentRateLimit(err) {
			return zero, err
		}
		lastErr = err

		if attempt < cfg.MaxRetries {
			delay := cfg.backoffDelay(attempt)
			slog.Warn("rate limited, backing off", "attempt", attempt+1, "delay", delay)
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return zero, lastErr
}
