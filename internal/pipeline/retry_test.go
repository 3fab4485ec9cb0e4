package pipeline

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repomind-ai/repomind/internal/port"
)

func TestBackoffDelay(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 100 * time.Millisecond, MaxJitter: time.Second}

	for attempt := 0; attempt < 4; attempt++ {
		lower := cfg.BaseDelay << uint(attempt)
		upper := lower + time.Second
		for i := 0; i < 50; i++ {
			d := cfg.backoffDelay(attempt)
			assert.GreaterOrEqual(t, d, lower, "attempt %d", attempt)
			assert.Less(t, d, upper, "attempt %d", attempt)
		}
	}
}

func TestBackoffDelayNoJitter(t *testing.T) {
	cfg := RetryConfig{BaseDelay: 5 * time.Second}
	assert.Equal(t, 5*time.Second, cfg.backoffDelay(0))
	assert.Equal(t, 10*time.Second, cfg.backoffDelay(1))
	assert.Equal(t, 20*time.Second, cfg.backoffDelay(2))
}

func TestRetryRateLimited(t *testing.T) {
	ctx := context.Background()
	cfg := RetryConfig{MaxRetries: 2, BaseDelay: time.Millisecond}
	rateLimited := &port.RateLimitError{Service: "test", Status: 429}

	t.Run("success passes through", func(t *testing.T) {
		calls := 0
		result, err := RetryRateLimited(ctx, cfg, func() (string, error) {
			calls++
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 1, calls)
	})

	t.Run("non-rate-limit error propagates immediately", func(t *testing.T) {
		boom := errors.New("boom")
		calls := 0
		_, err := RetryRateLimited(ctx, cfg, func() (string, error) {
			calls++
			return "", boom
		})
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, 1, calls)
	})

	t.Run("rate limit retries then succeeds", func(t *testing.T) {
		calls := 0
		result, err := RetryRateLimited(ctx, cfg, func() (string, error) {
			calls++
			if calls < 3 {
				return "", rateLimited
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", result)
		assert.Equal(t, 3, calls)
	})

	t.Run("exhausted retries return last error", func(t *testing.T) {
		calls := 0
		_, err := RetryRateLimited(ctx, cfg, func() (string, error) {
			calls++
			return "", rateLimited
		})
		assert.ErrorIs(t, err, port.ErrRateLimited)
		// Initial attempt plus MaxRetries retries.
		assert.Equal(t, 3, calls)
	})

	t.Run("permanent rate limit is not retried", func(t *testing.T) {
		permanent := &port.RateLimitError{Service: "test", Status: 402, Permanent: true}
		calls := 0
		_, err := RetryRateLimited(ctx, cfg, func() (string, error) {
			calls++
			return "", permanent
		})
		assert.True(t, port.IsPermanentRateLimit(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("cancelled context aborts the wait", func(t *testing.T) {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := RetryRateLimited(cancelled, RetryConfig{MaxRetries: 2, BaseDelay: time.Minute}, func() (string, error) {
			return "", rateLimited
		})
		assert.ErrorIs(t, err, context.Canceled)
	})
}
