package pipeline

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThrottleSpacing(t *testing.T) {
	throttle := NewThrottle(30 * time.Millisecond)
	ctx := context.Background()

	start := time.Now()
	for i := 0; i < 3; i++ {
		require.NoError(t, throttle.Wait(ctx))
	}
	elapsed := time.Since(start)

	// First call is free, the next two wait ~30ms each.
	assert.GreaterOrEqual(t, elapsed, 60*time.Millisecond)
}

func TestThrottleFirstCallImmediate(t *testing.T) {
	throttle := NewThrottle(time.Minute)

	start := time.Now()
	require.NoError(t, throttle.Wait(context.Background()))
	assert.Less(t, time.Since(start), 100*time.Millisecond)
}

func TestThrottleCancelledContext(t *testing.T) {
	throttle := NewThrottle(time.Minute)
	require.NoError(t, throttle.Wait(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, throttle.Wait(ctx), context.Canceled)
}
