package pipeline

import (
	"context"
	"sync"
	"time"
)

// Throttle enforces a minimum spacing between successive calls to one shared
// external quota. Each external service gets its own instance; the state is
// never process-global.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	next     time.Time
}

// NewThrottle creates a throttle with the given minimum inter-call interval.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Wait blocks until the minimum interval since the previous call has passed,
// or ctx is done. The first call returns immediately.
func (t *Throttle) Wait(ctx context.Context) error {
	t.mu.Lock()
	now := time.Now()
	wait := t.next.Sub(now)
	if wait < 0 {
		wait = 0
	}
	// Reserve our slot before sleeping so concurrent waiters queue up.
	t.next = now.Add(wait + t.interval)
	t.mu.Unlock()

	if wait == 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
