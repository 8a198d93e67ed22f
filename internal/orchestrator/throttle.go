package orchestrator

import (
	"sync"
	"time"
)

// Throttle coalesces progress delivery to at most one event per interval.
// Final events always pass so a 100% update is never swallowed.
type Throttle struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewThrottle returns a throttle with the given minimum delivery interval.
// A non-positive interval disables coalescing.
func NewThrottle(interval time.Duration) *Throttle {
	return &Throttle{interval: interval}
}

// Allow reports whether an event arriving now should be delivered.
func (t *Throttle) Allow(final bool) bool {
	if final {
		return true
	}
	if t.interval <= 0 {
		return true
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	now := time.Now()
	if now.Sub(t.last) < t.interval {
		return false
	}
	t.last = now
	return true
}
