package task

import "time"

// Throttle lets through at most one event per window. The first event of a
// burst passes; the rest are dropped until the window has elapsed.
type Throttle struct {
	clock  interface{ Now() time.Time }
	window time.Duration
	last   time.Time
	seen   bool
}

// NewThrottle creates a throttle reading time from clock.
func NewThrottle(clock interface{ Now() time.Time }, window time.Duration) *Throttle {
	return &Throttle{clock: clock, window: window}
}

// Allow reports whether an event arriving now should be handled.
func (t *Throttle) Allow() bool {
	now := t.clock.Now()
	if t.seen && now.Sub(t.last) < t.window {
		return false
	}
	t.last = now
	t.seen = true
	return true
}

// Reset forgets the last accepted event.
func (t *Throttle) Reset() { t.seen = false }
