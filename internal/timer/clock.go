package timer

import (
	"sync"
	"time"
)

// Instant is a monotonic clock reading: the time elapsed since the clock's
// epoch. It never goes backward and is unaffected by wall-clock changes.
type Instant time.Duration

// Seconds returns the instant as floating-point seconds.
func (i Instant) Seconds() float64 {
	return time.Duration(i).Seconds()
}

// Sub returns i - j in seconds.
func (i Instant) Sub(j Instant) float64 {
	return time.Duration(i - j).Seconds()
}

// Clock provides monotonic instants.
type Clock interface {
	Now() Instant
}

// MonotonicClock reads Go's monotonic clock relative to its creation.
type MonotonicClock struct {
	epoch time.Time
}

// NewMonotonicClock creates a clock whose epoch is now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{epoch: time.Now()}
}

// Now returns the monotonic time since the epoch. time.Since uses the
// monotonic reading embedded in epoch, so wall-clock jumps do not apply.
func (c *MonotonicClock) Now() Instant {
	return Instant(time.Since(c.epoch))
}

// FakeClock is a manually advanced clock for tests and simulations.
type FakeClock struct {
	mu  sync.Mutex
	now Instant
}

// Now returns the current fake instant.
func (c *FakeClock) Now() Instant {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d. Negative values are ignored.
func (c *FakeClock) Advance(d time.Duration) Instant {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += Instant(d)
	}
	return c.now
}

// AdvanceSeconds is Advance with floating-point seconds.
func (c *FakeClock) AdvanceSeconds(s float64) Instant {
	return c.Advance(time.Duration(s * float64(time.Second)))
}
