package kernel

import (
	"sync/atomic"
	"time"
)

// Clock is a periodic TickSource driven by the monotonic clock. It reports
// every whole period elapsed since the last poll, so a pass that overruns a
// period shows up as more than one expiry.
type Clock struct {
	period time.Duration
	next   time.Time
	now    func() time.Time
}

// NewClock returns a Clock whose first expiry is one period from now.
func NewClock(period time.Duration) *Clock {
	if period <= 0 {
		period = time.Millisecond
	}
	c := &Clock{period: period, now: time.Now}
	c.next = c.now().Add(period)
	return c
}

func (c *Clock) Period() time.Duration { return c.period }

func (c *Clock) Poll() int {
	now := c.now()
	if now.Before(c.next) {
		return 0
	}
	n := int(now.Sub(c.next)/c.period) + 1
	c.next = c.next.Add(time.Duration(n) * c.period)
	return n
}

// Lockstep expires exactly once per poll. It makes every kernel pass a tick
// and is used for deterministic simulation.
type Lockstep struct{}

func (Lockstep) Poll() int { return 1 }

// Manual is a TickSource advanced explicitly, e.g. from a timer interrupt or
// a test. It is safe to Add from another goroutine.
type Manual struct {
	pending atomic.Int32
}

// Add records n expiries.
func (m *Manual) Add(n int) { m.pending.Add(int32(n)) }

func (m *Manual) Poll() int { return int(m.pending.Swap(0)) }
