package testutil

import (
	"sync"
	"time"
)

// Clock is a manual clock. After fires immediately unless Block is set, and
// every requested duration is recorded.
type Clock struct {
	Time time.Time

	// Block makes After return a channel that never fires.
	Block bool

	// OnAfter, when set, is called with each requested duration before After
	// returns.
	OnAfter func(d time.Duration)

	mu     sync.Mutex
	delays []time.Duration
}

// Now returns the fixed time.
func (c *Clock) Now() time.Time {
	return c.Time
}

// After records d.
func (c *Clock) After(d time.Duration) <-chan time.Time {
	c.mu.Lock()
	c.delays = append(c.delays, d)
	c.mu.Unlock()

	if c.OnAfter != nil {
		c.OnAfter(d)
	}
	if c.Block {
		return make(chan time.Time)
	}
	ch := make(chan time.Time, 1)
	ch <- c.Time.Add(d)
	return ch
}

// Delays returns the durations passed to After, in order.
func (c *Clock) Delays() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.delays...)
}
