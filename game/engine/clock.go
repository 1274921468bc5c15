package engine

import (
	"sync"
	"time"
)

// Clock delivers one tick per time unit to a session driver.
type Clock interface {
	C() <-chan time.Time
	Stop()
}

// ClockFactory creates a clock for a new session driver.
type ClockFactory func() Clock

// TickerClock is a Clock backed by time.Ticker.
type TickerClock struct {
	ticker *time.Ticker
}

// NewTickerClock ticks every d.
func NewTickerClock(d time.Duration) *TickerClock {
	return &TickerClock{ticker: time.NewTicker(d)}
}

// SecondClock is the real-time ClockFactory.
func SecondClock() Clock {
	return NewTickerClock(time.Second)
}

func (c *TickerClock) C() <-chan time.Time { return c.ticker.C }

func (c *TickerClock) Stop() { c.ticker.Stop() }

// ManualClock is a deterministic Clock for tests and tools. Each Tick blocks
// until the consumer receives it, so ticks are never coalesced.
type ManualClock struct {
	ch   chan time.Time
	done chan struct{}
	once sync.Once
}

// NewManualClock creates a clock that only ticks when told to.
func NewManualClock() *ManualClock {
	return &ManualClock{
		ch:   make(chan time.Time),
		done: make(chan struct{}),
	}
}

func (c *ManualClock) C() <-chan time.Time { return c.ch }

// Stop releases any pending Tick. Further ticks are dropped.
func (c *ManualClock) Stop() {
	c.once.Do(func() { close(c.done) })
}

// Tick delivers one tick. It returns false if the clock was stopped first.
func (c *ManualClock) Tick() bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.ch <- time.Now():
		return true
	case <-c.done:
		return false
	}
}

// Advance delivers n ticks and returns how many were received.
func (c *ManualClock) Advance(n int) int {
	delivered := 0
	for i := 0; i < n; i++ {
		if !c.Tick() {
			break
		}
		delivered++
	}
	return delivered
}

// Stopped reports whether Stop has been called.
func (c *ManualClock) Stopped() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}
