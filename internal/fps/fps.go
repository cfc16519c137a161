// Package fps measures frame rate as the reciprocal of the interval between
// consecutive ticks.
package fps

import "time"

// Clock is owned by a single goroutine.
type Clock struct {
	now      func() time.Time
	last     time.Time
	interval time.Duration
	ticks    uint64
}

// NewClock returns a clock backed by time.Now.
func NewClock() *Clock {
	return NewClockWith(time.Now)
}

// NewClockWith returns a clock reading the given time source.
func NewClockWith(now func() time.Time) *Clock {
	return &Clock{now: now}
}

// Tick marks the start of a frame.
func (c *Clock) Tick() {
	t := c.now()
	if c.ticks > 0 {
		c.interval = t.Sub(c.last)
	}
	c.last = t
	c.ticks++
}

// FPS returns the rate implied by the last two ticks. With a single tick the
// time elapsed since that tick stands in for the interval, so a one-shot
// request still reports the rate its own frame was produced at. It returns 0
// before any tick or when no time has passed.
func (c *Clock) FPS() float64 {
	d := c.interval
	if c.ticks == 1 {
		d = c.now().Sub(c.last)
	}
	if d <= 0 {
		return 0
	}
	return float64(time.Second) / float64(d)
}

// Ticks returns the number of recorded ticks.
func (c *Clock) Ticks() uint64 { return c.ticks }
