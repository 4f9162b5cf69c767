package engine

import "time"

// Clock converts scheduler timestamps into seconds since the first tick.
// It never runs backwards.
type Clock struct {
	origin  time.Duration
	started bool
	elapsed float64
}

func (c *Clock) Advance(now time.Duration) float64 {
	if !c.started {
		c.origin = now
		c.started = true
	}
	if e := (now - c.origin).Seconds(); e > c.elapsed {
		c.elapsed = e
	}
	return c.elapsed
}

func (c *Clock) Elapsed() float64 {
	return c.elapsed
}
