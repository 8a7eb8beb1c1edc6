// Package sampling selects which decoded frames get analysed so that the
// analysis rate approximates a target fps regardless of the source fps.
package sampling

// Tolerance absorbs float drift between accumulated targets and
// container timestamps (e.g. 3*0.1 vs 0.30000000000000004).
const Tolerance = 1e-6

// Clock is driven by source timestamps, never by frame counts, so decoder
// stutter or a source fps different from the target does not skew it.
type Clock struct {
	next     float64
	interval float64
	all      bool
}

// NewClock starts sampling at startSec. A non-positive targetFPS samples
// every decoded frame at or after startSec.
func NewClock(targetFPS, startSec float64) *Clock {
	c := &Clock{next: startSec}
	if targetFPS <= 0 {
		c.all = true
		return c
	}
	c.interval = 1.0 / targetFPS
	return c
}

// Sample reports whether the frame at timestamp t is analysed, advancing the
// target by one interval when it is.
func (c *Clock) Sample(t float64) bool {
	if t+Tolerance < c.next {
		return false
	}
	if c.all {
		return true
	}
	c.next += c.interval
	return true
}

// Next is the timestamp the next sampled frame must reach.
func (c *Clock) Next() float64 {
	return c.next
}
