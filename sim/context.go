// Package sim holds the per-session simulation primitives shared by every
// component: the tick clock, the session RNG stream and the scheduler.
package sim

import "time"

// Context is created once per session and handed to every component call.
type Context struct {
	Tick uint64
	FPS  int
	Rand *Rand
}

func NewContext(fps int, seed int64) *Context {
	if fps <= 0 {
		fps = 30
	}
	return &Context{
		FPS:  fps,
		Rand: NewRand(seed),
	}
}

// Ticks converts d to a whole number of ticks, rounding up, at least one.
func (c *Context) Ticks(d time.Duration) uint64 {
	return DurationTicks(d, c.FPS)
}

// Elapsed reports the wall time represented by n ticks.
func (c *Context) Elapsed(n uint64) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(c.FPS)
}

func DurationTicks(d time.Duration, fps int) uint64 {
	if d <= 0 {
		return 1
	}
	n := (int64(d)*int64(fps) + int64(time.Second) - 1) / int64(time.Second)
	if n < 1 {
		n = 1
	}
	return uint64(n)
}
