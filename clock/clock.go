package clock

import "time"

// Clock provides wall-clock time.
type Clock interface {
	Now() time.Time
}

// System returns a Clock backed by time.Now().
func System() Clock { return systemClock{} }

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Steps returns a Clock that advances by step on every call, starting at
// start. Tests use it to get distinct, predictable timestamps.
func Steps(start time.Time, step time.Duration) Clock {
	return &stepClock{next: start, step: step}
}

type stepClock struct {
	next time.Time
	step time.Duration
}

func (c *stepClock) Now() time.Time {
	now := c.next
	c.next = c.next.Add(c.step)
	return now
}
