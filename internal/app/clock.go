package app

import "time"

// Clock models the wall-clock chip boundary: read and set only. The
// driver itself lives outside the core.
type Clock interface {
	Now() time.Time
	Set(t time.Time) error
}

// offsetClock stands in for the RTC chip by tracking an adjustable
// offset over the host clock. Setting it never touches the OS clock.
type offsetClock struct {
	offset time.Duration
}

// NewSystemClock returns a settable clock seeded from the host time
func NewSystemClock() Clock {
	return &offsetClock{}
}

func (c *offsetClock) Now() time.Time {
	return time.Now().Add(c.offset)
}

func (c *offsetClock) Set(t time.Time) error {
	c.offset = time.Until(t)
	return nil
}
