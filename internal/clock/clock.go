package clock

import "time"

// Clock supplies timestamps for the recording subsystem. time.Time values
// returned by the system clock carry a monotonic reading, so differences
// between them are immune to wall-clock adjustments.
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// System is the real clock backed by time.Now.
type System struct{}

func (System) Now() time.Time                  { return time.Now() }
func (System) Since(t time.Time) time.Duration { return time.Since(t) }

// New returns the system clock.
func New() Clock { return System{} }
