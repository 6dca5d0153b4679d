package engine

import "time"

// Clock abstracts time readings so tests drive the countdown
// deterministically. The system clock's time.Time values carry a
// monotonic reading, which keeps tick deltas immune to wall-clock jumps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock returns the real clock.
func SystemClock() Clock { return systemClock{} }
