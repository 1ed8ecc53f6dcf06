package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// The recency window and report timestamps both read from it.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the configured clock.
func Now() time.Time {
	return clock.Now()
}

// CurrentYear returns the calendar year of the configured clock.
func CurrentYear() int {
	return clock.Now().Year()
}
