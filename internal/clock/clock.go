package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = func() time.Time { return time.Now().UTC() }

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// Freeze pins Now to at and returns a function restoring the previous clock.
func Freeze(at time.Time) (restore func()) {
	prev := NowFunc
	NowFunc = func() time.Time { return at }
	return func() { NowFunc = prev }
}

// Ticking returns a clock starting at start and advancing by step on each
// call, useful when ordering by timestamp matters.
func Ticking(start time.Time, step time.Duration) func() time.Time {
	current := start.Add(-step)
	return func() time.Time {
		current = current.Add(step)
		return current
	}
}
