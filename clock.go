package logtree

import "time"

// Stopper cancels a pending callback.
// Stop reports whether the call stopped the callback before it ran.
type Stopper interface {
	Stop() bool
}

// Clock is the time source for entry timestamps and task scheduling.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Stopper
}

// SystemClock is the default [Clock], backed by package time.
var SystemClock Clock = systemClock{}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}

func (systemClock) AfterFunc(d time.Duration, f func()) Stopper {
	return time.AfterFunc(d, f)
}
