// Package timing provides an injectable one-shot timer so debounce, toast
// expiry and delayed reloads can be driven deterministically in tests.
package timing

import "time"

// Timer is a pending one-shot callback.
type Timer interface {
	// Stop prevents the callback from firing. It reports whether the call
	// stopped the timer, false if it already fired or was stopped.
	Stop() bool
}

// AfterFunc schedules f to run in its own goroutine after d.
type AfterFunc func(d time.Duration, f func()) Timer

// Real schedules callbacks with time.AfterFunc.
func Real(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

// Verify *time.Timer satisfies Timer.
var _ Timer = (*time.Timer)(nil)
