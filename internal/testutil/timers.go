package testutil

import (
	"sync"
	"time"

	"github.com/npratt/deskboard/internal/timing"
)

// FakeTimers is a manual timing.AfterFunc. Timers never fire on their own;
// tests fire them explicitly, which runs the callback synchronously.
type FakeTimers struct {
	mu     sync.Mutex
	timers []*FakeTimer
}

// FakeTimer is one scheduled callback.
type FakeTimer struct {
	owner   *FakeTimers
	Delay   time.Duration
	fn      func()
	stopped bool
	fired   bool
}

// NewFakeTimers creates an empty FakeTimers.
func NewFakeTimers() *FakeTimers {
	return &FakeTimers{}
}

// AfterFunc implements timing.AfterFunc.
func (f *FakeTimers) AfterFunc(d time.Duration, fn func()) timing.Timer {
	f.mu.Lock()
	defer f.mu.Unlock()

	t := &FakeTimer{owner: f, Delay: d, fn: fn}
	f.timers = append(f.timers, t)
	return t
}

// Stop implements timing.Timer.
func (t *FakeTimer) Stop() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()

	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// Fire runs the callback if the timer is still pending. It reports whether
// the callback ran.
func (t *FakeTimer) Fire() bool {
	t.owner.mu.Lock()
	if t.stopped || t.fired {
		t.owner.mu.Unlock()
		return false
	}
	t.fired = true
	fn := t.fn
	t.owner.mu.Unlock()

	fn()
	return true
}

// Stopped reports whether Stop cancelled the timer.
func (t *FakeTimer) Stopped() bool {
	t.owner.mu.Lock()
	defer t.owner.mu.Unlock()
	return t.stopped
}

// All returns every timer scheduled so far, in scheduling order.
func (f *FakeTimers) All() []*FakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeTimer(nil), f.timers...)
}

// Pending returns timers that have neither fired nor been stopped.
func (f *FakeTimers) Pending() []*FakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()

	var pending []*FakeTimer
	for _, t := range f.timers {
		if !t.stopped && !t.fired {
			pending = append(pending, t)
		}
	}
	return pending
}

// Last returns the most recently scheduled timer, or nil.
func (f *FakeTimers) Last() *FakeTimer {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.timers) == 0 {
		return nil
	}
	return f.timers[len(f.timers)-1]
}

// FireAll fires every pending timer and returns how many ran. Timers
// scheduled by the callbacks themselves are not fired.
func (f *FakeTimers) FireAll() int {
	n := 0
	for _, t := range f.Pending() {
		if t.Fire() {
			n++
		}
	}
	return n
}
