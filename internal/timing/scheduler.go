// Package timing abstracts timer scheduling so time-sensitive components
// (stability debouncing, volume ramps) can run against wall-clock timers in
// production and a deterministic manual scheduler in tests.
package timing

import "time"

// Handle identifies a scheduled callback and allows cancelling it before it
// fires. Cancelling an already-fired or already-cancelled handle is a no-op.
type Handle interface {
	Cancel()
}

// Scheduler schedules one-shot callbacks. All engine delays go through a
// Scheduler; nothing in the engine blocks on a sleep.
type Scheduler interface {
	// Now returns the scheduler's current time.
	Now() time.Time

	// Schedule runs fn once after delay. The callback runs on an
	// unspecified goroutine; callers are responsible for their own
	// locking.
	Schedule(delay time.Duration, fn func()) Handle
}

// Wall is the production Scheduler backed by the runtime timer wheel.
type Wall struct{}

// NewWall returns a wall-clock scheduler.
func NewWall() *Wall {
	return &Wall{}
}

// Now implements Scheduler.
func (*Wall) Now() time.Time {
	return time.Now()
}

// Schedule implements Scheduler.
func (*Wall) Schedule(delay time.Duration, fn func()) Handle {
	return wallHandle{timer: time.AfterFunc(delay, fn)}
}

type wallHandle struct {
	timer *time.Timer
}

func (h wallHandle) Cancel() {
	h.timer.Stop()
}
