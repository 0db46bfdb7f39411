package engine

import (
	"sync"
	"time"

	"github.com/exerrika/muve/internal/motion"
	"github.com/exerrika/muve/internal/timing"
)

// pendingChange is the single optional in-flight candidate. A new
// candidate replaces it outright; candidates are never merged.
type pendingChange struct {
	candidate motion.Level
	since     time.Time
	timer     timing.Handle
}

// Debouncer is the stability automaton between raw classification and the
// orchestrator. It sits in one of two states: idle, or holding exactly one
// pending candidate with a running stability timer. A candidate is
// confirmed only if the live classification still matches it when the
// timer expires; any earlier change restarts the clock with the new
// candidate.
//
// The debouncer shares its owner's mutex: Observe and Reset must be called
// with it held, and the expiry callback acquires it before touching state.
type Debouncer struct {
	mu     sync.Locker
	sched  timing.Scheduler
	period time.Duration

	// onConfirm runs with the shared mutex held.
	onConfirm func(motion.Level)

	confirmed motion.Level
	live      motion.Level
	pending   *pendingChange
	gen       int
}

// NewDebouncer creates a debouncer confirming changes that persist for the
// full stability period. The baseline confirmed level starts at Calm, the
// resting state.
func NewDebouncer(mu sync.Locker, sched timing.Scheduler, period time.Duration, onConfirm func(motion.Level)) *Debouncer {
	return &Debouncer{
		mu:        mu,
		sched:     sched,
		period:    period,
		onConfirm: onConfirm,
		confirmed: motion.Calm,
		live:      motion.Calm,
	}
}

// Observe feeds one classified level into the automaton.
func (d *Debouncer) Observe(level motion.Level) {
	d.live = level

	if level == d.confirmed {
		// Reverted to the confirmed level before expiry: drop the
		// candidate, nothing to debounce.
		d.clearPending()
		return
	}
	if d.pending != nil && d.pending.candidate == level {
		// Same candidate still holding; the clock keeps running.
		return
	}

	// New candidate: replace whatever was pending and restart the clock.
	d.clearPending()
	d.gen++
	gen := d.gen
	d.pending = &pendingChange{
		candidate: level,
		since:     d.sched.Now(),
		timer:     d.sched.Schedule(d.period, func() { d.expire(gen) }),
	}
}

// expire runs when a stability timer fires. The generation check discards
// timers that lost a replace/reset race with their own cancellation.
func (d *Debouncer) expire(gen int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.pending == nil || d.gen != gen {
		return
	}
	candidate := d.pending.candidate
	d.pending = nil
	if d.live != candidate {
		return
	}
	d.confirmed = candidate
	d.onConfirm(candidate)
}

// Reset silently drops any pending candidate and cancels its timer. Used
// when the mode switches to manual and when the sensor session stops.
func (d *Debouncer) Reset() {
	d.clearPending()
	d.live = d.confirmed
}

// Confirmed returns the last confirmed level.
func (d *Debouncer) Confirmed() motion.Level {
	return d.confirmed
}

// Pending reports the in-flight candidate, if any.
func (d *Debouncer) Pending() (candidate motion.Level, since time.Time, ok bool) {
	if d.pending == nil {
		return 0, time.Time{}, false
	}
	return d.pending.candidate, d.pending.since, true
}

func (d *Debouncer) clearPending() {
	if d.pending == nil {
		return
	}
	d.pending.timer.Cancel()
	d.pending = nil
	d.gen++
}
