package engine

import (
	"sync"
	"time"

	"github.com/exerrika/muve/internal/timing"
)

// Ramp drives the two-phase linear crossfade that masks a track swap. Each
// phase covers a fixed step count at a fixed interval; every step is an
// independently scheduled callback, never a blocking wait. Volume at step
// k of a fade from v0 to v1 is the exact linear interpolation, so a fade
// lands precisely on its endpoint and never leaves [min(v0,v1), max(v0,v1)].
//
// Like the debouncer, the ramp shares its owner's mutex: FadeOut, FadeIn
// and Cancel must be called with it held, and step callbacks acquire it.
type Ramp struct {
	mu       sync.Locker
	sched    timing.Scheduler
	out      AudioOutput
	steps    int
	interval time.Duration

	active bool
	gen    int
}

// NewRamp creates a ramp controller over the given audio output.
func NewRamp(mu sync.Locker, sched timing.Scheduler, out AudioOutput, steps int, interval time.Duration) *Ramp {
	return &Ramp{
		mu:       mu,
		sched:    sched,
		out:      out,
		steps:    steps,
		interval: interval,
	}
}

// Active reports whether a fade phase is in flight.
func (r *Ramp) Active() bool {
	return r.active
}

// FadeOut ramps from the captured volume down to silence, then calls done
// with the shared mutex held. Cancelling invalidates the remaining steps
// and done never runs.
func (r *Ramp) FadeOut(from float64, done func()) {
	r.run(from, 0, done)
}

// FadeIn ramps from silence up to the target volume, then calls done with
// the shared mutex held.
func (r *Ramp) FadeIn(target float64, done func()) {
	r.run(0, target, done)
}

// Cancel invalidates every remaining step of the current fade without
// running its completion callback. Volume stays wherever the last
// completed step left it.
func (r *Ramp) Cancel() {
	r.gen++
	r.active = false
}

func (r *Ramp) run(from, to float64, done func()) {
	// Starting a fade supersedes any phase still in flight.
	r.Cancel()
	r.active = true
	gen := r.gen
	r.step(gen, from, to, 1, done)
}

func (r *Ramp) step(gen int, from, to float64, k int, done func()) {
	r.sched.Schedule(r.interval, func() {
		r.mu.Lock()
		defer r.mu.Unlock()

		if r.gen != gen {
			return
		}
		v := from + (to-from)*float64(k)/float64(r.steps)
		if v < 0 {
			v = 0
		} else if v > 1 {
			v = 1
		}
		r.out.SetVolume(v)
		if k == r.steps {
			r.active = false
			r.gen++
			done()
			return
		}
		r.step(gen, from, to, k+1, done)
	})
}
