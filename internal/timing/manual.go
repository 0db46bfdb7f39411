package timing

import (
	"sort"
	"sync"
	"time"
)

// Manual is a deterministic Scheduler driven by explicit Advance calls.
// Callbacks fire synchronously inside Advance, in due-time order, with ties
// broken by scheduling order. It exists so timing-sensitive tests never
// touch wall-clock timers.
type Manual struct {
	mu   sync.Mutex
	now  time.Time
	next int
	due  []*manualEvent
}

type manualEvent struct {
	at        time.Time
	seq       int
	fn        func()
	cancelled bool
	owner     *Manual
}

// NewManual returns a manual scheduler starting at the given time.
func NewManual(start time.Time) *Manual {
	return &Manual{now: start}
}

// Now implements Scheduler.
func (m *Manual) Now() time.Time {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Schedule implements Scheduler.
func (m *Manual) Schedule(delay time.Duration, fn func()) Handle {
	m.mu.Lock()
	defer m.mu.Unlock()
	ev := &manualEvent{
		at:    m.now.Add(delay),
		seq:   m.next,
		fn:    fn,
		owner: m,
	}
	m.next++
	m.due = append(m.due, ev)
	return ev
}

// Cancel implements Handle.
func (e *manualEvent) Cancel() {
	e.owner.mu.Lock()
	defer e.owner.mu.Unlock()
	e.cancelled = true
}

// Advance moves the virtual clock forward by d, firing every due callback
// in order. A callback may schedule further work; anything falling inside
// the advanced window fires in the same call.
func (m *Manual) Advance(d time.Duration) {
	m.mu.Lock()
	target := m.now.Add(d)
	for {
		ev := m.popDueLocked(target)
		if ev == nil {
			break
		}
		if ev.at.After(m.now) {
			m.now = ev.at
		}
		m.mu.Unlock()
		ev.fn()
		m.mu.Lock()
	}
	m.now = target
	m.mu.Unlock()
}

// Pending reports how many callbacks are scheduled and not yet cancelled.
func (m *Manual) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, ev := range m.due {
		if !ev.cancelled {
			n++
		}
	}
	return n
}

// popDueLocked removes and returns the earliest uncancelled event at or
// before target, or nil if none is due.
func (m *Manual) popDueLocked(target time.Time) *manualEvent {
	live := m.due[:0]
	for _, ev := range m.due {
		if !ev.cancelled {
			live = append(live, ev)
		}
	}
	m.due = live
	if len(m.due) == 0 {
		return nil
	}
	sort.SliceStable(m.due, func(i, j int) bool {
		if m.due[i].at.Equal(m.due[j].at) {
			return m.due[i].seq < m.due[j].seq
		}
		return m.due[i].at.Before(m.due[j].at)
	})
	if m.due[0].at.After(target) {
		return nil
	}
	ev := m.due[0]
	m.due = m.due[1:]
	return ev
}
