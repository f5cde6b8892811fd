// Package sched runs delayed and handed-off work on the game goroutine.
//
// Timers are due at a clock instant and only fire from Advance, which the frame loop
// calls once per frame, so every callback runs serialized with scene and registry
// mutations. Post is the one entry point that is safe from other goroutines.
package sched

import (
	"sort"
	"sync"
	"time"
)

// Clock reports the current time.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// SystemClock is the wall clock.
var SystemClock Clock = systemClock{}

// Handle is a scheduled task. Cancel prevents it from firing.
type Handle struct {
	s        *Scheduler
	due      time.Time
	seq      uint64
	fn       func()
	canceled bool
	fired    bool
}

// Scheduler owns pending timed tasks and posted callbacks.
type Scheduler struct {
	clock Clock

	mu     sync.Mutex
	seq    uint64
	timed  []*Handle
	posted []func()
}

// New returns a scheduler reading time from clock (SystemClock when nil).
func New(clock Clock) *Scheduler {
	if clock == nil {
		clock = SystemClock
	}
	return &Scheduler{clock: clock}
}

// Now returns the scheduler clock's time.
func (s *Scheduler) Now() time.Time {
	return s.clock.Now()
}

// After schedules fn to run on the first Advance at or after now+d.
func (s *Scheduler) After(d time.Duration, fn func()) *Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	h := &Handle{s: s, due: s.clock.Now().Add(d), seq: s.seq, fn: fn}
	s.timed = append(s.timed, h)
	return h
}

// Post queues fn for the next Advance. Safe to call from any goroutine.
func (s *Scheduler) Post(fn func()) {
	s.mu.Lock()
	s.posted = append(s.posted, fn)
	s.mu.Unlock()
}

// Advance runs posted callbacks in post order, then every due timer in due order
// (ties by scheduling order). Callbacks may schedule or cancel other tasks; tasks
// scheduled during Advance wait for the next call. Returns the number of callbacks run.
func (s *Scheduler) Advance() int {
	now := s.clock.Now()

	s.mu.Lock()
	posted := s.posted
	s.posted = nil
	var due []*Handle
	keep := s.timed[:0]
	for _, h := range s.timed {
		switch {
		case h.canceled:
		case !h.due.After(now):
			due = append(due, h)
		default:
			keep = append(keep, h)
		}
	}
	for i := len(keep); i < len(s.timed); i++ {
		s.timed[i] = nil
	}
	s.timed = keep
	s.mu.Unlock()

	sort.SliceStable(due, func(i, j int) bool {
		if due[i].due.Equal(due[j].due) {
			return due[i].seq < due[j].seq
		}
		return due[i].due.Before(due[j].due)
	})

	ran := 0
	for _, fn := range posted {
		fn()
		ran++
	}
	for _, h := range due {
		s.mu.Lock()
		if h.canceled {
			s.mu.Unlock()
			continue
		}
		h.fired = true
		s.mu.Unlock()
		h.fn()
		ran++
	}
	return ran
}

// Pending returns the number of timers that have neither fired nor been canceled.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, h := range s.timed {
		if !h.canceled {
			n++
		}
	}
	return n
}

// Cancel stops the task. It reports whether this call prevented the task from firing;
// canceling a fired or already canceled task is a no-op. Nil handles are allowed.
func (h *Handle) Cancel() bool {
	if h == nil {
		return false
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	if h.fired || h.canceled {
		return false
	}
	h.canceled = true
	return true
}

// Pending reports whether the task is still waiting to fire.
func (h *Handle) Pending() bool {
	if h == nil {
		return false
	}
	h.s.mu.Lock()
	defer h.s.mu.Unlock()
	return !h.fired && !h.canceled
}

// ManualClock is a Clock moved by hand, for deterministic frame tests.
type ManualClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewManualClock starts at start.
func NewManualClock(start time.Time) *ManualClock {
	return &ManualClock{now: start}
}

func (c *ManualClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Add moves the clock forward by d.
func (c *ManualClock) Add(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}
