package sched

import (
	"sync"
	"testing"
	"time"
)

func newTestScheduler() (*Scheduler, *ManualClock) {
	clock := NewManualClock(time.Unix(1000, 0))
	return New(clock), clock
}

func TestAfterFiresOnceWhenDue(t *testing.T) {
	s, clock := newTestScheduler()
	calls := 0
	h := s.After(2*time.Second, func() { calls++ })

	clock.Add(1999 * time.Millisecond)
	if s.Advance(); calls != 0 {
		t.Fatalf("fired early")
	}
	if !h.Pending() {
		t.Fatal("handle should be pending")
	}
	clock.Add(time.Millisecond)
	s.Advance()
	s.Advance()
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
	if h.Pending() || h.Cancel() {
		t.Fatal("fired handle must not be pending or cancelable")
	}
}

func TestCancelPreventsFire(t *testing.T) {
	s, clock := newTestScheduler()
	fired := false
	h := s.After(time.Second, func() { fired = true })
	if !h.Cancel() {
		t.Fatal("first Cancel should report true")
	}
	if h.Cancel() {
		t.Fatal("second Cancel should be a no-op")
	}
	clock.Add(time.Minute)
	s.Advance()
	if fired {
		t.Fatal("canceled task fired")
	}
	if s.Pending() != 0 {
		t.Fatalf("Pending = %d", s.Pending())
	}
	var nilHandle *Handle
	if nilHandle.Cancel() || nilHandle.Pending() {
		t.Fatal("nil handle must be inert")
	}
}

func TestCancelFromEarlierCallbackInSameAdvance(t *testing.T) {
	s, clock := newTestScheduler()
	var second *Handle
	fired := false
	s.After(time.Second, func() { second.Cancel() })
	second = s.After(time.Second, func() { fired = true })
	clock.Add(time.Second)
	s.Advance()
	if fired {
		t.Fatal("task canceled by an earlier callback still fired")
	}
}

func TestOrderingPostedThenDue(t *testing.T) {
	s, clock := newTestScheduler()
	var order []string
	s.After(2*time.Second, func() { order = append(order, "late") })
	s.After(time.Second, func() { order = append(order, "early") })
	s.Post(func() { order = append(order, "posted") })
	clock.Add(3 * time.Second)
	if n := s.Advance(); n != 3 {
		t.Fatalf("Advance ran %d, want 3", n)
	}
	want := []string{"posted", "early", "late"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestTaskScheduledDuringAdvanceWaits(t *testing.T) {
	s, _ := newTestScheduler()
	inner := false
	s.Post(func() {
		s.After(0, func() { inner = true })
	})
	s.Advance()
	if inner {
		t.Fatal("task scheduled inside Advance ran in the same pass")
	}
	s.Advance()
	if !inner {
		t.Fatal("task did not run on the following Advance")
	}
}

func TestPostFromOtherGoroutines(t *testing.T) {
	s, _ := newTestScheduler()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Post(func() {})
		}()
	}
	wg.Wait()
	if n := s.Advance(); n != 16 {
		t.Fatalf("Advance ran %d, want 16", n)
	}
}
