// Package tracker times a game from the first frame to the win and records the result.
package tracker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier shows the end-of-game screen.
type Notifier interface {
	ShowEndGame(r Run)
}

// saveTimeout bounds one SaveTime write.
const saveTimeout = 5 * time.Second

// Tracker is a start/stop stopwatch. Finishing persists the run in the background.
type Tracker struct {
	now   func() time.Time
	store Store
	log   *zap.Logger

	mu       sync.Mutex
	start    time.Time
	end      time.Time
	running  bool
	finished bool
	wg       sync.WaitGroup
}

// New returns a stopped tracker. store may be nil (runs are then not persisted).
func New(now func() time.Time, store Store, log *zap.Logger) *Tracker {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Tracker{now: now, store: store, log: log.Named("tracker")}
}

// Start begins timing. It has no effect once running or finished.
func (t *Tracker) Start() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running || t.finished {
		return
	}
	t.start = t.now()
	t.running = true
}

// Stop freezes the elapsed time and returns it. Later calls return the same value.
func (t *Tracker) Stop() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.running {
		t.end = t.now()
		t.running = false
		t.finished = true
	}
	return t.elapsed()
}

// Elapsed returns the time since Start, frozen after Stop.
func (t *Tracker) Elapsed() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.elapsed()
}

func (t *Tracker) elapsed() time.Duration {
	switch {
	case t.running:
		return t.now().Sub(t.start)
	case t.finished:
		return t.end.Sub(t.start)
	default:
		return 0
	}
}

// Finished reports whether Stop has ended a running timer.
func (t *Tracker) Finished() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.finished
}

// SaveTime stops the timer and persists the run without blocking the caller.
func (t *Tracker) SaveTime(points int) Run {
	r := Run{ID: uuid.New(), Elapsed: t.Stop(), Points: points, FinishedAt: t.now()}
	t.log.Info("run finished", zap.Duration("elapsed", r.Elapsed), zap.Int("points", points))
	if t.store == nil {
		return r
	}
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), saveTimeout)
		defer cancel()
		if err := t.store.SaveTime(ctx, r); err != nil {
			t.log.Error("cannot save time", zap.Error(err))
		}
	}()
	return r
}

// Wait blocks until pending saves are done.
func (t *Tracker) Wait() { t.wg.Wait() }

// FormatElapsed renders a run time as m:ss.cc.
func FormatElapsed(d time.Duration) string {
	cs := d.Milliseconds() / 10
	return fmt.Sprintf("%d:%02d.%02d", cs/6000, (cs/100)%60, cs%100)
}
