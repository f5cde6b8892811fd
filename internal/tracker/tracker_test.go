package tracker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
)

type fakeNow struct{ t time.Time }

func (f *fakeNow) now() time.Time { return f.t }

func TestStopwatch(t *testing.T) {
	clock := &fakeNow{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	tr := New(clock.now, nil, nil)
	if tr.Elapsed() != 0 || tr.Finished() {
		t.Fatal("new tracker should be idle")
	}
	tr.Start()
	clock.t = clock.t.Add(90 * time.Second)
	if got := tr.Elapsed(); got != 90*time.Second {
		t.Fatalf("Elapsed = %v", got)
	}
	if got := tr.Stop(); got != 90*time.Second {
		t.Fatalf("Stop = %v", got)
	}
	clock.t = clock.t.Add(time.Hour)
	if got := tr.Elapsed(); got != 90*time.Second || !tr.Finished() {
		t.Fatalf("Elapsed after Stop = %v", got)
	}
	tr.Start()
	if tr.Stop() != 90*time.Second {
		t.Fatal("Start after finish must not restart")
	}
}

func TestSQLiteStore(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "db", "times.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, d := range []time.Duration{3 * time.Minute, 95 * time.Second, 2 * time.Minute} {
		r := Run{ID: uuid.New(), Elapsed: d, Points: 14, FinishedAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.SaveTime(ctx, r); err != nil {
			t.Fatalf("SaveTime: %v", err)
		}
	}
	best, err := store.BestTimes(ctx, 2)
	if err != nil {
		t.Fatalf("BestTimes: %v", err)
	}
	if len(best) != 2 || best[0].Elapsed != 95*time.Second || best[1].Elapsed != 2*time.Minute {
		t.Fatalf("BestTimes = %+v", best)
	}
	if !best[0].FinishedAt.Equal(base.Add(time.Hour)) || best[0].Points != 14 {
		t.Fatalf("row mismatch: %+v", best[0])
	}
}

func TestSaveTimePersists(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "times.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer store.Close()

	clock := &fakeNow{t: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}
	tr := New(clock.now, store, nil)
	tr.Start()
	clock.t = clock.t.Add(42 * time.Second)
	r := tr.SaveTime(14)
	tr.Wait()

	if r.Elapsed != 42*time.Second || !tr.Finished() {
		t.Fatalf("run = %+v", r)
	}
	best, err := store.BestTimes(context.Background(), 0)
	if err != nil || len(best) != 1 || best[0].ID != r.ID {
		t.Fatalf("BestTimes = %+v, %v", best, err)
	}
}

func TestFormatElapsed(t *testing.T) {
	cases := []struct {
		d    time.Duration
		want string
	}{
		{0, "0:00.00"},
		{1500 * time.Millisecond, "0:01.50"},
		{2*time.Minute + 3*time.Second + 70*time.Millisecond, "2:03.07"},
	}
	for _, c := range cases {
		if got := FormatElapsed(c.d); got != c.want {
			t.Errorf("FormatElapsed(%v) = %q, want %q", c.d, got, c.want)
		}
	}
}
