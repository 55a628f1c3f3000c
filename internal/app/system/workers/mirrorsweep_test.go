package workers

import (
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

type countingSweeper struct {
	calls  atomic.Int32
	maxAge atomic.Int64
}

func (c *countingSweeper) Sweep(maxAge time.Duration) int {
	c.calls.Add(1)
	c.maxAge.Store(int64(maxAge))
	return 1
}

func TestMirrorSweep_RunsUntilStopped(t *testing.T) {
	target := &countingSweeper{}
	w := NewMirrorSweep(target, zap.NewNop(), 10*time.Millisecond, time.Hour)

	w.Start()
	deadline := time.Now().Add(2 * time.Second)
	for target.calls.Load() < 2 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	w.Stop()
	w.Stop()

	if target.calls.Load() < 2 {
		t.Fatalf("expected at least 2 sweeps, got %d", target.calls.Load())
	}
	if got := time.Duration(target.maxAge.Load()); got != time.Hour {
		t.Errorf("maxAge: got %v, want 1h", got)
	}

	after := target.calls.Load()
	time.Sleep(50 * time.Millisecond)
	if target.calls.Load() != after {
		t.Error("sweeps continued after Stop")
	}
}

func TestNewMirrorSweep_NonPositiveDurationsUseDefaults(t *testing.T) {
	w := NewMirrorSweep(&countingSweeper{}, zap.NewNop(), 0, -time.Minute)
	if w.interval != DefaultSweepInterval {
		t.Errorf("interval: got %v, want %v", w.interval, DefaultSweepInterval)
	}
	if w.maxAge != DefaultMirrorMaxAge {
		t.Errorf("maxAge: got %v, want %v", w.maxAge, DefaultMirrorMaxAge)
	}

	// Starting with a zero interval must not panic the worker goroutine.
	w.Start()
	w.Stop()
}
