// internal/app/system/workers/mirrorsweep.go
package workers

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// Sweeper is anything that can drop entries older than a max age.
type Sweeper interface {
	Sweep(maxAge time.Duration) int
}

// MirrorSweep is a background worker that drops list mirrors nobody has
// refreshed for a while, so viewers who never sign out do not pin memory.
type MirrorSweep struct {
	target   Sweeper
	log      *zap.Logger
	interval time.Duration
	maxAge   time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// Fallbacks used when NewMirrorSweep is given a non-positive duration.
const (
	DefaultSweepInterval = 10 * time.Minute
	DefaultMirrorMaxAge  = 2 * time.Hour
)

// NewMirrorSweep creates a new sweep worker.
//
// Parameters:
//   - target: the mirror to sweep
//   - logger: zap logger for logging
//   - interval: how often to sweep (e.g., 5 minutes)
//   - maxAge: how long a list may go without a refresh before it is dropped
//
// Non-positive durations fall back to the defaults above.
func NewMirrorSweep(target Sweeper, logger *zap.Logger, interval, maxAge time.Duration) *MirrorSweep {
	if interval <= 0 {
		logger.Warn("mirror sweep interval not positive, using default",
			zap.Duration("interval", interval), zap.Duration("default", DefaultSweepInterval))
		interval = DefaultSweepInterval
	}
	if maxAge <= 0 {
		logger.Warn("mirror max age not positive, using default",
			zap.Duration("max_age", maxAge), zap.Duration("default", DefaultMirrorMaxAge))
		maxAge = DefaultMirrorMaxAge
	}
	return &MirrorSweep{
		target:   target,
		log:      logger,
		interval: interval,
		maxAge:   maxAge,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background sweep loop.
func (w *MirrorSweep) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("mirror sweep worker started",
		zap.Duration("interval", w.interval),
		zap.Duration("max_age", w.maxAge))
}

// Stop signals the worker to stop and waits for it to finish. Safe to call
// more than once.
func (w *MirrorSweep) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.wg.Wait()
		w.log.Info("mirror sweep worker stopped")
	})
}

func (w *MirrorSweep) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			w.sweep()
		}
	}
}

func (w *MirrorSweep) sweep() {
	if n := w.target.Sweep(w.maxAge); n > 0 {
		w.log.Debug("dropped stale list mirrors", zap.Int("count", n))
	}
}
