// internal/app/system/tasks/scheduler.go
package tasks

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a named unit of background work run on a cron schedule.
type Job struct {
	Name string
	// Spec is a standard five-field cron expression or a descriptor such as
	// "@hourly" or "@every 10m".
	Spec string
	Run  func(ctx context.Context) error
}

// Scheduler runs Jobs with robfig/cron. A run that is still going when its
// next tick fires is skipped. Panics are recovered and logged.
type Scheduler struct {
	cron    *cron.Cron
	log     *zap.Logger
	timeout time.Duration

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	started bool
}

// NewScheduler creates a scheduler. Each run gets a context with timeout.
func NewScheduler(logger *zap.Logger, timeout time.Duration) *Scheduler {
	cl := cronLogger{s: logger.Sugar()}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron: cron.New(cron.WithChain(
			cron.Recover(cl),
			cron.SkipIfStillRunning(cl),
		)),
		log:     logger,
		timeout: timeout,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// ValidateSpec reports whether spec parses as a schedule Add would accept.
func ValidateSpec(spec string) error {
	_, err := cron.ParseStandard(spec)
	return err
}

// Add registers a job. It fails on an empty name, a nil Run or a bad spec.
func (s *Scheduler) Add(j Job) error {
	if j.Name == "" || j.Run == nil {
		return errors.New("tasks: job needs a name and a run func")
	}
	_, err := s.cron.AddFunc(j.Spec, func() { s.runOnce(j) })
	return err
}

func (s *Scheduler) runOnce(j Job) {
	ctx, cancel := context.WithTimeout(s.ctx, s.timeout)
	defer cancel()

	start := time.Now()
	if err := j.Run(ctx); err != nil {
		s.log.Error("scheduled job failed",
			zap.String("job", j.Name),
			zap.Duration("took", time.Since(start)),
			zap.Error(err))
		return
	}
	s.log.Debug("scheduled job finished",
		zap.String("job", j.Name),
		zap.Duration("took", time.Since(start)))
}

// Start begins running registered jobs in the background.
func (s *Scheduler) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.started = true
	s.cron.Start()
	s.log.Info("scheduler started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop cancels running jobs and waits for them to return, or for ctx to
// expire, whichever comes first.
func (s *Scheduler) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.started {
		s.cancel()
		return
	}
	s.started = false

	done := s.cron.Stop()
	s.cancel()
	select {
	case <-done.Done():
		s.log.Info("scheduler stopped")
	case <-ctx.Done():
		s.log.Warn("scheduler stop timed out", zap.Error(ctx.Err()))
	}
}

// Len reports how many jobs are registered.
func (s *Scheduler) Len() int { return len(s.cron.Entries()) }

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	s *zap.SugaredLogger
}

func (l cronLogger) Info(msg string, keysAndValues ...interface{}) {
	l.s.Debugw(msg, keysAndValues...)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	l.s.Errorw(msg, append(keysAndValues, "error", err)...)
}
