package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"
)

// SchedulerStatus is the operational snapshot exposed to the admin surface.
type SchedulerStatus struct {
	Running    bool `json:"running"`    // the interval timer is active
	Processing bool `json:"processing"` // a pass is executing right now
}

// Scheduler runs the Processor on a fixed interval. It is an explicit object
// with injected dependencies - construct one at process startup and keep a
// single active instance; the design assumes no concurrent schedulers.
//
// A guard flag prevents overlapping passes: if the interval fires (or RunOnce
// is called) while a pass is still executing, the trigger is skipped and
// logged rather than queued.
type Scheduler struct {
	processor *Processor
	interval  time.Duration
	log       *slog.Logger

	processing atomic.Bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewScheduler wires a Scheduler around a Processor. The interval comes from
// cfg.PollInterval (default 30s). A nil logger falls back to slog.Default().
func NewScheduler(processor *Processor, cfg Config, log *slog.Logger) *Scheduler {
	cfg = cfg.withDefaults()
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{
		processor: processor,
		interval:  cfg.PollInterval,
		log:       log,
	}
}

// Start launches the polling loop: one immediate pass, then one per interval.
// Returns ErrSchedulerRunning if the loop is already active.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cancel != nil {
		return ErrSchedulerRunning
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.done = make(chan struct{})

	go s.loop(runCtx, s.done)

	s.log.InfoContext(ctx, "notification scheduler started", slog.Duration("interval", s.interval))
	return nil
}

func (s *Scheduler) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	// Immediate first pass so a freshly started service drains any backlog
	// without waiting a full interval.
	s.runGuarded(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runGuarded(ctx)
		}
	}
}

// Stop cancels the interval timer. An in-flight pass is allowed to finish;
// Stop returns once the loop goroutine has exited. Safe to call when not
// running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel := s.cancel
	done := s.done
	s.cancel = nil
	s.done = nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	s.log.InfoContext(context.Background(), "notification scheduler stopped")
}

// RunOnce executes exactly one pass synchronously, regardless of timer state.
// Used for manual and administrative triggering. Returns ErrPassInProgress
// if a pass is already executing.
func (s *Scheduler) RunOnce(ctx context.Context) (PassStats, error) {
	if !s.processing.CompareAndSwap(false, true) {
		return PassStats{}, ErrPassInProgress
	}
	defer s.processing.Store(false)

	return s.processor.RunPass(ctx)
}

// Status reports whether the timer loop is active and whether a pass is
// executing at this instant.
func (s *Scheduler) Status() SchedulerStatus {
	s.mu.Lock()
	running := s.cancel != nil
	s.mu.Unlock()

	return SchedulerStatus{
		Running:    running,
		Processing: s.processing.Load(),
	}
}

// runGuarded runs one pass under the overlap guard; a skipped trigger is
// logged and dropped, not queued.
func (s *Scheduler) runGuarded(ctx context.Context) {
	if !s.processing.CompareAndSwap(false, true) {
		s.log.WarnContext(ctx, "processing pass still running, skipping trigger")
		return
	}
	defer s.processing.Store(false)

	if _, err := s.processor.RunPass(ctx); err != nil {
		s.log.ErrorContext(ctx, "processing pass failed", slog.Any("error", err))
	}
}
