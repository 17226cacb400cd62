package monitor

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"procwatch/internal/logging"
)

// CycleFunc runs one monitoring cycle at the given wall-clock time.
type CycleFunc func(ctx context.Context, now time.Time) error

// Scheduler owns the background monitoring loop. It runs one cycle
// immediately on start, then repeats on a fixed interval until stopped.
type Scheduler struct {
	interval time.Duration
	cycle    CycleFunc
	logger   *slog.Logger

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup

	lastMu    sync.Mutex
	lastCycle time.Time
	lastErr   error
}

// NewScheduler constructs a scheduler invoking cycle every interval.
func NewScheduler(interval time.Duration, cycle CycleFunc, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		interval: interval,
		cycle:    cycle,
		logger:   logging.NewComponentLogger(logger, "scheduler"),
	}
}

// Start launches the background loop. Starting an already running
// scheduler is a no-op.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.wg.Add(1)
	s.mu.Unlock()

	s.logger.Info("scheduler started", logging.Duration("interval", s.interval))
	go s.run(runCtx)
}

// Stop terminates the background loop and waits for it to exit. The
// inter-cycle sleep is interrupted immediately.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	cancel := s.cancel
	s.running = false
	s.cancel = nil
	s.mu.Unlock()

	cancel()
	s.wg.Wait()
	s.logger.Info("scheduler stopped")
}

// Running reports whether the background loop is active.
func (s *Scheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// LastCycle returns when the most recent cycle ran and its result.
func (s *Scheduler) LastCycle() (time.Time, error) {
	s.lastMu.Lock()
	defer s.lastMu.Unlock()
	return s.lastCycle, s.lastErr
}

func (s *Scheduler) run(ctx context.Context) {
	defer s.wg.Done()

	for {
		s.runOnce(ctx)

		select {
		case <-ctx.Done():
			return
		case <-time.After(s.interval):
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	now := time.Now()
	err := s.cycle(ctx, now)

	s.lastMu.Lock()
	s.lastCycle = now
	s.lastErr = err
	s.lastMu.Unlock()

	if err != nil && ctx.Err() == nil {
		// Store-level faults are fatal to this tick only; the next tick
		// retries.
		s.logger.Error("monitoring cycle failed", logging.Error(err))
	}
}
