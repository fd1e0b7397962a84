package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/volcano-alert-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// CycleRunner runs one update-check cycle.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleResult, error)
}

// Scheduler triggers a cycle on a fixed interval. At most one scheduled cycle
// runs at a time; a tick that fires while one is running is dropped.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	clock    clockwork.Clock
	logger   *slog.Logger
	metrics  *observability.Metrics

	running atomic.Bool
	started atomic.Bool
	wg      sync.WaitGroup
}

// NewScheduler creates a Scheduler. A nil clock uses real time.
func NewScheduler(runner CycleRunner, interval time.Duration, clock clockwork.Clock, logger *slog.Logger, metrics *observability.Metrics) *Scheduler {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval < time.Minute {
		interval = time.Minute
	}
	return &Scheduler{
		runner:   runner,
		interval: interval,
		clock:    clock,
		logger:   logger.With("component", "scheduler"),
		metrics:  metrics,
	}
}

// CheckReadiness returns nil once the scheduler loop has started.
func (s *Scheduler) CheckReadiness(_ context.Context) error {
	if !s.started.Load() {
		return errors.New("scheduler has not started yet")
	}
	return nil
}

// Run ticks until ctx is cancelled, then waits for an in-flight cycle to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.started.Store(true)
	s.metrics.SchedulerRunning.Set(1)
	defer s.metrics.SchedulerRunning.Set(0)
	s.logger.Info("scheduler started", "interval", s.interval)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopping", "reason", ctx.Err())
			s.wg.Wait()
			return nil
		case <-ticker.Chan():
			s.trigger(ctx)
		}
	}
}

// trigger starts a cycle in the background unless one is already running.
func (s *Scheduler) trigger(ctx context.Context) {
	if !s.running.CompareAndSwap(false, true) {
		s.metrics.CyclesCoalesced.Inc()
		s.logger.Warn("previous cycle still running, dropping tick")
		return
	}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Store(false)
		// A started cycle runs to completion even during shutdown.
		_, _ = s.runner.RunCycle(context.WithoutCancel(ctx))
	}()
}

// RunOnce runs a cycle synchronously, outside the overlap guard.
func (s *Scheduler) RunOnce(ctx context.Context) (CycleResult, error) {
	return s.runner.RunCycle(ctx)
}
