// Package scheduler wires up the cron job that periodically runs the
// harvest pipeline while the service is serving.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// HarvestFunc runs one full harvest cycle.
type HarvestFunc func(ctx context.Context) error

// Scheduler wraps robfig/cron around a harvest function. Cycles never
// overlap; a tick that lands while the previous cycle is still running is
// skipped.
type Scheduler struct {
	cron    *cron.Cron
	run     HarvestFunc
	spec    string
	logger  *zap.Logger
	mu      sync.Mutex
	running bool
}

// New creates a Scheduler that fires once per interval.
func New(run HarvestFunc, interval time.Duration, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		cron:   cron.New(),
		run:    run,
		spec:   fmt.Sprintf("@every %s", interval),
		logger: logger,
	}
}

// Start registers the job and starts the scheduler. One cycle runs
// immediately so a fresh deployment has data before the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.runCycle(ctx)
	})
	if err != nil {
		return fmt.Errorf("register harvest job: %w", err)
	}

	s.cron.Start()
	s.logger.Info("scheduler started", zap.String("spec", s.spec))

	go s.runCycle(ctx)
	return nil
}

// Stop halts future ticks and waits for an in-flight cycle to return.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runCycle(ctx context.Context) {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.logger.Warn("harvest cycle still running, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	start := time.Now()
	s.logger.Info("harvest cycle started")
	if err := s.run(ctx); err != nil {
		s.logger.Error("harvest cycle failed", zap.Error(err))
		return
	}
	s.logger.Info("harvest cycle complete", zap.Duration("elapsed", time.Since(start)))
}
