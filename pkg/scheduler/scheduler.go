// Package scheduler runs ingestion on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"votetopics/pkg/logging"
	"votetopics/pkg/pipeline"
)

// Runner executes one ingestion run.
type Runner interface {
	Run(ctx context.Context) (pipeline.Result, error)
}

// Scheduler triggers Runner on a cron expression. A tick that fires while a run
// is still in progress is skipped.
type Scheduler struct {
	cron    *cron.Cron
	runner  Runner
	timeout time.Duration
	log     zerolog.Logger

	mu      sync.Mutex
	running bool
	ctx     context.Context
	cancel  context.CancelFunc
}

// New creates a scheduler. expr uses the standard five-field cron syntax
// or descriptors such as "@every 30m". timeout bounds each run; zero means none.
func New(expr string, runner Runner, timeout time.Duration, logger zerolog.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:    cron.New(),
		runner:  runner,
		timeout: timeout,
		log:     logging.Component(logger, "scheduler"),
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())
	if _, err := s.cron.AddFunc(expr, s.tick); err != nil {
		s.cancel()
		return nil, fmt.Errorf("invalid schedule %q: %w", expr, err)
	}
	return s, nil
}

// Start starts the scheduler in its own goroutine.
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Time("next", s.Next()).Msg("scheduler started")
}

// Next returns the next scheduled run, zero before Start.
func (s *Scheduler) Next() time.Time {
	entries := s.cron.Entries()
	if len(entries) == 0 {
		return time.Time{}
	}
	return entries[0].Next
}

// Stop cancels an in-flight run and waits for it to return.
func (s *Scheduler) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
	s.log.Info().Msg("scheduler stopped")
}

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		s.log.Warn().Msg("previous run still in progress, skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx := s.ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	res, err := s.runner.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("scheduled run failed")
		return
	}
	s.log.Info().Int("processed", res.Processed).Msg("scheduled run finished")
}
