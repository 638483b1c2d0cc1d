package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driving"
	"github.com/custodia-labs/prsync/internal/logger"
)

// Ensure Scheduler implements the interface.
var _ driving.Scheduler = (*Scheduler)(nil)

// ParamsFunc builds the run parameters for a trigger at the given time.
type ParamsFunc func(reference time.Time) domain.RunParams

// Scheduler triggers pipeline runs on a fixed interval. Runs execute on the
// scheduler goroutine, so ticks that arrive during a run are dropped and at
// most one run is active.
type Scheduler struct {
	config   domain.ScheduleConfig
	pipeline driving.PipelineRunner
	params   ParamsFunc

	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	done    chan struct{}
}

// NewScheduler creates a scheduler with configuration.
func NewScheduler(config domain.ScheduleConfig, pipeline driving.PipelineRunner, params ParamsFunc) *Scheduler {
	if config.Interval <= 0 {
		config.Interval = domain.DefaultScheduleConfig().Interval
	}
	return &Scheduler{
		config:   config,
		pipeline: pipeline,
		params:   params,
		now:      time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
	}
}

// Start begins the scheduler loop. This method blocks until Stop is called
// or ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return nil // Already running
	}
	s.running = true
	s.stopCh = make(chan struct{})
	s.done = make(chan struct{})
	stopCh, done := s.stopCh, s.done
	s.mu.Unlock()
	defer close(done)

	logger.Info("Scheduler started: every %s", s.config.Interval)
	if s.config.RunOnStart {
		s.trigger(ctx, s.now())
	}

	ticks, stop := s.newTicker(s.config.Interval)
	defer stop()

	for {
		select {
		case <-ctx.Done():
			s.markStopped()
			return ctx.Err()
		case <-stopCh:
			return nil
		case tick := <-ticks:
			s.trigger(ctx, tick)
		}
	}
}

// Stop gracefully shuts down the scheduler, waiting for an active run.
func (s *Scheduler) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	close(s.stopCh)
	done := s.done
	s.mu.Unlock()

	<-done
	return nil
}

func (s *Scheduler) markStopped() {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
}

// trigger runs the pipeline with the tick as reference time.
func (s *Scheduler) trigger(ctx context.Context, tick time.Time) {
	params := s.params(tick)
	_, err := s.pipeline.Run(ctx, params)
	switch {
	case err == nil:
	case errors.Is(err, domain.ErrRunInProgress):
		logger.Warn("Skipping scheduled run at %s: %v", tick.Format(time.RFC3339), err)
	default:
		logger.Error("Scheduled run at %s failed: %v", tick.Format(time.RFC3339), err)
	}
}
