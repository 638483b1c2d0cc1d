package services

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
	"github.com/custodia-labs/prsync/internal/core/ports/driving"
	"github.com/custodia-labs/prsync/internal/logger"
)

// Ensure Pipeline implements the interface.
var _ driving.PipelineRunner = (*Pipeline)(nil)

// Pipeline runs the clean phase strictly before the load phase and records
// the outcome. At most one run is active at a time.
type Pipeline struct {
	orchestrator driving.SyncOrchestrator
	runs         driven.RunStore
	newID        func() string
	now          func() time.Time

	mu      sync.Mutex
	running bool
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithIDGenerator replaces the run ID generator.
func WithIDGenerator(newID func() string) PipelineOption {
	return func(p *Pipeline) { p.newID = newID }
}

// WithPipelineClock replaces the clock used for run start and end times.
func WithPipelineClock(now func() time.Time) PipelineOption {
	return func(p *Pipeline) { p.now = now }
}

// NewPipeline creates a pipeline. runs may be nil, in which case runs are
// not recorded.
func NewPipeline(orchestrator driving.SyncOrchestrator, runs driven.RunStore, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		orchestrator: orchestrator,
		runs:         runs,
		newID:        uuid.NewString,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Running reports whether a run is active.
func (p *Pipeline) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

// Run validates params, then cleans and loads. The load phase is skipped
// when cleaning fails. The returned result is populated even on failure.
func (p *Pipeline) Run(ctx context.Context, params domain.RunParams) (*domain.RunResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil, domain.ErrRunInProgress
	}
	p.running = true
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		p.running = false
		p.mu.Unlock()
	}()

	rec := domain.RunRecord{
		ID:            p.newID(),
		LoadType:      params.LoadType,
		Repos:         append([]string(nil), params.Repos...),
		ReferenceTime: params.ReferenceTime,
		StartedAt:     p.now(),
	}
	if params.LoadType == domain.LoadIncremental {
		rec.Period = params.EffectivePeriod()
	}

	log := logger.Logger().With("run_id", rec.ID)
	log.Info("run started",
		"load_type", rec.LoadType, "repos", rec.Repos, "reference_time", rec.ReferenceTime)
	p.save(ctx, &rec)

	result := &domain.RunResult{
		Report: domain.RunReport{LoadType: params.LoadType, ReferenceTime: params.ReferenceTime},
	}

	cleaned, err := p.orchestrator.Clean(ctx, params)
	result.Report.Merge(cleaned)
	if err == nil {
		var loaded domain.RunReport
		loaded, err = p.orchestrator.Load(ctx, params)
		result.Report.Merge(loaded)
	}

	totals := result.Report.Totals()
	rec.EndedAt = p.now()
	rec.Purged = totals.Purged
	rec.PullRequests = totals.PullRequests
	rec.Files = totals.Files
	rec.Success = err == nil
	if err != nil {
		rec.Error = err.Error()
		log.Error("run failed", "error", err, "duration", rec.Duration())
	} else {
		log.Info("run finished",
			"purged", rec.Purged, "pull_requests", rec.PullRequests,
			"files", rec.Files, "duration", rec.Duration())
	}
	p.save(ctx, &rec)

	result.Record = rec
	return result, err
}

// save records the run. Failing to record is logged, not fatal.
func (p *Pipeline) save(ctx context.Context, rec *domain.RunRecord) {
	if p.runs == nil {
		return
	}
	// Record even when the run was cancelled.
	if err := p.runs.SaveRun(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("Failed to record run %s: %v", rec.ID, err)
	}
}
