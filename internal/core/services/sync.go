package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
	"github.com/custodia-labs/prsync/internal/core/ports/driving"
	"github.com/custodia-labs/prsync/internal/logger"
)

// Ensure SyncOrchestrator implements the interface.
var _ driving.SyncOrchestrator = (*SyncOrchestrator)(nil)

// DefaultFileBatchSize is how many files are written per call to the store.
const DefaultFileBatchSize = 100

// RepoError names the repository and phase a run failed on.
type RepoError struct {
	Repo  string
	Phase domain.Phase
	Err   error
}

func (e *RepoError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Phase, e.Repo, e.Err)
}

func (e *RepoError) Unwrap() error {
	return e.Err
}

// SyncOrchestrator coordinates the clean and load phases of a sync.
// Repositories are processed one at a time, in order, and the first
// failure halts the phase. Work already committed is kept.
type SyncOrchestrator struct {
	source    driven.PullRequestSource
	store     driven.SyncStore
	fileBatch int
}

// OrchestratorOption configures a SyncOrchestrator.
type OrchestratorOption func(*SyncOrchestrator)

// WithFileBatchSize sets how many files are written per store call.
// Non-positive values keep DefaultFileBatchSize.
func WithFileBatchSize(n int) OrchestratorOption {
	return func(o *SyncOrchestrator) {
		if n > 0 {
			o.fileBatch = n
		}
	}
}

// NewSyncOrchestrator creates a new sync orchestrator.
func NewSyncOrchestrator(source driven.PullRequestSource, store driven.SyncStore, opts ...OrchestratorOption) *SyncOrchestrator {
	o := &SyncOrchestrator{
		source:    source,
		store:     store,
		fileBatch: DefaultFileBatchSize,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Load fetches the closed pull requests of every repository and upserts
// them with their files, one committed unit per pull request.
func (o *SyncOrchestrator) Load(ctx context.Context, params domain.RunParams) (domain.RunReport, error) {
	report := domain.RunReport{LoadType: params.LoadType, ReferenceTime: params.ReferenceTime}
	if err := params.Validate(); err != nil {
		return report, err
	}
	if o.source == nil {
		return report, errors.New("load: pull request source not configured")
	}

	window := params.Window()
	logger.Section("Load")
	for _, name := range params.Repos {
		rr := report.Repo(name)
		if err := o.loadRepo(ctx, name, window, rr); err != nil {
			return report, &RepoError{Repo: name, Phase: domain.PhaseLoad, Err: err}
		}
		logger.Info("Loaded %s: %d pull requests, %d files, %d skipped, %d pages (%s)",
			name, rr.PullRequests, rr.Files, rr.Skipped, rr.Pages, rr.Stop)
	}
	return report, nil
}

func (o *SyncOrchestrator) loadRepo(ctx context.Context, name string, window domain.Window, rr *domain.RepoReport) error {
	repo, err := o.source.GetRepository(ctx, name)
	if err != nil {
		return fmt.Errorf("get repository: %w", err)
	}
	if err := o.store.UpsertRepository(ctx, repo); err != nil {
		return fmt.Errorf("upsert repository: %w", err)
	}
	logger.Debug("Resolved %s to repository %d", name, repo.ID)

	it := o.source.ListClosedPullRequests(ctx, repo)
	res, err := walkPullRequests(ctx, it, window.Exhausted, func(pr domain.PullRequest) error {
		if !window.Contains(pr) {
			logger.Debug("Skipping pull request %d: closed %s before window", pr.ID, pr.ClosedAt.Format(time.RFC3339))
			rr.Skipped++
			return nil
		}
		files, err := o.processPullRequest(ctx, repo, pr)
		if err != nil {
			return fmt.Errorf("pull request %d: %w", pr.ID, err)
		}
		rr.PullRequests++
		rr.Files += files
		return nil
	})
	rr.Pages += res.Pages
	rr.Stop = res.Stop
	return err
}

// processPullRequest writes one pull request and its files as a single unit.
// It returns the number of files written.
func (o *SyncOrchestrator) processPullRequest(ctx context.Context, repo domain.Repository, pr domain.PullRequest) (int, error) {
	tx, err := o.store.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if err := tx.UpsertPullRequest(ctx, pr); err != nil {
		return 0, fmt.Errorf("upsert pull request: %w", err)
	}

	written := 0
	if pr.HasFiles() {
		batch := make([]domain.File, 0, o.fileBatch)
		flush := func() error {
			if err := tx.UpsertFilesAndAssociations(ctx, pr.ID, batch); err != nil {
				return fmt.Errorf("upsert files: %w", err)
			}
			written += len(batch)
			batch = batch[:0]
			return nil
		}

		files := o.source.ListPullRequestFiles(ctx, repo, pr)
		for files.Next(ctx) {
			f := files.Value()
			if f.SHA == "" {
				logger.Warn("Skipping file %q of pull request %d: no sha", f.Filename, pr.ID)
				continue
			}
			batch = append(batch, f)
			if len(batch) >= o.fileBatch {
				if err := flush(); err != nil {
					return 0, err
				}
			}
		}
		if err := files.Err(); err != nil {
			return 0, fmt.Errorf("list files: %w", err)
		}
		if err := flush(); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}
