package services

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/logger"
)

// Clean purges the rows the following load will rewrite: every pull request
// of a repository for a full run, or those closed inside the window for an
// incremental run. Each purge commits before the next repository is touched.
func (o *SyncOrchestrator) Clean(ctx context.Context, params domain.RunParams) (domain.RunReport, error) {
	report := domain.RunReport{LoadType: params.LoadType, ReferenceTime: params.ReferenceTime}
	if err := params.Validate(); err != nil {
		return report, err
	}

	window := params.Window()
	logger.Section("Clean")
	for _, name := range params.Repos {
		purged, err := o.purge(ctx, name, window)
		if err != nil {
			return report, &RepoError{Repo: name, Phase: domain.PhaseClean, Err: err}
		}
		report.Repo(name).Purged = purged
		logger.Info("Purged %d pull requests of %s", purged, name)
	}
	return report, nil
}

func (o *SyncOrchestrator) purge(ctx context.Context, name string, window domain.Window) (int64, error) {
	if window.Unbounded {
		n, err := o.store.PurgeFull(ctx, name)
		if err != nil {
			return 0, fmt.Errorf("purge: %w", err)
		}
		return n, nil
	}

	logger.Debug("Purging %s from %s", name, window.Cutoff.Format(time.RFC3339))
	n, err := o.store.PurgeWindow(ctx, name, window.Cutoff)
	if err != nil {
		return 0, fmt.Errorf("purge window: %w", err)
	}
	return n, nil
}
