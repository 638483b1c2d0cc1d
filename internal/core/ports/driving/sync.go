package driving

import (
	"context"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

// SyncOrchestrator runs the two phases of a sync over a list of repositories.
type SyncOrchestrator interface {
	// Clean purges the rows the following load will rewrite.
	Clean(ctx context.Context, params domain.RunParams) (domain.RunReport, error)

	// Load fetches closed pull requests and their files and upserts them.
	Load(ctx context.Context, params domain.RunParams) (domain.RunReport, error)
}

// PipelineRunner runs clean then load as one recorded run.
type PipelineRunner interface {
	// Run validates params, cleans, loads and records the run.
	// The result is returned alongside a failure so partial work can be reported.
	Run(ctx context.Context, params domain.RunParams) (*domain.RunResult, error)

	// Running reports whether a run is currently active.
	Running() bool
}
