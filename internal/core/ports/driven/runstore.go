package driven

import (
	"context"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

// DefaultRunListLimit applies when ListRuns is given a non-positive limit.
const DefaultRunListLimit = 20

// RunStore persists pipeline run history.
type RunStore interface {
	// SaveRun persists a run record. Creates or updates based on ID.
	SaveRun(ctx context.Context, run *domain.RunRecord) error

	// GetRun retrieves a run by ID.
	// Returns domain.ErrNotFound if the run does not exist.
	GetRun(ctx context.Context, id string) (*domain.RunRecord, error)

	// ListRuns returns up to limit recent runs ordered by start time descending.
	ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error)
}
