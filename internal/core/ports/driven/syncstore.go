package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

// SyncStore persists synchronised rows. All writes are insert-or-ignore:
// replaying the same data leaves the store unchanged.
type SyncStore interface {
	// UpsertRepository inserts the repository if absent. Commits by itself.
	UpsertRepository(ctx context.Context, repo domain.Repository) error

	// Begin opens the unit of work for one pull request.
	Begin(ctx context.Context) (SyncTx, error)

	// PurgeFull deletes every pull request of the named repository.
	// Associations cascade; file and repository rows are kept.
	// An unknown repository deletes nothing.
	PurgeFull(ctx context.Context, repoName string) (int64, error)

	// PurgeWindow deletes the pull requests of the named repository closed
	// at or after cutoff.
	PurgeWindow(ctx context.Context, repoName string, cutoff time.Time) (int64, error)
}

// SyncTx is the per pull request unit of work.
// Exactly one of Commit or Rollback must be called; Rollback after Commit is a no-op.
type SyncTx interface {
	// UpsertPullRequest inserts the pull request if absent.
	UpsertPullRequest(ctx context.Context, pr domain.PullRequest) error

	// UpsertFilesAndAssociations inserts the files and links them to the pull
	// request. May be called once per page of files. An empty slice is a no-op.
	UpsertFilesAndAssociations(ctx context.Context, pullRequestID int64, files []domain.File) error

	// Commit makes the unit's writes durable.
	Commit() error

	// Rollback discards the unit's writes.
	Rollback() error
}
