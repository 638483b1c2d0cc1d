package driven

import (
	"context"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

// Iterator is a lazy, forward-only sequence backed by a paginated source.
// Pages are fetched on demand as Next advances past a page boundary.
//
// Typical use:
//
//	for it.Next(ctx) {
//		v := it.Value()
//	}
//	if err := it.Err(); err != nil { ... }
type Iterator[T any] interface {
	// Next advances to the next item, fetching the next page when needed.
	// Returns false when the sequence is exhausted or an error occurred.
	Next(ctx context.Context) bool

	// Value returns the current item. Only valid after Next returned true.
	Value() T

	// Err returns the error that stopped iteration, if any.
	Err() error
}

// PullRequestSource reads repository and pull request metadata from the
// remote API. Implementations handle authentication and rate limiting.
type PullRequestSource interface {
	// GetRepository resolves an "owner/repo" name to its remote record.
	GetRepository(ctx context.Context, fullName string) (domain.Repository, error)

	// ListClosedPullRequests lists closed pull requests of repo, most
	// recently updated first. Each item carries RepoID.
	ListClosedPullRequests(ctx context.Context, repo domain.Repository) Iterator[domain.PullRequest]

	// ListPullRequestFiles lists the files changed by pr.
	ListPullRequestFiles(ctx context.Context, repo domain.Repository, pr domain.PullRequest) Iterator[domain.File]
}
