package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

const (
	purgeFullSQL = `
		DELETE FROM pull_request
		WHERE repo_id = (SELECT id FROM repo WHERE name = $1)`

	purgeWindowSQL = `
		DELETE FROM pull_request
		WHERE repo_id = (SELECT id FROM repo WHERE name = $1)
		  AND closed_at >= $2`
)

// PurgeFull deletes every pull request of the named repository.
// Associations cascade; file and repo rows are kept.
func (s *syncStore) PurgeFull(ctx context.Context, repoName string) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, purgeFullSQL, repoName)
	if err != nil {
		return 0, fmt.Errorf("purging pull requests of %s: %w", repoName, err)
	}
	return res.RowsAffected()
}

// PurgeWindow deletes the pull requests of the named repository closed at or after cutoff.
func (s *syncStore) PurgeWindow(ctx context.Context, repoName string, cutoff time.Time) (int64, error) {
	res, err := s.store.db.ExecContext(ctx, purgeWindowSQL, repoName, domain.StoreTime(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purging pull requests of %s closed since %s: %w", repoName, cutoff.Format(time.RFC3339), err)
	}
	return res.RowsAffected()
}
