package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

const (
	insertRepoSQL = `INSERT INTO repo (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`

	insertPullRequestSQL = `
		INSERT INTO pull_request (id, title, merged, created_at, closed_at, repo_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO NOTHING`

	insertFileSQL = `INSERT INTO file (sha, filename) VALUES ($1, $2) ON CONFLICT (sha) DO NOTHING`

	insertAssociationSQL = `
		INSERT INTO association_pull_request_file (pull_request_id, file_sha)
		VALUES ($1, $2)
		ON CONFLICT (pull_request_id, file_sha) DO NOTHING`
)

// syncStore implements driven.SyncStore.
type syncStore struct {
	store *Store
}

var _ driven.SyncStore = (*syncStore)(nil)

// UpsertRepository inserts the repository if absent.
func (s *syncStore) UpsertRepository(ctx context.Context, repo domain.Repository) error {
	if _, err := s.store.db.ExecContext(ctx, insertRepoSQL, repo.ID, repo.Name); err != nil {
		return fmt.Errorf("inserting repo %s: %w", repo.Name, err)
	}
	return nil
}

// Begin opens the unit of work for one pull request.
func (s *syncStore) Begin(ctx context.Context) (driven.SyncTx, error) {
	tx, err := s.store.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	return &syncTx{tx: tx}, nil
}

// syncTx implements driven.SyncTx on a database transaction.
type syncTx struct {
	tx *sql.Tx
}

var _ driven.SyncTx = (*syncTx)(nil)

// UpsertPullRequest inserts the pull request if absent.
func (t *syncTx) UpsertPullRequest(ctx context.Context, pr domain.PullRequest) error {
	_, err := t.tx.ExecContext(ctx, insertPullRequestSQL,
		pr.ID, pr.Title, pr.Merged,
		domain.StoreTime(pr.CreatedAt), domain.StoreTime(pr.ClosedAt), pr.RepoID)
	if err != nil {
		return fmt.Errorf("inserting pull request %d: %w", pr.ID, err)
	}
	return nil
}

// UpsertFilesAndAssociations inserts the files and links them to the pull request.
func (t *syncTx) UpsertFilesAndAssociations(ctx context.Context, pullRequestID int64, files []domain.File) error {
	if len(files) == 0 {
		return nil
	}

	fileStmt, err := t.tx.PrepareContext(ctx, insertFileSQL)
	if err != nil {
		return fmt.Errorf("preparing file insert: %w", err)
	}
	defer fileStmt.Close()

	assocStmt, err := t.tx.PrepareContext(ctx, insertAssociationSQL)
	if err != nil {
		return fmt.Errorf("preparing association insert: %w", err)
	}
	defer assocStmt.Close()

	for _, f := range files {
		if _, err := fileStmt.ExecContext(ctx, f.SHA, f.Filename); err != nil {
			return fmt.Errorf("inserting file %s: %w", f.SHA, err)
		}
	}
	for _, f := range files {
		if _, err := assocStmt.ExecContext(ctx, pullRequestID, f.SHA); err != nil {
			return fmt.Errorf("inserting association %d/%s: %w", pullRequestID, f.SHA, err)
		}
	}
	return nil
}

// Commit makes the unit's writes durable.
func (t *syncTx) Commit() error {
	if err := t.tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Rollback discards the unit's writes. Rolling back a finished transaction is a no-op.
func (t *syncTx) Rollback() error {
	if err := t.tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		return fmt.Errorf("rolling back transaction: %w", err)
	}
	return nil
}
