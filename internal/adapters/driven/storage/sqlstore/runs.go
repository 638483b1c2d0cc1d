package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

const selectRunSQL = `
	SELECT id, load_type, repos, reference_time, period_seconds, started_at, ended_at,
	       success, error, pull_requests, files, purged
	FROM sync_run`

// runStore implements driven.RunStore.
type runStore struct {
	store *Store
}

var _ driven.RunStore = (*runStore)(nil)

// SaveRun persists a run record. Creates or updates based on ID.
func (s *runStore) SaveRun(ctx context.Context, run *domain.RunRecord) error {
	if run == nil || run.ID == "" {
		return domain.ErrInvalidInput
	}

	reposJSON, err := json.Marshal(run.Repos)
	if err != nil {
		return fmt.Errorf("marshalling repos: %w", err)
	}

	var endedAt sql.NullTime
	if !run.EndedAt.IsZero() {
		endedAt = sql.NullTime{Time: domain.StoreTime(run.EndedAt), Valid: true}
	}

	_, err = s.store.db.ExecContext(ctx, `
		INSERT INTO sync_run (id, load_type, repos, reference_time, period_seconds, started_at, ended_at,
		                      success, error, pull_requests, files, purged)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			ended_at = excluded.ended_at,
			success = excluded.success,
			error = excluded.error,
			pull_requests = excluded.pull_requests,
			files = excluded.files,
			purged = excluded.purged
	`, run.ID, string(run.LoadType), string(reposJSON),
		domain.StoreTime(run.ReferenceTime), int64(run.Period/time.Second),
		domain.StoreTime(run.StartedAt), endedAt,
		run.Success, run.Error, run.PullRequests, run.Files, run.Purged)
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *runStore) GetRun(ctx context.Context, id string) (*domain.RunRecord, error) {
	row := s.store.db.QueryRowContext(ctx, selectRunSQL+` WHERE id = $1`, id)
	run, err := scanRun(row)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// ListRuns returns recent runs ordered by start time descending.
func (s *runStore) ListRuns(ctx context.Context, limit int) ([]domain.RunRecord, error) {
	if limit <= 0 {
		limit = driven.DefaultRunListLimit
	}

	rows, err := s.store.db.QueryContext(ctx, selectRunSQL+` ORDER BY started_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var runs []domain.RunRecord //nolint:prealloc // size unknown from query
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating runs: %w", err)
	}
	return runs, nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*domain.RunRecord, error) {
	var (
		run           domain.RunRecord
		loadType      string
		reposJSON     string
		periodSeconds int64
		endedAt       sql.NullTime
	)
	err := row.Scan(&run.ID, &loadType, &reposJSON, &run.ReferenceTime, &periodSeconds,
		&run.StartedAt, &endedAt, &run.Success, &run.Error,
		&run.PullRequests, &run.Files, &run.Purged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scanning run: %w", err)
	}

	if err := json.Unmarshal([]byte(reposJSON), &run.Repos); err != nil {
		return nil, fmt.Errorf("unmarshaling repos: %w", err)
	}
	run.LoadType = domain.LoadType(loadType)
	run.Period = time.Duration(periodSeconds) * time.Second
	run.ReferenceTime = run.ReferenceTime.UTC()
	run.StartedAt = run.StartedAt.UTC()
	if endedAt.Valid {
		run.EndedAt = endedAt.Time.UTC()
	}
	return &run, nil
}
