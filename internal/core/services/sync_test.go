package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

var refTime = time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return refTime.Add(-time.Duration(n) * 24 * time.Hour)
}

// closedPR builds a pull request closed (and last updated) at closed.
func closedPR(id int64, closed time.Time, changedFiles int) domain.PullRequest {
	return domain.PullRequest{
		ID:           id,
		Number:       int(id),
		Title:        "PR",
		CreatedAt:    closed.Add(-time.Hour),
		ClosedAt:     closed,
		UpdatedAt:    closed,
		ChangedFiles: changedFiles,
	}
}

func prIDs(prs []domain.PullRequest) []int64 {
	ids := make([]int64, 0, len(prs))
	for _, pr := range prs {
		ids = append(ids, pr.ID)
	}
	return ids
}

func incremental(period time.Duration, repos ...string) domain.RunParams {
	return domain.RunParams{LoadType: domain.LoadIncremental, Repos: repos, ReferenceTime: refTime, Period: period}
}

func full(repos ...string) domain.RunParams {
	return domain.RunParams{LoadType: domain.LoadFull, Repos: repos, ReferenceTime: refTime}
}

var catRepo = domain.Repository{ID: 42, Name: "octo/cat"}

func TestSyncOrchestrator_Load_IncrementalStopsAtCutoff(t *testing.T) {
	source := newFakeSource()
	source.addRepo(catRepo,
		closedPR(1, daysAgo(1), 0),
		closedPR(5, daysAgo(5), 0),
		closedPR(8, daysAgo(8), 0),
		closedPR(9, daysAgo(9), 0),
		closedPR(10, daysAgo(10), 0),
		closedPR(11, daysAgo(11), 0),
	)
	store := newFailingStore()
	orch := NewSyncOrchestrator(source, store)

	report, err := orch.Load(context.Background(), incremental(7*24*time.Hour, "octo/cat"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 5}, prIDs(store.PullRequests()))
	assert.Equal(t, []domain.Repository{catRepo}, store.Repositories())

	rr := report.Repo("octo/cat")
	assert.Equal(t, 2, rr.PullRequests)
	assert.Equal(t, domain.StopPredicate, rr.Stop)
	// The stop item sits on page 2; page 3 is never fetched.
	assert.Equal(t, 2, rr.Pages)
	assert.Empty(t, source.fileCalls)
}

func TestSyncOrchestrator_Load_CutoffBoundaryIncluded(t *testing.T) {
	source := newFakeSource()
	source.addRepo(catRepo,
		closedPR(1, daysAgo(1), 0),
		closedPR(2, daysAgo(1).Add(-24*time.Hour), 0),
		closedPR(3, daysAgo(2).Add(-time.Second), 0),
	)
	store := newFailingStore()

	_, err := NewSyncOrchestrator(source, store).Load(context.Background(), incremental(48*time.Hour, "octo/cat"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, prIDs(store.PullRequests()))
}

func TestSyncOrchestrator_Load_SkipsUpdatedAfterClose(t *testing.T) {
	// Commented on after closing: inside the ordering window, outside the close window.
	late := closedPR(2, daysAgo(30), 0)
	late.UpdatedAt = daysAgo(1)

	source := newFakeSource()
	source.addRepo(catRepo,
		closedPR(1, daysAgo(1), 0),
		late,
		closedPR(3, daysAgo(2), 0),
		closedPR(4, daysAgo(40), 0),
	)
	store := newFailingStore()

	report, err := NewSyncOrchestrator(source, store).Load(context.Background(), incremental(7*24*time.Hour, "octo/cat"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 3}, prIDs(store.PullRequests()))
	assert.Equal(t, 1, report.Repo("octo/cat").Skipped)
	assert.Equal(t, domain.StopPredicate, report.Repo("octo/cat").Stop)
}

func TestSyncOrchestrator_Load_FullWalksEverything(t *testing.T) {
	source := newFakeSource()
	source.addRepo(catRepo,
		closedPR(1, daysAgo(1), 0),
		closedPR(2, daysAgo(400), 0),
		closedPR(3, daysAgo(4000), 0),
	)
	store := newFailingStore()

	report, err := NewSyncOrchestrator(source, store).Load(context.Background(), full("octo/cat"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2, 3}, prIDs(store.PullRequests()))
	assert.Equal(t, domain.StopExhausted, report.Repo("octo/cat").Stop)
	assert.Equal(t, 2, report.Repo("octo/cat").Pages)
}

func TestSyncOrchestrator_Load_Files(t *testing.T) {
	source := newFakeSource()
	source.addRepo(catRepo,
		closedPR(1, daysAgo(1), 5),
		closedPR(2, daysAgo(1), domain.UnknownFileCount),
		closedPR(3, daysAgo(1), 0),
	)
	source.files[1] = []domain.File{
		{SHA: "a", Filename: "a.go"},
		{SHA: "b", Filename: "b.go"},
		{SHA: "", Filename: "submodule"},
		{SHA: "c", Filename: "c.go"},
		{SHA: "d", Filename: "d.go"},
		{SHA: "e", Filename: "e.go"},
	}
	source.files[2] = []domain.File{{SHA: "a", Filename: "renamed.go"}}
	store := newFailingStore()
	orch := NewSyncOrchestrator(source, store, WithFileBatchSize(2))

	report, err := orch.Load(context.Background(), full("octo/cat"))
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, source.fileCalls, "a zero count skips the listing")
	// 5 files in batches of 2, then one for PR 2.
	assert.Equal(t, 4, store.fileBatches)
	assert.Equal(t, 6, report.Repo("octo/cat").Files)

	files := store.Files()
	require.Len(t, files, 5)
	assert.Equal(t, domain.File{SHA: "a", Filename: "a.go"}, files[0], "first seen filename is kept")
	assert.Contains(t, store.Associations(), domain.Association{PullRequestID: 2, FileSHA: "a"})
	assert.Len(t, store.Associations(), 6)
}

func TestSyncOrchestrator_Load_Idempotent(t *testing.T) {
	source := newFakeSource()
	source.addRepo(catRepo, closedPR(1, daysAgo(1), 1), closedPR(2, daysAgo(2), 1))
	source.files[1] = []domain.File{{SHA: "a", Filename: "a.go"}}
	source.files[2] = []domain.File{{SHA: "a", Filename: "a.go"}}
	store := newFailingStore()
	orch := NewSyncOrchestrator(source, store)

	params := full("octo/cat")
	_, err := orch.Load(context.Background(), params)
	require.NoError(t, err)
	prs, files, assocs := store.PullRequests(), store.Files(), store.Associations()

	_, err = orch.Load(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, prs, store.PullRequests())
	assert.Equal(t, files, store.Files())
	assert.Equal(t, assocs, store.Associations())
}

func TestSyncOrchestrator_Load_FailFast(t *testing.T) {
	dogRepo := domain.Repository{ID: 43, Name: "octo/dog"}
	listErr := errors.New("connection reset")

	source := newFakeSource()
	source.addRepo(catRepo,
		closedPR(1, daysAgo(1), 1),
		closedPR(2, daysAgo(1), 2),
		closedPR(3, daysAgo(1), 0),
	)
	source.addRepo(dogRepo, closedPR(4, daysAgo(1), 0))
	source.files[1] = []domain.File{{SHA: "a", Filename: "a.go"}}
	source.files[2] = []domain.File{{SHA: "b", Filename: "b.go"}}
	source.filesErr[2] = listErr
	store := newFailingStore()

	_, err := NewSyncOrchestrator(source, store).Load(context.Background(), full("octo/cat", "octo/dog"))
	require.Error(t, err)
	assert.ErrorIs(t, err, listErr)

	var repoErr *RepoError
	require.ErrorAs(t, err, &repoErr)
	assert.Equal(t, "octo/cat", repoErr.Repo)
	assert.Equal(t, domain.PhaseLoad, repoErr.Phase)

	// PR 1 was committed, PR 2 rolled back, nothing after it ran.
	assert.Equal(t, []int64{1}, prIDs(store.PullRequests()))
	assert.Equal(t, []domain.Association{{PullRequestID: 1, FileSHA: "a"}}, store.Associations())
	assert.Equal(t, []string{"octo/cat"}, source.resolved)
}

func TestSyncOrchestrator_Load_StoreErrors(t *testing.T) {
	boom := errors.New("disk full")

	t.Run("upsert pull request", func(t *testing.T) {
		source := newFakeSource()
		source.addRepo(catRepo, closedPR(1, daysAgo(1), 0), closedPR(2, daysAgo(1), 0))
		store := newFailingStore()
		store.upsertPRErr[2] = boom

		_, err := NewSyncOrchestrator(source, store).Load(context.Background(), full("octo/cat"))
		assert.ErrorIs(t, err, boom)
		assert.Equal(t, []int64{1}, prIDs(store.PullRequests()))
	})

	t.Run("commit", func(t *testing.T) {
		source := newFakeSource()
		source.addRepo(catRepo, closedPR(1, daysAgo(1), 0))
		store := newFailingStore()
		store.commitErr = boom

		_, err := NewSyncOrchestrator(source, store).Load(context.Background(), full("octo/cat"))
		assert.ErrorIs(t, err, boom)
		assert.Empty(t, store.PullRequests())
	})

	t.Run("resolve repository", func(t *testing.T) {
		source := newFakeSource()
		source.repoErr["octo/cat"] = domain.ErrRateLimited
		store := newFailingStore()

		_, err := NewSyncOrchestrator(source, store).Load(context.Background(), full("octo/cat"))
		assert.ErrorIs(t, err, domain.ErrRateLimited)
		assert.Empty(t, store.Repositories())
	})
}

func TestSyncOrchestrator_ValidatesBeforeSideEffects(t *testing.T) {
	tests := []struct {
		name   string
		params domain.RunParams
		want   error
	}{
		{"load type", domain.RunParams{LoadType: "weekly", Repos: []string{"octo/cat"}, ReferenceTime: refTime}, domain.ErrInvalidLoadType},
		{"no repos", domain.RunParams{LoadType: domain.LoadFull, ReferenceTime: refTime}, domain.ErrInvalidRepos},
		{"bad repo", domain.RunParams{LoadType: domain.LoadFull, Repos: []string{"octo/cat", "dog"}, ReferenceTime: refTime}, domain.ErrInvalidRepos},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := newFakeSource()
			source.addRepo(catRepo, closedPR(1, daysAgo(1), 0))
			store := newFailingStore()
			orch := NewSyncOrchestrator(source, store)

			_, err := orch.Clean(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.want)
			_, err = orch.Load(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.want)

			assert.Empty(t, source.resolved)
			assert.Empty(t, store.Repositories())
		})
	}
}

func TestSyncOrchestrator_Clean(t *testing.T) {
	seed := func(t *testing.T) (*fakeSource, *failingStore, *SyncOrchestrator) {
		t.Helper()
		source := newFakeSource()
		source.addRepo(catRepo,
			closedPR(1, daysAgo(1), 0),
			closedPR(2, daysAgo(3), 0),
			closedPR(3, daysAgo(10), 0),
		)
		store := newFailingStore()
		orch := NewSyncOrchestrator(source, store)
		_, err := orch.Load(context.Background(), full("octo/cat"))
		require.NoError(t, err)
		return source, store, orch
	}

	t.Run("full", func(t *testing.T) {
		_, store, orch := seed(t)

		report, err := orch.Clean(context.Background(), full("octo/cat", "octo/unknown"))
		require.NoError(t, err)
		assert.Equal(t, int64(3), report.Repo("octo/cat").Purged)
		assert.Equal(t, int64(0), report.Repo("octo/unknown").Purged)
		assert.Empty(t, store.PullRequests())
		assert.Equal(t, []domain.Repository{catRepo}, store.Repositories())
	})

	t.Run("window", func(t *testing.T) {
		_, store, orch := seed(t)

		report, err := orch.Clean(context.Background(), incremental(5*24*time.Hour, "octo/cat"))
		require.NoError(t, err)
		assert.Equal(t, int64(2), report.Repo("octo/cat").Purged)
		assert.Equal(t, []int64{3}, prIDs(store.PullRequests()))
	})

	t.Run("purge failure", func(t *testing.T) {
		_, store, orch := seed(t)
		store.purgeErr = errors.New("locked")

		_, err := orch.Clean(context.Background(), full("octo/cat"))
		var repoErr *RepoError
		require.ErrorAs(t, err, &repoErr)
		assert.Equal(t, domain.PhaseClean, repoErr.Phase)
		assert.Equal(t, "octo/cat", repoErr.Repo)
		assert.ErrorIs(t, err, store.purgeErr)
	})

	t.Run("clean then load restores the window", func(t *testing.T) {
		_, store, orch := seed(t)
		before := store.PullRequests()

		params := incremental(5*24*time.Hour, "octo/cat")
		_, err := orch.Clean(context.Background(), params)
		require.NoError(t, err)
		_, err = orch.Load(context.Background(), params)
		require.NoError(t, err)
		assert.Equal(t, before, store.PullRequests())
	})
}

func TestRepoError(t *testing.T) {
	err := &RepoError{Repo: "octo/cat", Phase: domain.PhaseLoad, Err: domain.ErrRateLimited}
	assert.Equal(t, "load octo/cat: rate limited", err.Error())
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
}
