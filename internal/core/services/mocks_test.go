package services

import (
	"context"
	"sync"
	"time"

	"github.com/custodia-labs/prsync/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// --- Mock implementations for sync testing ---

// sliceIterator serves items in pages of pageSize and counts the pages touched.
type sliceIterator[T any] struct {
	items    []T
	pageSize int
	pos      int
	pages    int
	cur      T
	failAt   int
	failErr  error
	err      error
}

func newSliceIterator[T any](items []T, pageSize int) *sliceIterator[T] {
	return &sliceIterator[T]{items: items, pageSize: pageSize, failAt: -1}
}

func (it *sliceIterator[T]) Next(ctx context.Context) bool {
	if it.err != nil {
		return false
	}
	if err := ctx.Err(); err != nil {
		it.err = err
		return false
	}
	if it.failErr != nil && it.pos == it.failAt {
		it.err = it.failErr
		return false
	}
	if it.pos >= len(it.items) {
		return false
	}
	if it.pageSize <= 0 || it.pos%it.pageSize == 0 {
		it.pages++
	}
	it.cur = it.items[it.pos]
	it.pos++
	return true
}

func (it *sliceIterator[T]) Value() T   { return it.cur }
func (it *sliceIterator[T]) Err() error { return it.err }
func (it *sliceIterator[T]) Pages() int { return it.pages }

// fakeSource implements driven.PullRequestSource over fixed data.
type fakeSource struct {
	mu       sync.Mutex
	pageSize int
	repos    map[string]domain.Repository
	pulls    map[int64][]domain.PullRequest
	files    map[int64][]domain.File
	repoErr  map[string]error
	filesErr map[int64]error

	resolved  []string
	fileCalls []int64
	iterators []*sliceIterator[domain.PullRequest]
}

func newFakeSource() *fakeSource {
	return &fakeSource{
		pageSize: 2,
		repos:    make(map[string]domain.Repository),
		pulls:    make(map[int64][]domain.PullRequest),
		files:    make(map[int64][]domain.File),
		repoErr:  make(map[string]error),
		filesErr: make(map[int64]error),
	}
}

// addRepo registers a repository and its closed pull requests in listing order.
func (f *fakeSource) addRepo(repo domain.Repository, pulls ...domain.PullRequest) {
	f.repos[repo.Name] = repo
	for i := range pulls {
		pulls[i].RepoID = repo.ID
	}
	f.pulls[repo.ID] = pulls
}

func (f *fakeSource) GetRepository(_ context.Context, fullName string) (domain.Repository, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolved = append(f.resolved, fullName)
	if err := f.repoErr[fullName]; err != nil {
		return domain.Repository{}, err
	}
	repo, ok := f.repos[fullName]
	if !ok {
		return domain.Repository{}, domain.ErrNotFound
	}
	return repo, nil
}

func (f *fakeSource) ListClosedPullRequests(_ context.Context, repo domain.Repository) driven.Iterator[domain.PullRequest] {
	f.mu.Lock()
	defer f.mu.Unlock()
	it := newSliceIterator(f.pulls[repo.ID], f.pageSize)
	f.iterators = append(f.iterators, it)
	return it
}

func (f *fakeSource) ListPullRequestFiles(_ context.Context, _ domain.Repository, pr domain.PullRequest) driven.Iterator[domain.File] {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fileCalls = append(f.fileCalls, pr.ID)
	it := newSliceIterator(f.files[pr.ID], 0)
	if err := f.filesErr[pr.ID]; err != nil {
		it.failAt = len(f.files[pr.ID])
		it.failErr = err
	}
	return it
}

// failingStore wraps the memory store with injectable failures.
type failingStore struct {
	*memory.SyncStore
	purgeErr    error
	upsertPRErr map[int64]error
	commitErr   error
	fileBatches int
}

func newFailingStore() *failingStore {
	return &failingStore{SyncStore: memory.NewSyncStore(), upsertPRErr: make(map[int64]error)}
}

func (s *failingStore) PurgeFull(ctx context.Context, repoName string) (int64, error) {
	if s.purgeErr != nil {
		return 0, s.purgeErr
	}
	return s.SyncStore.PurgeFull(ctx, repoName)
}

func (s *failingStore) PurgeWindow(ctx context.Context, repoName string, cutoff time.Time) (int64, error) {
	if s.purgeErr != nil {
		return 0, s.purgeErr
	}
	return s.SyncStore.PurgeWindow(ctx, repoName, cutoff)
}

func (s *failingStore) Begin(ctx context.Context) (driven.SyncTx, error) {
	tx, err := s.SyncStore.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &failingTx{SyncTx: tx, store: s}, nil
}

type failingTx struct {
	driven.SyncTx
	store *failingStore
}

func (t *failingTx) UpsertPullRequest(ctx context.Context, pr domain.PullRequest) error {
	if err := t.store.upsertPRErr[pr.ID]; err != nil {
		return err
	}
	return t.SyncTx.UpsertPullRequest(ctx, pr)
}

func (t *failingTx) UpsertFilesAndAssociations(ctx context.Context, id int64, files []domain.File) error {
	t.store.fileBatches++
	return t.SyncTx.UpsertFilesAndAssociations(ctx, id, files)
}

func (t *failingTx) Commit() error {
	if t.store.commitErr != nil {
		return t.store.commitErr
	}
	return t.SyncTx.Commit()
}

// mockOrchestrator implements driving.SyncOrchestrator for pipeline testing.
type mockOrchestrator struct {
	mu       sync.Mutex
	calls    []domain.Phase
	cleanErr error
	loadErr  error
	block    chan struct{}
	started  chan struct{}
}

func (m *mockOrchestrator) record(p domain.Phase) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, p)
}

func (m *mockOrchestrator) phases() []domain.Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Phase(nil), m.calls...)
}

func (m *mockOrchestrator) Clean(_ context.Context, params domain.RunParams) (domain.RunReport, error) {
	m.record(domain.PhaseClean)
	if m.started != nil {
		m.started <- struct{}{}
	}
	if m.block != nil {
		<-m.block
	}
	report := domain.RunReport{LoadType: params.LoadType}
	for _, r := range params.Repos {
		report.Repo(r).Purged = 1
	}
	return report, m.cleanErr
}

func (m *mockOrchestrator) Load(_ context.Context, params domain.RunParams) (domain.RunReport, error) {
	m.record(domain.PhaseLoad)
	report := domain.RunReport{LoadType: params.LoadType}
	for _, r := range params.Repos {
		rr := report.Repo(r)
		rr.PullRequests = 2
		rr.Files = 3
	}
	return report, m.loadErr
}
