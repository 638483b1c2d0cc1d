package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// Ensure SyncStore implements the interface.
var _ driven.SyncStore = (*SyncStore)(nil)

// SyncStore is an in-memory implementation of driven.SyncStore.
// Units of work are buffered and applied atomically on Commit.
type SyncStore struct {
	mu           sync.RWMutex
	repos        map[int64]domain.Repository
	pullRequests map[int64]domain.PullRequest
	files        map[string]domain.File
	associations map[domain.Association]struct{}
}

// NewSyncStore creates a new in-memory sync store.
func NewSyncStore() *SyncStore {
	return &SyncStore{
		repos:        make(map[int64]domain.Repository),
		pullRequests: make(map[int64]domain.PullRequest),
		files:        make(map[string]domain.File),
		associations: make(map[domain.Association]struct{}),
	}
}

// UpsertRepository inserts the repository if absent.
func (s *SyncStore) UpsertRepository(_ context.Context, repo domain.Repository) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.repos[repo.ID]; !ok {
		s.repos[repo.ID] = repo
	}
	return nil
}

// Begin opens a buffered unit of work.
func (s *SyncStore) Begin(_ context.Context) (driven.SyncTx, error) {
	return &syncTx{store: s}, nil
}

// PurgeFull deletes every pull request of the named repository.
func (s *SyncStore) PurgeFull(_ context.Context, repoName string) (int64, error) {
	return s.purge(repoName, func(domain.PullRequest) bool { return true }), nil
}

// PurgeWindow deletes the pull requests of the named repository closed at or after cutoff.
func (s *SyncStore) PurgeWindow(_ context.Context, repoName string, cutoff time.Time) (int64, error) {
	cutoff = domain.StoreTime(cutoff)
	return s.purge(repoName, func(pr domain.PullRequest) bool {
		return !pr.ClosedAt.Before(cutoff)
	}), nil
}

func (s *SyncStore) purge(repoName string, match func(domain.PullRequest) bool) int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	repoID, ok := s.repoIDLocked(repoName)
	if !ok {
		return 0
	}

	var deleted int64
	for id, pr := range s.pullRequests {
		if pr.RepoID != repoID || !match(pr) {
			continue
		}
		delete(s.pullRequests, id)
		for a := range s.associations {
			if a.PullRequestID == id {
				delete(s.associations, a)
			}
		}
		deleted++
	}
	return deleted
}

func (s *SyncStore) repoIDLocked(name string) (int64, bool) {
	for id, r := range s.repos {
		if r.Name == name {
			return id, true
		}
	}
	return 0, false
}

// Repositories returns the stored repositories ordered by ID.
func (s *SyncStore) Repositories() []domain.Repository {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Repository, 0, len(s.repos))
	for _, r := range s.repos {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// PullRequests returns the stored pull requests ordered by ID.
func (s *SyncStore) PullRequests() []domain.PullRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PullRequest, 0, len(s.pullRequests))
	for _, pr := range s.pullRequests {
		out = append(out, pr)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Files returns the stored files ordered by SHA.
func (s *SyncStore) Files() []domain.File {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.File, 0, len(s.files))
	for _, f := range s.files {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SHA < out[j].SHA })
	return out
}

// Associations returns the stored associations ordered by pull request and SHA.
func (s *SyncStore) Associations() []domain.Association {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Association, 0, len(s.associations))
	for a := range s.associations {
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].PullRequestID != out[j].PullRequestID {
			return out[i].PullRequestID < out[j].PullRequestID
		}
		return out[i].FileSHA < out[j].FileSHA
	})
	return out
}

// syncTx buffers the writes of one unit.
type syncTx struct {
	store        *SyncStore
	pullRequests []domain.PullRequest
	files        []domain.File
	associations []domain.Association
	done         bool
}

func (t *syncTx) UpsertPullRequest(_ context.Context, pr domain.PullRequest) error {
	if t.done {
		return errTxDone
	}
	pr.CreatedAt = domain.StoreTime(pr.CreatedAt)
	pr.ClosedAt = domain.StoreTime(pr.ClosedAt)
	// Transport-only fields are not persisted.
	pr.Number, pr.UpdatedAt, pr.ChangedFiles = 0, time.Time{}, 0
	t.pullRequests = append(t.pullRequests, pr)
	return nil
}

func (t *syncTx) UpsertFilesAndAssociations(_ context.Context, pullRequestID int64, files []domain.File) error {
	if t.done {
		return errTxDone
	}
	for _, f := range files {
		t.files = append(t.files, f)
		t.associations = append(t.associations, domain.Association{PullRequestID: pullRequestID, FileSHA: f.SHA})
	}
	return nil
}

func (t *syncTx) Commit() error {
	if t.done {
		return errTxDone
	}
	t.done = true

	s := t.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, pr := range t.pullRequests {
		if _, ok := s.repos[pr.RepoID]; !ok {
			return errMissingRepo
		}
	}
	for _, pr := range t.pullRequests {
		if _, ok := s.pullRequests[pr.ID]; !ok {
			s.pullRequests[pr.ID] = pr
		}
	}
	for _, f := range t.files {
		if _, ok := s.files[f.SHA]; !ok {
			s.files[f.SHA] = f
		}
	}
	for _, a := range t.associations {
		s.associations[a] = struct{}{}
	}
	return nil
}

func (t *syncTx) Rollback() error {
	t.done = true
	t.pullRequests, t.files, t.associations = nil, nil, nil
	return nil
}
