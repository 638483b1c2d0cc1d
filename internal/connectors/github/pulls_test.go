package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	gh "github.com/google/go-github/v80/github"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

func prJSON(id, number int, closed time.Time) string {
	ts := closed.UTC().Format(time.RFC3339)
	return fmt.Sprintf(`{"id":%d,"number":%d,"title":"PR %d","created_at":%q,"closed_at":%q,"updated_at":%q,"merged_at":null}`,
		id, number, number, closed.Add(-time.Hour).UTC().Format(time.RFC3339), ts, ts)
}

// pagedPulls serves two pages of closed pull requests and counts page requests.
func pagedPulls(t *testing.T, pages *atomic.Int32) (*Client, *httptest.Server) {
	t.Helper()
	base := time.Date(2024, 5, 10, 0, 0, 0, 0, time.UTC)

	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/octo/cat/pulls", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "closed", q.Get("state"))
		assert.Equal(t, "updated", q.Get("sort"))
		assert.Equal(t, "desc", q.Get("direction"))
		assert.Equal(t, "100", q.Get("per_page"))

		pages.Add(1)
		w.Header().Set("Content-Type", "application/json")
		switch q.Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/octo/cat/pulls?page=2>; rel="next"`, server.URL))
			fmt.Fprintf(w, "[%s,%s]", prJSON(3, 30, base), prJSON(2, 20, base.Add(-24*time.Hour)))
		case "2":
			fmt.Fprintf(w, "[%s]", prJSON(1, 10, base.Add(-48*time.Hour)))
		default:
			t.Errorf("unexpected page %q", q.Get("page"))
		}
	}))
	t.Cleanup(server.Close)

	cfg := DefaultConfig()
	cfg.BaseURL = server.URL
	return NewClient(&staticCredentials{creds: domain.APICredentials{Token: "t"}}, cfg), server
}

func TestClient_ListClosedPullRequests(t *testing.T) {
	var pages atomic.Int32
	client, _ := pagedPulls(t, &pages)
	repo := domain.Repository{ID: 42, Name: "octo/cat"}

	it := client.ListClosedPullRequests(context.Background(), repo)
	var numbers []int
	for it.Next(context.Background()) {
		pr := it.Value()
		assert.Equal(t, int64(42), pr.RepoID)
		assert.Equal(t, domain.UnknownFileCount, pr.ChangedFiles)
		numbers = append(numbers, pr.Number)
	}
	require.NoError(t, it.Err())

	assert.Equal(t, []int{30, 20, 10}, numbers)
	assert.Equal(t, int32(2), pages.Load())
}

func TestClient_ListClosedPullRequests_StopsLazily(t *testing.T) {
	var pages atomic.Int32
	client, _ := pagedPulls(t, &pages)

	it := client.ListClosedPullRequests(context.Background(), domain.Repository{ID: 42, Name: "octo/cat"})
	require.True(t, it.Next(context.Background()))
	require.True(t, it.Next(context.Background()))

	assert.Equal(t, int32(1), pages.Load(), "second page is not fetched until needed")
}

func TestClient_ClosedPullRequests_ResumeFromCursor(t *testing.T) {
	var pages atomic.Int32
	client, _ := pagedPulls(t, &pages)
	repo := domain.Repository{ID: 42, Name: "octo/cat"}

	first := client.closedPullRequests(repo, FirstPage)
	require.True(t, first.Next(context.Background()))
	assert.Equal(t, 2, first.Cursor())

	resumed := client.closedPullRequests(repo, first.Cursor())
	require.True(t, resumed.Next(context.Background()))
	assert.Equal(t, 10, resumed.Value().Number)
	assert.False(t, resumed.Next(context.Background()))
	assert.Equal(t, 0, resumed.Cursor())
}

func TestClient_ListPullRequestFiles(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/repos/octo/cat/pulls/7/files", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `[{"sha":"aaa","filename":"main.go"},{"sha":"bbb","filename":"README.md"}]`)
	}))
	defer server.Close()

	client := NewClient(&staticCredentials{creds: domain.APICredentials{Token: "t"}}, Config{BaseURL: server.URL})
	it := client.ListPullRequestFiles(context.Background(), domain.Repository{ID: 1, Name: "octo/cat"}, domain.PullRequest{ID: 70, Number: 7})

	var files []domain.File
	for it.Next(context.Background()) {
		files = append(files, it.Value())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []domain.File{{SHA: "aaa", Filename: "main.go"}, {SHA: "bbb", Filename: "README.md"}}, files)
}

func TestToPullRequest(t *testing.T) {
	closed := gh.Timestamp{Time: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)}
	created := gh.Timestamp{Time: closed.Add(-time.Hour)}
	updated := gh.Timestamp{Time: closed.Add(time.Minute)}

	t.Run("merged with file count", func(t *testing.T) {
		pr := toPullRequest(9, &gh.PullRequest{
			ID:           gh.Ptr(int64(100)),
			Number:       gh.Ptr(5),
			Title:        gh.Ptr("Fix it"),
			CreatedAt:    &created,
			ClosedAt:     &closed,
			UpdatedAt:    &updated,
			MergedAt:     &closed,
			ChangedFiles: gh.Ptr(0),
		})
		assert.Equal(t, domain.PullRequest{
			ID:           100,
			Number:       5,
			Title:        "Fix it",
			Merged:       true,
			CreatedAt:    created.Time,
			ClosedAt:     closed.Time,
			UpdatedAt:    updated.Time,
			RepoID:       9,
			ChangedFiles: 0,
		}, pr)
		assert.False(t, pr.HasFiles())
	})

	t.Run("closed without merge", func(t *testing.T) {
		pr := toPullRequest(9, &gh.PullRequest{ID: gh.Ptr(int64(101)), ClosedAt: &closed})
		assert.False(t, pr.Merged)
		assert.Equal(t, domain.UnknownFileCount, pr.ChangedFiles)
		assert.True(t, pr.HasFiles())
	})
}

func TestPageIterator(t *testing.T) {
	pages := map[int][]int{1: {1, 2}, 2: {}, 3: {3}}
	var fetched []int
	fetch := func(_ context.Context, page int) ([]int, int, error) {
		fetched = append(fetched, page)
		next := page + 1
		if next > 3 {
			next = 0
		}
		return pages[page], next, nil
	}

	it := NewPageIterator(0, fetch)
	var got []int
	for it.Next(context.Background()) {
		got = append(got, it.Value())
	}
	require.NoError(t, it.Err())
	assert.Equal(t, []int{1, 2, 3}, got)
	assert.Equal(t, []int{1, 2, 3}, fetched)
	assert.Equal(t, 3, it.Pages())
	assert.Equal(t, 0, it.Cursor())
}

func TestPageIterator_Error(t *testing.T) {
	boom := errors.New("boom")
	calls := 0
	it := NewPageIterator(FirstPage, func(_ context.Context, page int) ([]string, int, error) {
		calls++
		if page == 1 {
			return []string{"a"}, 2, nil
		}
		return nil, 0, boom
	})

	require.True(t, it.Next(context.Background()))
	assert.False(t, it.Next(context.Background()))
	assert.ErrorIs(t, it.Err(), boom)
	assert.False(t, it.Next(context.Background()))
	assert.Equal(t, 2, calls, "no fetch after an error")
}

func TestPageIterator_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	it := NewPageIterator(FirstPage, func(_ context.Context, _ int) ([]string, int, error) {
		t.Fatal("fetch must not run on a cancelled context")
		return nil, 0, nil
	})
	assert.False(t, it.Next(ctx))
	assert.ErrorIs(t, it.Err(), context.Canceled)
}

func TestClient_ListClosedPullRequests_RateLimitMidWalk(t *testing.T) {
	reset := time.Now().Add(-time.Minute).Truncate(time.Second)
	sleeper := &recordingSleeper{}
	var requests atomic.Int32

	client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requests.Add(1) == 1 {
			writeRateLimited(w, reset)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set(HeaderRateRemaining, strconv.Itoa(4999))
		fmt.Fprintf(w, "[%s]", prJSON(1, 1, reset))
	}), WithSleeper(sleeper.sleep))

	it := client.ListClosedPullRequests(context.Background(), domain.Repository{ID: 1, Name: "octo/cat"})
	require.True(t, it.Next(context.Background()))
	assert.False(t, it.Next(context.Background()))
	require.NoError(t, it.Err())
	assert.Len(t, sleeper.waits, 1)
	assert.Equal(t, 4999, client.RateLimiter().Remaining())
}
