package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// ListClosedPullRequests lists closed pull requests of repo, most recently
// updated first. GitHub has no closed-time sort; closing a pull request
// updates it, so updated_at is never earlier than closed_at.
func (c *Client) ListClosedPullRequests(_ context.Context, repo domain.Repository) driven.Iterator[domain.PullRequest] {
	return c.closedPullRequests(repo, FirstPage)
}

// closedPullRequests starts the closed listing at page.
func (c *Client) closedPullRequests(repo domain.Repository, page int) *PageIterator[domain.PullRequest] {
	owner, name := repo.Owner(), repo.ShortName()

	return NewPageIterator(page, func(ctx context.Context, page int) ([]domain.PullRequest, int, error) {
		client, err := c.ensureClient(ctx)
		if err != nil {
			return nil, 0, err
		}

		opts := &gh.PullRequestListOptions{
			State:     "closed",
			Sort:      "updated",
			Direction: "desc",
			ListOptions: gh.ListOptions{
				Page:    page,
				PerPage: c.cfg.perPage(),
			},
		}

		prs, resp, err := retryOnRateLimit(ctx, c, "list pull requests "+repo.Name, func() ([]*gh.PullRequest, *gh.Response, error) {
			return client.PullRequests.List(ctx, owner, name, opts)
		})
		if err != nil {
			return nil, 0, err
		}

		items := make([]domain.PullRequest, 0, len(prs))
		for _, pr := range prs {
			items = append(items, toPullRequest(repo.ID, pr))
		}
		return items, resp.NextPage, nil
	})
}

// toPullRequest maps a listing item. The listing payload omits
// changed_files, so an absent count maps to domain.UnknownFileCount.
func toPullRequest(repoID int64, pr *gh.PullRequest) domain.PullRequest {
	changed := domain.UnknownFileCount
	if pr.ChangedFiles != nil {
		changed = *pr.ChangedFiles
	}

	return domain.PullRequest{
		ID:           pr.GetID(),
		Number:       pr.GetNumber(),
		Title:        pr.GetTitle(),
		Merged:       pr.GetMerged() || pr.MergedAt != nil,
		CreatedAt:    pr.GetCreatedAt().Time,
		ClosedAt:     pr.GetClosedAt().Time,
		UpdatedAt:    pr.GetUpdatedAt().Time,
		RepoID:       repoID,
		ChangedFiles: changed,
	}
}
