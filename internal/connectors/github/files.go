package github

import (
	"context"
	"fmt"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

// ListPullRequestFiles lists the files changed by pr.
func (c *Client) ListPullRequestFiles(
	_ context.Context, repo domain.Repository, pr domain.PullRequest,
) driven.Iterator[domain.File] {
	owner, name := repo.Owner(), repo.ShortName()

	return NewPageIterator(FirstPage, func(ctx context.Context, page int) ([]domain.File, int, error) {
		client, err := c.ensureClient(ctx)
		if err != nil {
			return nil, 0, err
		}

		opts := &gh.ListOptions{Page: page, PerPage: c.cfg.perPage()}
		files, resp, err := retryOnRateLimit(ctx, c, fmt.Sprintf("list files of %s#%d", repo.Name, pr.Number), func() ([]*gh.CommitFile, *gh.Response, error) {
			return client.PullRequests.ListFiles(ctx, owner, name, pr.Number, opts)
		})
		if err != nil {
			return nil, 0, err
		}

		items := make([]domain.File, 0, len(files))
		for _, f := range files {
			items = append(items, domain.File{SHA: f.GetSHA(), Filename: f.GetFilename()})
		}
		return items, resp.NextPage, nil
	})
}
