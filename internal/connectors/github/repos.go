package github

import (
	"context"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/prsync/internal/core/domain"
)

// GetRepository resolves an "owner/repo" name to its remote record.
func (c *Client) GetRepository(ctx context.Context, fullName string) (domain.Repository, error) {
	owner, name, err := domain.SplitRepoName(fullName)
	if err != nil {
		return domain.Repository{}, err
	}

	client, err := c.ensureClient(ctx)
	if err != nil {
		return domain.Repository{}, err
	}

	repo, _, err := retryOnRateLimit(ctx, c, "get repo "+fullName, func() (*gh.Repository, *gh.Response, error) {
		return client.Repositories.Get(ctx, owner, name)
	})
	if err != nil {
		return domain.Repository{}, err
	}
	return toRepository(repo, fullName), nil
}

// toRepository maps the API record. The configured name is kept when the
// payload omits full_name.
func toRepository(repo *gh.Repository, fallbackName string) domain.Repository {
	name := repo.GetFullName()
	if name == "" {
		name = fallbackName
	}
	return domain.Repository{ID: repo.GetID(), Name: name}
}
