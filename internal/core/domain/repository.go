package domain

import (
	"fmt"
	"strings"
)

// Repository is a remote repository whose pull requests are synchronised.
// Rows are created on first sight and never updated afterwards.
type Repository struct {
	// ID is the remote numeric repository ID (primary key).
	ID int64

	// Name is the full "owner/repo" name.
	Name string
}

// Owner returns the owner part of the repository name.
func (r Repository) Owner() string {
	owner, _, _ := strings.Cut(r.Name, "/")
	return owner
}

// ShortName returns the repository part of the full name.
func (r Repository) ShortName() string {
	_, name, _ := strings.Cut(r.Name, "/")
	return name
}

// SplitRepoName splits an "owner/repo" name into its two parts.
// Names with an empty part, whitespace or more than one slash are rejected.
func SplitRepoName(name string) (owner, repo string, err error) {
	owner, repo, ok := strings.Cut(name, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") || strings.ContainsAny(name, " \t\r\n") {
		return "", "", fmt.Errorf("%w: %q", ErrInvalidRepos, name)
	}
	return owner, repo, nil
}
