package domain

import "time"

// UnknownFileCount marks a pull request whose listing payload did not report
// how many files it changed. The file listing is consulted in that case.
const UnknownFileCount = -1

// PullRequest is a closed pull request of a Repository.
// Rows are insert-only; a pull request relabelled upstream is not reflected.
type PullRequest struct {
	// ID is the remote numeric pull request ID (primary key).
	ID int64

	// Number is the per-repository pull request number.
	// Used to address the file listing; not persisted.
	Number int

	// Title is the pull request title.
	Title string

	// Merged reports whether the pull request was merged before closing.
	Merged bool

	// CreatedAt is when the pull request was opened.
	CreatedAt time.Time

	// ClosedAt is when the pull request was closed.
	ClosedAt time.Time

	// UpdatedAt is the server-side ordering key of the closed listing.
	// Zero when the source does not report it; not persisted.
	UpdatedAt time.Time

	// RepoID references the owning Repository.
	RepoID int64

	// ChangedFiles is the number of files changed, or UnknownFileCount.
	// Not persisted.
	ChangedFiles int
}

// OrderKey returns the timestamp the source orders the closed listing by.
func (p PullRequest) OrderKey() time.Time {
	if p.UpdatedAt.IsZero() {
		return p.ClosedAt
	}
	return p.UpdatedAt
}

// HasFiles reports whether the file listing should be fetched.
func (p PullRequest) HasFiles() bool {
	return p.ChangedFiles != 0
}

// File is a file version touched by one or more pull requests.
// Files are keyed by content hash and shared across pull requests.
type File struct {
	// SHA is the content hash (primary key).
	SHA string

	// Filename is the path of the file when first seen.
	Filename string
}

// Association links a PullRequest to a File version it touched.
type Association struct {
	PullRequestID int64
	FileSHA       string
}

// StoreTime normalises a timestamp to the precision and zone it is persisted with.
func StoreTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
