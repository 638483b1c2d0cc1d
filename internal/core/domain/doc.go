// Package domain defines the core entities of prsync.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Repository: A GitHub repository identified by "owner/repo"
//   - PullRequest: A closed pull request and its transport-only fields
//   - File and Association: The files a pull request changed
//   - RunParams and Window: The inputs of a sync run and its retention window
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
