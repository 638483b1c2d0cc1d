package domain

import "errors"

// Domain errors represent business logic failures.
// These are distinct from infrastructure errors.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// Configuration Errors.
	// These are fatal and surface before any network or storage call.

	// ErrInvalidLoadType indicates a load type other than incremental or full.
	ErrInvalidLoadType = errors.New("load type is not allowed")

	// ErrInvalidRepos indicates the repositories value is not a list of owner/repo names.
	ErrInvalidRepos = errors.New("repositories value should be a list of owner/repo names")

	// ErrInvalidPeriod indicates a malformed or non-positive incremental period.
	ErrInvalidPeriod = errors.New("invalid period")

	// Run Errors.

	// ErrRunInProgress indicates a sync run is already active.
	ErrRunInProgress = errors.New("sync run in progress")

	// Authentication Errors.

	// ErrAuthRequired indicates the API connection profile has no usable credentials.
	ErrAuthRequired = errors.New("authentication required")

	// Connector Errors.

	// ErrRateLimited indicates the API rate limit was exceeded.
	ErrRateLimited = errors.New("rate limited")
)
