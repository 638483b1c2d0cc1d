package domain

import "time"

// RunRecord is the persisted outcome of one pipeline run.
type RunRecord struct {
	// ID is the unique identifier (UUID).
	ID string

	// LoadType is the mode the run used.
	LoadType LoadType

	// Repos are the repositories the run targeted.
	Repos []string

	// ReferenceTime is the "now" the run was computed against.
	ReferenceTime time.Time

	// Period is the incremental window. Zero for full runs.
	Period time.Duration

	// StartedAt is when the run started.
	StartedAt time.Time

	// EndedAt is when the run completed.
	EndedAt time.Time

	// Success indicates whether the run completed without error.
	Success bool

	// Error contains the error message if Success is false.
	Error string

	// PullRequests is the number of pull requests written.
	PullRequests int

	// Files is the number of file associations written.
	Files int

	// Purged is the number of pull request rows deleted by the cleaner.
	Purged int64
}

// Duration returns how long the run took.
func (r RunRecord) Duration() time.Duration {
	if r.EndedAt.IsZero() {
		return 0
	}
	return r.EndedAt.Sub(r.StartedAt)
}

// ScheduleConfig holds scheduler configuration.
type ScheduleConfig struct {
	// Interval defines how often the pipeline runs.
	Interval time.Duration

	// RunOnStart triggers a run immediately instead of waiting a full interval.
	RunOnStart bool
}

// DefaultScheduleConfig returns a daily schedule.
func DefaultScheduleConfig() ScheduleConfig {
	return ScheduleConfig{
		Interval:   24 * time.Hour,
		RunOnStart: true,
	}
}
