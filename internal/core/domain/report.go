package domain

import "time"

// StopReason records why a pull request walk ended.
type StopReason string

const (
	// StopNone means the walk did not run.
	StopNone StopReason = ""

	// StopPredicate means an item fell before the window and ended the walk.
	StopPredicate StopReason = "predicate"

	// StopExhausted means the listing ran out of items.
	StopExhausted StopReason = "exhausted"
)

// RepoReport counts what a run did for one repository.
type RepoReport struct {
	Repo         string
	Purged       int64
	PullRequests int
	Skipped      int
	Files        int
	Pages        int
	Stop         StopReason
}

// RunReport aggregates the per-repository reports of a phase or run.
type RunReport struct {
	LoadType      LoadType
	ReferenceTime time.Time
	Repos         []RepoReport
}

// Repo returns the report for name, adding an empty one when missing.
func (r *RunReport) Repo(name string) *RepoReport {
	for i := range r.Repos {
		if r.Repos[i].Repo == name {
			return &r.Repos[i]
		}
	}
	r.Repos = append(r.Repos, RepoReport{Repo: name})
	return &r.Repos[len(r.Repos)-1]
}

// Merge folds other into r, repository by repository.
func (r *RunReport) Merge(other RunReport) {
	for _, o := range other.Repos {
		rr := r.Repo(o.Repo)
		rr.Purged += o.Purged
		rr.PullRequests += o.PullRequests
		rr.Skipped += o.Skipped
		rr.Files += o.Files
		rr.Pages += o.Pages
		if o.Stop != StopNone {
			rr.Stop = o.Stop
		}
	}
}

// Totals sums the counters across repositories.
func (r RunReport) Totals() RepoReport {
	var t RepoReport
	for _, rr := range r.Repos {
		t.Purged += rr.Purged
		t.PullRequests += rr.PullRequests
		t.Skipped += rr.Skipped
		t.Files += rr.Files
		t.Pages += rr.Pages
	}
	return t
}

// RunResult is what a pipeline run returns: the persisted record and the
// per-repository detail behind its totals.
type RunResult struct {
	Record RunRecord
	Report RunReport
}
