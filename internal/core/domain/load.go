package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// LoadType selects how much history a run synchronises.
type LoadType string

const (
	// LoadIncremental syncs pull requests closed within the trailing period.
	LoadIncremental LoadType = "incremental"

	// LoadFull syncs every pull request after purging prior rows.
	LoadFull LoadType = "full"
)

// DefaultPeriod is the incremental window when none is configured.
const DefaultPeriod = 24 * time.Hour

// DefaultReposSeparator separates repository names in a delimited string.
const DefaultReposSeparator = ","

// LoadTypes returns the recognised load types.
func LoadTypes() []LoadType {
	return []LoadType{LoadIncremental, LoadFull}
}

// ParseLoadType validates a load type string.
func ParseLoadType(s string) (LoadType, error) {
	lt := LoadType(s)
	if !lt.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidLoadType, s)
	}
	return lt, nil
}

// IsValid reports whether the load type is one of LoadTypes.
func (t LoadType) IsValid() bool {
	switch t {
	case LoadIncremental, LoadFull:
		return true
	}
	return false
}

// String returns the string form of the load type.
func (t LoadType) String() string {
	return string(t)
}

// ParseRepos normalises a repositories value into an ordered list of names.
//
// The value may be a string delimited by sep (DefaultReposSeparator when empty),
// a []string, or a []any holding only strings, as decoded from configuration.
// Surrounding whitespace is trimmed. Any other value, an empty result or a
// name that is not "owner/repo" is rejected with ErrInvalidRepos.
func ParseRepos(value any, sep string) ([]string, error) {
	if sep == "" {
		sep = DefaultReposSeparator
	}

	var raw []string
	switch v := value.(type) {
	case string:
		raw = strings.Split(v, sep)
	case []string:
		raw = v
	case []any:
		raw = make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("%w: %v", ErrInvalidRepos, value)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("%w: %v", ErrInvalidRepos, value)
	}

	repos := make([]string, 0, len(raw))
	for _, name := range raw {
		name = strings.TrimSpace(name)
		if _, _, err := SplitRepoName(name); err != nil {
			return nil, err
		}
		repos = append(repos, name)
	}
	if len(repos) == 0 {
		return nil, fmt.Errorf("%w: no repositories given", ErrInvalidRepos)
	}
	return repos, nil
}

// ParsePeriod parses an incremental period. Besides time.ParseDuration
// syntax it accepts a whole number of days such as "7d".
// An empty string yields DefaultPeriod.
func ParsePeriod(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultPeriod, nil
	}

	var d time.Duration
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
		}
		d = time.Duration(n) * 24 * time.Hour
	} else {
		parsed, err := time.ParseDuration(s)
		if err != nil {
			return 0, fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
		}
		d = parsed
	}

	if d <= 0 {
		return 0, fmt.Errorf("%w: %q must be positive", ErrInvalidPeriod, s)
	}
	return d, nil
}

// RunParams are the fully resolved inputs of one sync run.
type RunParams struct {
	// LoadType selects incremental or full mode.
	LoadType LoadType

	// Repos are the "owner/repo" names, processed in order.
	Repos []string

	// ReferenceTime is "now" for the run, injected for determinism and backfills.
	ReferenceTime time.Time

	// Period is the trailing window of an incremental run.
	// Zero means DefaultPeriod. Ignored by full runs.
	Period time.Duration
}

// Validate checks the parameters before any side effect is performed.
func (p RunParams) Validate() error {
	if !p.LoadType.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidLoadType, p.LoadType)
	}
	if len(p.Repos) == 0 {
		return fmt.Errorf("%w: no repositories given", ErrInvalidRepos)
	}
	for _, name := range p.Repos {
		if _, _, err := SplitRepoName(name); err != nil {
			return err
		}
	}
	if p.ReferenceTime.IsZero() {
		return fmt.Errorf("%w: reference time is required", ErrInvalidInput)
	}
	if p.Period < 0 {
		return fmt.Errorf("%w: %s must be positive", ErrInvalidPeriod, p.Period)
	}
	return nil
}

// EffectivePeriod returns the period, defaulted.
func (p RunParams) EffectivePeriod() time.Duration {
	if p.Period == 0 {
		return DefaultPeriod
	}
	return p.Period
}

// Window returns the retention window of the run.
func (p RunParams) Window() Window {
	if p.LoadType == LoadFull {
		return Window{Unbounded: true}
	}
	return Window{Cutoff: StoreTime(p.ReferenceTime.Add(-p.EffectivePeriod()))}
}

// Window bounds which closed pull requests a run covers.
type Window struct {
	// Cutoff is reference time minus period. Pull requests closed at or after it are in.
	Cutoff time.Time

	// Unbounded covers all history (full load).
	Unbounded bool
}

// Contains reports whether a pull request belongs to the window.
func (w Window) Contains(pr PullRequest) bool {
	return w.Unbounded || !pr.ClosedAt.Before(w.Cutoff)
}

// Exhausted reports whether the walk can stop at this pull request: its
// ordering key is strictly earlier than the cutoff, so it and everything
// after it in the descending listing were closed before the window.
func (w Window) Exhausted(pr PullRequest) bool {
	return !w.Unbounded && pr.OrderKey().Before(w.Cutoff)
}

// Phase distinguishes the two halves of a run.
type Phase string

const (
	// PhaseClean purges rows that are about to be reloaded.
	PhaseClean Phase = "clean"

	// PhaseLoad fetches pull requests and upserts them.
	PhaseLoad Phase = "load"
)
