package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/prsync/internal/core/domain"
)

// runOptions are the flags shared by the commands that start a run.
// Set flags override the configuration file.
type runOptions struct {
	loadType  string
	repos     string
	reposSep  string
	period    string
	reference string
}

func (o *runOptions) register(cmd *cobra.Command) {
	o.registerSync(cmd)
	cmd.Flags().StringVar(&o.reference, "reference-time", "", "RFC 3339 time the window ends at (default now)")
}

// registerSync registers the flags that select what to sync.
func (o *runOptions) registerSync(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&o.loadType, "load-type", "t", "", "incremental or full (default from config)")
	cmd.Flags().StringVarP(&o.repos, "repos", "r", "", "repositories as owner/repo, separated by --repos-sep")
	cmd.Flags().StringVar(&o.reposSep, "repos-sep", "", "separator for --repos (default \",\")")
	cmd.Flags().StringVarP(&o.period, "period", "p", "", "incremental window, e.g. 24h or 7d")
}

// apply overlays the flags on cfg.
func (o *runOptions) apply(cfg file.Config) (file.Config, error) {
	if o.loadType != "" {
		lt, err := domain.ParseLoadType(o.loadType)
		if err != nil {
			return cfg, err
		}
		cfg.Sync.LoadType = lt
	}
	if o.repos != "" {
		cfg.Sync.Repos = o.repos
	}
	if o.reposSep != "" {
		cfg.Sync.ReposSep = o.reposSep
	}
	if o.period != "" {
		p, err := domain.ParsePeriod(o.period)
		if err != nil {
			return cfg, err
		}
		cfg.Sync.Period = p
	}
	return cfg, nil
}

// referenceTime returns the --reference-time value, or now.
func (o *runOptions) referenceTime() (time.Time, error) {
	if o.reference == "" {
		return now(), nil
	}
	ref, err := time.Parse(time.RFC3339, o.reference)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: reference time %q is not RFC 3339", domain.ErrInvalidInput, o.reference)
	}
	return ref, nil
}

// params resolves the run parameters from cfg and the flags.
func (o *runOptions) params(cfg file.Config) (domain.RunParams, error) {
	cfg, err := o.apply(cfg)
	if err != nil {
		return domain.RunParams{}, err
	}
	ref, err := o.referenceTime()
	if err != nil {
		return domain.RunParams{}, err
	}
	return cfg.RunParams(ref)
}
