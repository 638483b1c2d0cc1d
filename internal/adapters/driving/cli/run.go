package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prsync/internal/connectors/github"
	"github.com/custodia-labs/prsync/internal/core/domain"
)

var (
	runOpts   runOptions
	cleanOpts runOptions
	loadOpts  runOptions
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Purge and reload pull requests",
	Long: `Runs the cleaner then the loader for every configured repository and
records the run. The loader only starts once the cleaner has finished.

Incremental runs cover pull requests closed within --period before
--reference-time; full runs cover every closed pull request.`,
	Args: cobra.NoArgs,
	RunE: runRun,
}

var cleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Purge the pull requests a load would rewrite",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPhase(cmd, &cleanOpts, domain.PhaseClean)
	},
}

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Fetch closed pull requests and their files",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runPhase(cmd, &loadOpts, domain.PhaseLoad)
	},
}

func init() {
	runOpts.register(runCmd)
	cleanOpts.register(cleanCmd)
	loadOpts.register(loadCmd)
	rootCmd.AddCommand(runCmd, cleanCmd, loadCmd)
}

// openFor loads configuration, resolves the run parameters and only then
// opens the store, so invalid input never touches the database.
func openFor(cmd *cobra.Command, opts *runOptions) (*app, domain.RunParams, error) {
	cfg, err := loadSettings()
	if err != nil {
		return nil, domain.RunParams{}, err
	}
	params, err := opts.params(cfg)
	if err != nil {
		return nil, domain.RunParams{}, err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return nil, domain.RunParams{}, err
	}
	return a, params, nil
}

func runRun(cmd *cobra.Command, _ []string) error {
	a, params, err := openFor(cmd, &runOpts)
	if err != nil {
		return err
	}
	defer a.close() //nolint:errcheck // read-only after the run

	cmd.Printf("Running %s sync of %d repositories...\n", params.LoadType, len(params.Repos))
	result, err := a.pipeline.Run(cmd.Context(), params)
	if result != nil {
		printReport(cmd, result.Report)
		cmd.Printf("Run %s %s in %s\n", result.Record.ID, status(result.Record), result.Record.Duration().Round(time.Millisecond))
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", explain(err))
	}
	return nil
}

func runPhase(cmd *cobra.Command, opts *runOptions, phase domain.Phase) error {
	a, params, err := openFor(cmd, opts)
	if err != nil {
		return err
	}
	defer a.close() //nolint:errcheck // read-only after the run

	var run func(context.Context, domain.RunParams) (domain.RunReport, error)
	switch phase {
	case domain.PhaseClean:
		run = a.orchestrator.Clean
	default:
		run = a.orchestrator.Load
	}

	report, err := run(cmd.Context(), params)
	printReport(cmd, report)
	if err != nil {
		return fmt.Errorf("%s failed: %w", phase, explain(err))
	}
	return nil
}

// explain adds a remedy to errors the user can fix in configuration.
func explain(err error) error {
	if github.IsUnauthorized(err) {
		return fmt.Errorf("%w (check the configured GitHub token or GITHUB_TOKEN)", err)
	}
	return err
}
