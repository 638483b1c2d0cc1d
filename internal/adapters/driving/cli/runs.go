package cli

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/ports/driven"
)

var runsLimit int

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "Show recorded runs",
	Long: `Lists the most recent runs, newest first.
If a run ID is provided, shows that run in detail.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", driven.DefaultRunListLimit, "maximum number of runs to list")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.close() //nolint:errcheck // read-only

	if len(args) == 1 {
		run, err := a.runs.GetRun(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("get run %s: %w", args[0], err)
		}
		printRun(cmd, run)
		return nil
	}

	runs, err := a.runs.ListRuns(cmd.Context(), runsLimit)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	if len(runs) == 0 {
		cmd.Println("No runs recorded.")
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		rows = append(rows, []string{
			r.ID,
			string(r.LoadType),
			joinRepos(r.Repos),
			formatTime(r.StartedAt),
			r.Duration().Round(time.Second).String(),
			status(r),
			strconv.Itoa(r.PullRequests),
			strconv.Itoa(r.Files),
			strconv.FormatInt(r.Purged, 10),
		})
	}
	cmd.Println(renderTable(cmd.OutOrStderr(),
		[]string{"ID", "Load", "Repositories", "Started", "Duration", "Status", "Pull requests", "Files", "Purged"}, rows))
	return nil
}

func printRun(cmd *cobra.Command, r *domain.RunRecord) {
	cmd.Printf("ID:             %s\n", r.ID)
	cmd.Printf("Status:         %s\n", status(*r))
	cmd.Printf("Load type:      %s\n", r.LoadType)
	cmd.Printf("Repositories:   %s\n", joinRepos(r.Repos))
	cmd.Printf("Reference time: %s\n", formatTime(r.ReferenceTime))
	if r.Period > 0 {
		cmd.Printf("Period:         %s\n", r.Period)
	}
	cmd.Printf("Started:        %s\n", formatTime(r.StartedAt))
	cmd.Printf("Ended:          %s\n", formatTime(r.EndedAt))
	cmd.Printf("Purged:         %d\n", r.Purged)
	cmd.Printf("Pull requests:  %d\n", r.PullRequests)
	cmd.Printf("Files:          %d\n", r.Files)
	if r.Error != "" {
		cmd.Printf("Error:          %s\n", r.Error)
	}
}
