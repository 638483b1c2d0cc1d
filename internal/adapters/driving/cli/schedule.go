package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prsync/internal/adapters/driven/config/file"
	"github.com/custodia-labs/prsync/internal/core/domain"
	"github.com/custodia-labs/prsync/internal/core/services"
	"github.com/custodia-labs/prsync/internal/logger"
)

var (
	scheduleOpts      runOptions
	scheduleEvery     time.Duration
	scheduleSkipStart bool
	scheduleWatchFile bool
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run syncs periodically",
	Long: `Runs the clean and load pipeline every interval until interrupted.
Each run uses its trigger time as reference time. A trigger that fires
while a run is still active is skipped.

With --watch, changes to the sync section of the configuration file are
picked up before the next run.`,
	Args: cobra.NoArgs,
	RunE: runSchedule,
}

func init() {
	scheduleOpts.registerSync(scheduleCmd)
	scheduleCmd.Flags().DurationVar(&scheduleEvery, "every", 0, "interval between runs (default from config, 24h)")
	scheduleCmd.Flags().BoolVar(&scheduleSkipStart, "no-run-on-start", false, "wait a full interval before the first run")
	scheduleCmd.Flags().BoolVar(&scheduleWatchFile, "watch", false, "reload the configuration file when it changes")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	// Fail before scheduling anything if the sync settings are unusable.
	if _, err := scheduleOpts.params(cfg); err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.close() //nolint:errcheck // runs commit on their own

	schedule := cfg.Schedule
	if scheduleEvery > 0 {
		schedule.Interval = scheduleEvery
	}
	if scheduleSkipStart {
		schedule.RunOnStart = false
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var current atomic.Pointer[file.Config]
	current.Store(&cfg)
	if scheduleWatchFile {
		err := file.Watch(ctx, configPath, func() {
			reloaded, err := loadConfig(configPath)
			if err != nil {
				logger.Warn("Keeping previous configuration: %v", err)
				return
			}
			if _, err := scheduleOpts.params(reloaded); err != nil {
				logger.Warn("Keeping previous configuration: %v", err)
				return
			}
			current.Store(&reloaded)
			logger.Info("Reloaded sync configuration from %s", configPath)
		})
		if err != nil {
			return err
		}
	}

	params := func(ref time.Time) domain.RunParams {
		cfg, err := scheduleOpts.apply(*current.Load())
		if err == nil {
			var p domain.RunParams
			if p, err = cfg.RunParams(ref); err == nil {
				return p
			}
		}
		// The pipeline rejects the incomplete parameters and the scheduler logs it.
		logger.Error("Resolve run parameters: %v", err)
		return domain.RunParams{ReferenceTime: ref}
	}

	cmd.Printf("Scheduling runs every %s. Press Ctrl+C to stop.\n", schedule.Interval)
	scheduler := services.NewScheduler(schedule, a.pipeline, params)
	if err := scheduler.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	cmd.Println("Scheduler stopped.")
	return nil
}
