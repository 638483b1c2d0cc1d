package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/prsync/internal/adapters/driven/config/file"
)

// version is set at build time via SetVersion.
var version = "dev"

// Global flags.
var (
	configPath string
	verbose    bool
	logFormat  string
)

var rootCmd = &cobra.Command{
	Use:   "prsync",
	Short: "Synchronise closed GitHub pull requests into a database",
	Long: `prsync copies closed pull requests, and the files each one changed,
from the GitHub REST API into SQLite or PostgreSQL.

An incremental run purges and reloads the pull requests closed within the
trailing period; a full run purges and reloads everything.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", file.DefaultPath, "configuration file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: text or json")
}

// SetVersion sets the version reported by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
