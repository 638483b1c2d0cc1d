package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var initDBCmd = &cobra.Command{
	Use:   "init-db",
	Short: "Create or upgrade the database schema",
	Long: `Applies the pending schema migrations for the configured database.
Safe to run repeatedly.`,
	Args: cobra.NoArgs,
	RunE: runInitDB,
}

func init() {
	rootCmd.AddCommand(initDBCmd)
}

func runInitDB(cmd *cobra.Command, _ []string) error {
	cfg, err := loadSettings()
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer a.close() //nolint:errcheck // migrations commit on their own

	v, err := a.migrate(cmd.Context())
	if err != nil {
		return fmt.Errorf("init-db failed: %w", err)
	}
	cmd.Printf("Database schema is at version %d (%s)\n", v, cfg.Database.Driver)
	return nil
}
