package cli

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "habitus",
	Short: "Back up, restore and upgrade Habitus data",
	Long: `habitus manages the data of a Habitus device store: tasks, roles, goals,
weekly metrics, the completed-task log, ideas and preferences.

Backups are single CSV files that can be moved to another device and
imported there. Every import takes a safety backup of the current data first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to subcommands.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to database file (overrides HABITUS_DB_PATH)")
	rootCmd.PersistentFlags().String("backup-dir", "", "Directory backups are written to (overrides HABITUS_BACKUP_DIR)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn, error (overrides HABITUS_LOG_LEVEL)")
}
