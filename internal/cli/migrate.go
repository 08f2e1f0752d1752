package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/cli/appctx"
	"github.com/lherron/habitus/internal/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run any pending database migrations",
	Long: `Migrate applies any pending SQL migrations to the device database.

Migrations are embedded in the habitus binary and tracked via the
schema_migrations table. Each migration file is applied exactly once, so
the command is safe to run multiple times.

Use --dry-run to see which migrations would be applied without running them.
Use --status to show the current migration status.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.Options{NeedsDB: false}, runMigrate),
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.Flags().Bool("dry-run", false, "Show which migrations would be applied without running them")
	migrateCmd.Flags().Bool("status", false, "Show current migration status")
}

func runMigrate(app *appctx.App, cmd *cobra.Command, args []string) error {
	dryRun, _ := cmd.Flags().GetBool("dry-run")
	status, _ := cmd.Flags().GetBool("status")
	w := cmd.OutOrStdout()

	database, err := db.Open(app.Config.DBPath)
	if err != nil {
		return exitError(1, fmt.Errorf("failed to open database: %w", err))
	}
	defer database.Close()

	if status {
		return showMigrationStatus(w, database)
	}
	if dryRun {
		return showPendingMigrations(w, database)
	}

	applied, err := database.MigrateWithInfo()
	if err != nil {
		return exitError(1, fmt.Errorf("failed to run migrations: %w", err))
	}
	app.Logger.Info().Strs("applied", applied).Str("db", database.Path()).Msg("migrations run")

	if len(applied) == 0 {
		fmt.Fprintln(w, "Database is up to date. No migrations to apply.")
		return nil
	}
	for _, m := range applied {
		fmt.Fprintf(w, "✓ Applied migration: %s\n", m)
	}
	fmt.Fprintf(w, "\nApplied %d migration(s).\n", len(applied))
	return nil
}

func showMigrationStatus(w io.Writer, database *db.DB) error {
	applied, pending, err := database.MigrationStatus()
	if err != nil {
		return exitError(1, fmt.Errorf("failed to get migration status: %w", err))
	}

	if len(applied) == 0 && len(pending) == 0 {
		fmt.Fprintln(w, "No migrations found.")
		return nil
	}

	if len(applied) > 0 {
		fmt.Fprintln(w, "Applied migrations:")
		for _, m := range applied {
			fmt.Fprintf(w, "  ✓ %s\n", m)
		}
	}
	if len(pending) > 0 {
		if len(applied) > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintln(w, "Pending migrations:")
		for _, m := range pending {
			fmt.Fprintf(w, "  ○ %s\n", m)
		}
	}
	return nil
}

func showPendingMigrations(w io.Writer, database *db.DB) error {
	_, pending, err := database.MigrationStatus()
	if err != nil {
		return exitError(1, fmt.Errorf("failed to get migration status: %w", err))
	}

	if len(pending) == 0 {
		fmt.Fprintln(w, "No pending migrations. Database is up to date.")
		return nil
	}

	fmt.Fprintln(w, "Pending migrations (would be applied):")
	for _, m := range pending {
		fmt.Fprintf(w, "  ○ %s\n", m)
	}
	fmt.Fprintf(w, "\nTotal: %d migration(s) would be applied.\n", len(pending))
	return nil
}
