package cli

import (
	"errors"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/cli/appctx"
	"github.com/lherron/habitus/internal/events"
	"github.com/lherron/habitus/internal/migration"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write a complete backup of the store",
	Long: `Export writes every task, role, goal, metric, logged task, check-in,
idea and preference into a single CSV backup named
habitus_complete_backup_<YYYY-MM-DD>.csv in the backup directory.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runExport),
}

func init() {
	rootCmd.AddCommand(exportCmd)
	addOutputFlags(exportCmd)
}

func runExport(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	engine := app.Engine(ctx, appctx.EngineOptions{Notices: cmd.ErrOrStderr()})
	result := engine.Export(ctx)

	recordRun(app, cmd, events.Run{
		Kind:    events.KindExport,
		Success: result.Success,
		File:    result.Path,
		Records: result.TotalRecords,
		Message: result.Error,
	})

	if err := out.Render(result, []string{"FIELD", "VALUE"}, exportRows(result)); err != nil {
		return err
	}
	if !result.Success {
		return exitError(1, errors.New(result.Error))
	}
	return nil
}

func exportRows(r migration.ExportResult) [][]string {
	if !r.Success {
		return [][]string{{"error", r.Error}}
	}
	return [][]string{
		{"file", r.Path},
		{"records", strconv.Itoa(r.TotalRecords)},
		{"sections", strconv.Itoa(r.Sections)},
		{"revision", r.SnapshotRev},
	}
}

// recordRun appends to the run history. History is informational, so a
// failure is logged and otherwise ignored.
func recordRun(app *appctx.App, cmd *cobra.Command, run events.Run) {
	if _, err := app.Runs.LogRun(cmd.Context(), run); err != nil {
		app.Logger.Warn().Err(err).Str("kind", string(run.Kind)).Msg("failed to record run")
	}
}
