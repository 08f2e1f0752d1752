package cli

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/cli/appctx"
	"github.com/lherron/habitus/internal/delivery"
	"github.com/lherron/habitus/internal/events"
	"github.com/lherron/habitus/internal/migration"
	"github.com/lherron/habitus/internal/render"
)

var importCmd = &cobra.Command{
	Use:   "import [FILE]",
	Short: "Replace the store with the contents of a backup",
	Long: `Import reads a CSV backup and replaces the current store with it.

The summary of the backup is shown and must be confirmed (use --yes to skip
the prompt). A safety backup of the current data is written to the backup
directory before anything is overwritten. Rows that cannot be read are
skipped and reported; files from an incompatible format version are refused.

Use --latest to import the newest backup in the backup directory, and
--dry-run to see what would change without writing anything. Safety backups
are never picked by --latest; import them by file name.

After a successful import every task without a goal is assigned the default
goal of its role (see backfill-goals), so tasks restored from an older backup
may differ from the file.`,
	Args: cobra.MaximumNArgs(1),
	RunE: appctx.WithApp(appctx.DefaultOptions(), runImport),
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().Bool("latest", false, "Import the newest backup in the backup directory")
	importCmd.Flags().BoolP("yes", "y", false, "Do not ask for confirmation")
	importCmd.Flags().Bool("dry-run", false, "Show per-key differences without importing")
	addOutputFlags(importCmd)
}

func runImport(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	latest, _ := cmd.Flags().GetBool("latest")
	yes, _ := cmd.Flags().GetBool("yes")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var source string
	switch {
	case len(args) == 1 && latest:
		return exitError(2, errors.New("pass a FILE or --latest, not both"))
	case len(args) == 1:
		source = args[0]
	case latest:
		found, err := delivery.LatestBackup(app.Config.BackupDir, migration.DefaultProduct)
		if err != nil {
			return exitError(1, err)
		}
		source = found
	default:
		return exitError(2, errors.New("no backup given (pass a FILE or --latest)"))
	}

	out, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	engine := app.Engine(ctx, appctx.EngineOptions{AssumeYes: yes, Notices: cmd.ErrOrStderr()})

	if dryRun {
		d, err := engine.Load(ctx, source)
		if err != nil {
			return exitError(1, err)
		}
		diffs, err := engine.Preview(ctx, d)
		if err != nil {
			return exitError(1, err)
		}
		return renderPreview(out, cmd, d, diffs)
	}

	result := engine.Import(ctx, source)

	recordRun(app, cmd, events.Run{
		Kind:    events.KindImport,
		Success: result.Success,
		File:    source,
		Records: importedRecords(result.Summary),
		Message: importMessage(result),
	})

	if err := out.Render(result, []string{"FIELD", "VALUE"}, importRows(result)); err != nil {
		return err
	}

	switch {
	case result.Cancelled:
		return nil
	case !result.Success:
		return exitError(1, errors.New(result.Error))
	}
	return nil
}

func renderPreview(out *render.Renderer, cmd *cobra.Command, d *migration.Decoded, diffs []migration.KeyDiff) error {
	rows := make([][]string, 0, len(diffs))
	for _, kd := range diffs {
		rows = append(rows, []string{kd.Key, strconv.FormatBool(kd.Changed)})
	}

	payload := struct {
		Summary migration.Summary   `json:"summary" yaml:"summary"`
		Skipped int                 `json:"skipped_rows" yaml:"skipped_rows"`
		Keys    []migration.KeyDiff `json:"keys" yaml:"keys"`
	}{d.Summary(), d.Skipped, diffs}

	if err := out.Render(payload, []string{"KEY", "CHANGED"}, rows); err != nil {
		return err
	}

	// Unified diffs follow the table for humans
	if j, _ := cmd.Flags().GetBool("json"); j {
		return nil
	}
	if y, _ := cmd.Flags().GetBool("yaml"); y {
		return nil
	}
	if p, _ := cmd.Flags().GetBool("porcelain"); p {
		return nil
	}
	for _, kd := range diffs {
		if kd.Changed {
			fmt.Fprintln(cmd.OutOrStdout())
			fmt.Fprint(cmd.OutOrStdout(), kd.Diff)
		}
	}
	return nil
}

func importRows(r migration.ImportResult) [][]string {
	if r.Cancelled {
		return [][]string{{"status", "cancelled"}}
	}
	if !r.Success {
		rows := [][]string{{"error", r.Error}}
		if r.Kind != "" {
			rows = append(rows, []string{"kind", string(r.Kind)})
		}
		if len(r.Written) > 0 {
			rows = append(rows, []string{"written", strings.Join(r.Written, ",")})
		}
		return rows
	}

	s := r.Summary
	rows := [][]string{
		{"source", r.Source},
		{"version", r.Version},
		{"tasks", strconv.Itoa(s.Tasks)},
		{"roles", strconv.Itoa(s.Roles)},
		{"goals", strconv.Itoa(s.Goals)},
		{"metrics", strconv.Itoa(s.Metrics)},
		{"completed_tasks", strconv.Itoa(s.CompletedTasks)},
		{"checkin", strconv.FormatBool(s.CheckIn)},
		{"ideas", strconv.Itoa(s.Ideas)},
		{"settings", strconv.Itoa(s.Settings)},
		{"skipped_rows", strconv.Itoa(r.Skipped)},
	}
	if r.BackupPath != "" {
		rows = append(rows, []string{"safety_backup", r.BackupPath})
	}
	for _, w := range r.Warnings {
		rows = append(rows, []string{"warning", w})
	}
	return rows
}

func importedRecords(s migration.Summary) int {
	n := s.Tasks + s.Roles + s.Goals + s.Metrics + s.CompletedTasks + s.Ideas + s.Settings
	if s.CheckIn {
		n++
	}
	return n
}

func importMessage(r migration.ImportResult) string {
	switch {
	case r.Cancelled:
		return "cancelled"
	case r.Error != "":
		return r.Error
	case r.Skipped > 0:
		return fmt.Sprintf("%d rows skipped", r.Skipped)
	}
	return ""
}
