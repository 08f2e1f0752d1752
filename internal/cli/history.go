package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/cli/appctx"
	"github.com/lherron/habitus/internal/events"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past exports, imports and backfills",
	Args:  cobra.NoArgs,
	RunE:  appctx.WithApp(appctx.DefaultOptions(), runHistory),
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().String("kind", "", "Only show runs of this kind (export, import, backfill)")
	historyCmd.Flags().Int("limit", 20, "Maximum number of runs to show (0 for all)")
	addOutputFlags(historyCmd)
}

func runHistory(app *appctx.App, cmd *cobra.Command, args []string) error {
	kind, _ := cmd.Flags().GetString("kind")
	limit, _ := cmd.Flags().GetInt("limit")

	out, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	runs, err := app.Runs.ListRuns(cmd.Context(), events.Kind(kind), limit)
	if err != nil {
		return exitError(1, err)
	}
	if runs == nil {
		runs = []events.Run{}
	}

	rows := make([][]string, 0, len(runs))
	for _, r := range runs {
		status := "ok"
		if !r.Success {
			status = "failed"
		}
		rows = append(rows, []string{
			strconv.FormatInt(r.ID, 10),
			r.Timestamp,
			string(r.Kind),
			status,
			strconv.Itoa(r.Records),
			r.File,
			r.Message,
		})
	}

	return out.Render(runs, []string{"ID", "TIME", "KIND", "STATUS", "RECORDS", "FILE", "MESSAGE"}, rows)
}
