package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/cli/appctx"
	"github.com/lherron/habitus/internal/events"
)

var backfillCmd = &cobra.Command{
	Use:   "backfill-goals",
	Short: "Assign tasks without a goal to their role's default goal",
	Long: `Backfill-goals upgrades stores written before tasks had goals. Every task
without a goal is assigned the default goal of its role. Tasks whose role has
no default goal are left unchanged and reported in the log.

Running it again once every task has a goal changes nothing.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.DefaultOptions(), runBackfill),
}

func init() {
	rootCmd.AddCommand(backfillCmd)
	addOutputFlags(backfillCmd)
}

func runBackfill(app *appctx.App, cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	changed, err := app.Engine(ctx, appctx.EngineOptions{}).MigrateTasksToGoals(ctx)

	run := events.Run{Kind: events.KindBackfill, Success: err == nil, Records: changed}
	if err != nil {
		run.Message = err.Error()
	}
	recordRun(app, cmd, run)

	if err != nil {
		return exitError(1, err)
	}

	result := struct {
		Changed int `json:"changed" yaml:"changed"`
	}{changed}
	return out.Render(result, []string{"FIELD", "VALUE"}, [][]string{{"changed", strconv.Itoa(changed)}})
}
