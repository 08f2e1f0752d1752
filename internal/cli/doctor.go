package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/cli/appctx"
	"github.com/lherron/habitus/internal/db"
	"github.com/lherron/habitus/internal/delivery"
	"github.com/lherron/habitus/internal/domain"
	"github.com/lherron/habitus/internal/kvstore"
	"github.com/lherron/habitus/internal/migration"
)

var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Check the database, stored data and backup directory",
	Long: `Doctor checks that the database is reachable and migrated, that every
stored collection can be read (so export will succeed), whether tasks are
waiting for the goal backfill, and that the backup directory is writable.`,
	Args: cobra.NoArgs,
	RunE: appctx.WithApp(appctx.Options{NeedsDB: false}, runDoctor),
}

type checkResult struct {
	Name    string `json:"name" yaml:"name"`
	Status  string `json:"status" yaml:"status"` // "ok", "warning", "error"
	Message string `json:"message,omitempty" yaml:"message,omitempty"`
}

type doctorReport struct {
	DBPath        string        `json:"db_path" yaml:"db_path"`
	BackupDir     string        `json:"backup_dir" yaml:"backup_dir"`
	Checks        []checkResult `json:"checks" yaml:"checks"`
	Warnings      int           `json:"warnings" yaml:"warnings"`
	Errors        int           `json:"errors" yaml:"errors"`
	OverallStatus string        `json:"overall_status" yaml:"overall_status"`
}

func init() {
	rootCmd.AddCommand(doctorCmd)
	addOutputFlags(doctorCmd)
}

func runDoctor(app *appctx.App, cmd *cobra.Command, args []string) error {
	out, err := renderer(app, cmd)
	if err != nil {
		return err
	}

	report := &doctorReport{
		DBPath:        app.Config.DBPath,
		BackupDir:     app.Config.BackupDir,
		Checks:        []checkResult{},
		OverallStatus: "ok",
	}

	if _, err := os.Stat(app.Config.DBPath); err != nil {
		report.add("db_file", "error", fmt.Sprintf("Database file not found: %s", app.Config.DBPath))
	} else if database, err := db.Open(app.Config.DBPath); err != nil {
		report.add("db_open", "error", fmt.Sprintf("Failed to open database: %v", err))
	} else {
		defer database.Close()
		checkDatabase(cmd, app, database, report)
	}

	checkBackupDir(app.Config.BackupDir, report)

	if err := out.Render(report, []string{"CHECK", "STATUS", "MESSAGE"}, report.rows()); err != nil {
		return err
	}

	if report.Errors > 0 {
		return exitError(1, fmt.Errorf("doctor found %d error(s)", report.Errors))
	}
	return nil
}

func checkDatabase(cmd *cobra.Command, app *appctx.App, database *db.DB, report *doctorReport) {
	var integrity string
	if err := database.QueryRow("PRAGMA integrity_check").Scan(&integrity); err != nil || integrity != "ok" {
		report.add("integrity", "error", fmt.Sprintf("Database integrity check failed: %s %v", integrity, err))
	} else {
		report.add("integrity", "ok", "Database integrity check passed")
	}

	if err := database.RequiresMigrationError(); err != nil {
		report.add("schema", "error", err.Error())
		return
	}
	report.add("schema", "ok", "Schema is up to date")

	ctx := cmd.Context()
	engine := migration.New(kvstore.NewSQLite(database), migration.Options{Logger: &app.Logger})
	snap, err := engine.PrepareSnapshot(ctx)
	if err != nil {
		report.add("store", "error", fmt.Sprintf("Stored data cannot be exported: %v", err))
		return
	}
	s := snap.Summary()
	report.add("store", "ok", fmt.Sprintf("%d tasks, %d roles, %d goals, %d ideas", s.Tasks, s.Roles, s.Goals, s.Ideas))

	pending, orphaned := 0, 0
	for _, t := range snap.Tasks {
		if t.HasGoal() {
			continue
		}
		if _, ok := domain.DefaultGoalForRole(snap.Goals, t.Role); ok {
			pending++
		} else {
			orphaned++
		}
	}
	switch {
	case pending > 0:
		report.add("goal_backfill", "warning", fmt.Sprintf("%d task(s) can be assigned a default goal; run 'habitus backfill-goals'", pending))
	case orphaned > 0:
		report.add("goal_backfill", "warning", fmt.Sprintf("%d task(s) have no goal and their role has no default goal", orphaned))
	default:
		report.add("goal_backfill", "ok", "Every task has a goal")
	}
}

func checkBackupDir(dir string, report *doctorReport) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		report.add("backup_dir", "error", fmt.Sprintf("Backup directory cannot be created: %v", err))
		return
	}
	probe, err := os.CreateTemp(dir, ".doctor-*")
	if err != nil {
		report.add("backup_dir", "error", fmt.Sprintf("Backup directory is not writable: %v", err))
		return
	}
	probe.Close()
	os.Remove(probe.Name())
	report.add("backup_dir", "ok", fmt.Sprintf("Backup directory is writable: %s", dir))

	latest, err := delivery.LatestBackup(dir, migration.DefaultProduct)
	switch {
	case errors.Is(err, delivery.ErrNoBackups):
		report.add("latest_backup", "warning", "No backups yet; run 'habitus export'")
	case err != nil:
		report.add("latest_backup", "warning", err.Error())
	default:
		report.add("latest_backup", "ok", fmt.Sprintf("Latest backup: %s", filepath.Base(latest)))
	}
}

func (r *doctorReport) add(name, status, message string) {
	r.Checks = append(r.Checks, checkResult{Name: name, Status: status, Message: message})
	switch status {
	case "warning":
		r.Warnings++
		if r.OverallStatus == "ok" {
			r.OverallStatus = "warning"
		}
	case "error":
		r.Errors++
		r.OverallStatus = "error"
	}
}

func (r *doctorReport) rows() [][]string {
	rows := make([][]string, 0, len(r.Checks))
	for _, c := range r.Checks {
		rows = append(rows, []string{c.Name, c.Status, c.Message})
	}
	return rows
}

