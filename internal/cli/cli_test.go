package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/habitus/internal/db"
	"github.com/lherron/habitus/internal/events"
	"github.com/lherron/habitus/internal/kvstore"
	"github.com/lherron/habitus/internal/migration"
	"github.com/lherron/habitus/internal/testutil"
)

type testEnv struct {
	dir       string
	dbPath    string
	backupDir string
}

// setupTestEnv points the CLI at a migrated database and backup directory
// inside a temp dir.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	dir := t.TempDir()
	env := &testEnv{
		dir:       dir,
		dbPath:    filepath.Join(dir, "habitus.db"),
		backupDir: filepath.Join(dir, "backups"),
	}

	t.Setenv("HOME", dir)
	t.Setenv("HABITUS_DB_PATH", env.dbPath)
	t.Setenv("HABITUS_BACKUP_DIR", env.backupDir)
	t.Setenv("HABITUS_LOG_FILE", filepath.Join(dir, "habitus.log"))
	t.Setenv("HABITUS_LOG_LEVEL", "debug")
	t.Setenv("HABITUS_OUTPUT", "table")
	t.Setenv("HABITUS_LANG", "en")
	t.Chdir(dir)

	_, _, err := execute(t, "migrate")
	require.NoError(t, err)
	return env
}

// execute runs the root command with fresh flag values.
func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	resetFlags(rootCmd)

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)

	err := rootCmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// seedStore writes raw values into the test database.
func seedStore(t *testing.T, env *testEnv, values map[string]string) {
	t.Helper()
	database, err := db.Open(env.dbPath)
	require.NoError(t, err)
	defer database.Close()

	store := kvstore.NewSQLite(database)
	for k, v := range values {
		require.NoError(t, store.Set(context.Background(), k, v))
	}
}

func readStore(t *testing.T, env *testEnv, key string) (string, bool) {
	t.Helper()
	database, err := db.Open(env.dbPath)
	require.NoError(t, err)
	defer database.Close()

	v, ok, err := kvstore.NewSQLite(database).Get(context.Background(), key)
	require.NoError(t, err)
	return v, ok
}

func TestMigrateCommand(t *testing.T) {
	setupTestEnv(t)

	out, _, err := execute(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "Database is up to date")

	out, _, err = execute(t, "migrate", "--status")
	require.NoError(t, err)
	assert.Contains(t, out, "000001_kv_entries.sql")
}

func TestCommandsRequireMigration(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("HABITUS_DB_PATH", filepath.Join(dir, "new.db"))
	t.Setenv("HABITUS_LOG_FILE", filepath.Join(dir, "habitus.log"))
	t.Chdir(dir)

	_, _, err := execute(t, "export")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "habitus migrate")
}

func TestExportImportRoundTrip(t *testing.T) {
	env := setupTestEnv(t)
	tasks := `[{"id":"t1","description":"Correr","role":"Salud","completed":false,"createdAt":"2026-03-02T08:00:00.000Z"}]`
	seedStore(t, env, map[string]string{
		"tasks": tasks,
		"roles": `["Salud","Trabajo"]`,
		"theme": "dark",
	})

	out, stderr, err := execute(t, "export", "--json")
	require.NoError(t, err, stderr)

	var exported migration.ExportResult
	require.NoError(t, json.Unmarshal([]byte(out), &exported))
	assert.True(t, exported.Success)
	// metadata + task + 2 roles + theme
	assert.Equal(t, 5, exported.TotalRecords)
	assert.FileExists(t, exported.Path)
	assert.Contains(t, stderr, "Backup exported: 5 records")

	// Wipe and restore from the latest backup
	seedStore(t, env, map[string]string{"tasks": `[]`, "roles": `[]`, "theme": "light"})

	out, stderr, err = execute(t, "import", "--latest", "--yes", "--json")
	require.NoError(t, err, stderr)

	var imported migration.ImportResult
	require.NoError(t, json.Unmarshal([]byte(out), &imported))
	assert.True(t, imported.Success)
	assert.Equal(t, exported.Path, imported.Source)
	assert.Equal(t, 1, imported.Summary.Tasks)
	assert.NotEmpty(t, imported.BackupPath)

	got, _ := readStore(t, env, "tasks")
	assert.JSONEq(t, tasks, got)

	// The safety backup written by the import is not a --latest candidate
	out, _, err = execute(t, "import", "--latest", "--dry-run", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"skipped_rows": 0`)
	latest, _, err := execute(t, "import", "--latest", "--yes", "--json")
	require.NoError(t, err)
	var again migration.ImportResult
	require.NoError(t, json.Unmarshal([]byte(latest), &again))
	assert.Equal(t, exported.Path, again.Source)
	theme, _ := readStore(t, env, "theme")
	assert.Equal(t, "dark", theme)

	out, _, err = execute(t, "history", "--json")
	require.NoError(t, err)
	var runs []events.Run
	require.NoError(t, json.Unmarshal([]byte(out), &runs))
	require.Len(t, runs, 3)
	assert.Equal(t, events.KindImport, runs[0].Kind)
	assert.Equal(t, events.KindImport, runs[1].Kind)
	assert.Equal(t, events.KindExport, runs[2].Kind)
	assert.Equal(t, 5, runs[2].Records)
}

func TestImportRejectsForeignFile(t *testing.T) {
	env := setupTestEnv(t)
	seedStore(t, env, map[string]string{"roles": `["Salud"]`})
	foreign := testutil.WriteFile(t, env.dir, "contacts.csv", "name,email\nana,ana@example.com\n")

	_, stderr, err := execute(t, "import", foreign, "--yes")

	require.Error(t, err)
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 1, exit.Code)
	assert.Contains(t, stderr, "not a valid Habitus backup")

	roles, _ := readStore(t, env, "roles")
	assert.Equal(t, `["Salud"]`, roles)
	_, statErr := os.Stat(env.backupDir)
	assert.True(t, os.IsNotExist(statErr), "no safety backup for a rejected file")
}

func TestImportArgumentErrors(t *testing.T) {
	setupTestEnv(t)

	_, _, err := execute(t, "import")
	var exit *ExitError
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.Code)

	_, _, err = execute(t, "import", "a.csv", "--latest")
	require.ErrorAs(t, err, &exit)
	assert.Equal(t, 2, exit.Code)

	_, _, err = execute(t, "import", "--latest", "--yes")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no backup files found")
}

func TestImportDryRun(t *testing.T) {
	env := setupTestEnv(t)
	seedStore(t, env, map[string]string{"roles": `["Salud"]`})
	_, _, err := execute(t, "export")
	require.NoError(t, err)

	seedStore(t, env, map[string]string{"roles": `["Trabajo"]`})

	out, _, err := execute(t, "import", "--latest", "--dry-run")
	require.NoError(t, err)
	assert.Contains(t, out, "KEY")
	assert.Contains(t, out, "--- current/roles")
	assert.Contains(t, out, `-  "Trabajo"`)
	assert.Contains(t, out, `+  "Salud"`)

	roles, _ := readStore(t, env, "roles")
	assert.Equal(t, `["Trabajo"]`, roles, "dry run writes nothing")
}

func TestBackfillGoalsCommand(t *testing.T) {
	env := setupTestEnv(t)
	seedStore(t, env, map[string]string{
		"goals": `[{"id":"g1","name":"Maratón","role":"Salud","isDefault":true,"createdAt":""}]`,
		"tasks": `[{"id":"t1","description":"Correr","role":"Salud","completed":false,"createdAt":""}]`,
	})

	out, _, err := execute(t, "backfill-goals", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"changed":1}`, out)

	out, _, err = execute(t, "backfill-goals", "--json")
	require.NoError(t, err)
	assert.JSONEq(t, `{"changed":0}`, out)

	out, _, err = execute(t, "backfill-goals", "--porcelain")
	require.NoError(t, err)
	assert.Equal(t, "FIELD\tVALUE\nchanged\t0\n", out)

	tasks, _ := readStore(t, env, "tasks")
	assert.Contains(t, tasks, `"goalId":"g1"`)
}

func TestDoctorCommand(t *testing.T) {
	env := setupTestEnv(t)
	seedStore(t, env, map[string]string{
		"goals": `[{"id":"g1","name":"Maratón","role":"Salud","isDefault":true}]`,
		"tasks": `[{"id":"t1","description":"Correr","role":"Salud"}]`,
	})

	out, _, err := execute(t, "doctor", "--json")
	require.NoError(t, err)

	var report doctorReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "warning", report.OverallStatus)
	statuses := map[string]string{}
	for _, c := range report.Checks {
		statuses[c.Name] = c.Status
	}
	assert.Equal(t, "ok", statuses["schema"])
	assert.Equal(t, "ok", statuses["store"])
	assert.Equal(t, "warning", statuses["goal_backfill"])
	assert.Equal(t, "ok", statuses["backup_dir"])
	assert.Equal(t, "warning", statuses["latest_backup"])

	seedStore(t, env, map[string]string{"ideas": `{broken`})
	_, _, err = execute(t, "doctor")
	require.Error(t, err)
}

func TestVersionCommand(t *testing.T) {
	out, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "habitus version "))
	assert.Contains(t, out, "backup format: "+migration.FormatVersion)

	out, _, err = execute(t, "version", "--json")
	require.NoError(t, err)
	var v map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &v))
	assert.Equal(t, migration.FormatVersion, v["backup_format"])
}

func TestImportAssignsDefaultGoals(t *testing.T) {
	env := setupTestEnv(t)
	seedStore(t, env, map[string]string{
		"goals": `[{"id":"g1","name":"Maratón","role":"Salud","isDefault":true,"createdAt":""}]`,
		"tasks": `[{"id":"t1","description":"Correr","role":"Salud","completed":false,"createdAt":""}]`,
	})
	_, _, err := execute(t, "export")
	require.NoError(t, err)

	_, _, err = execute(t, "import", "--latest", "--yes")
	require.NoError(t, err)

	tasks, _ := readStore(t, env, "tasks")
	assert.Contains(t, tasks, `"goalId":"g1"`, "the backup had no goal; the reload after import assigned it")
	assert.Contains(t, importCmd.Long, "default\ngoal of its role")
}
