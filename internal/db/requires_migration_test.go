package db_test

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lherron/habitus/internal/db"
)

func openTemp(t *testing.T) (*db.DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	database, err := db.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })

	return database, dbPath
}

func TestRequiresMigrationError(t *testing.T) {
	database, dbPath := openTemp(t)

	// Mark only the first migration as applied
	_, err := database.Exec(`
		CREATE TABLE schema_migrations (
			version TEXT PRIMARY KEY,
			applied_at TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%SZ','now'))
		)
	`)
	require.NoError(t, err)
	_, err = database.Exec(`INSERT INTO schema_migrations (version) VALUES ('000001_kv_entries.sql')`)
	require.NoError(t, err)

	migErr := database.RequiresMigrationError()
	require.Error(t, migErr)

	errStr := migErr.Error()
	assert.Contains(t, errStr, dbPath)
	assert.Contains(t, errStr, "000001_kv_entries.sql")
	assert.Contains(t, errStr, "pending migration")
	assert.Contains(t, errStr, "habitus migrate")
}

func TestRequiresMigrationError_FreshDatabase(t *testing.T) {
	database, _ := openTemp(t)

	migErr := database.RequiresMigrationError()
	require.Error(t, migErr)
	assert.Contains(t, migErr.Error(), "version: none")
}

func TestMigrate_AppliesOnce(t *testing.T) {
	database, _ := openTemp(t)

	applied, err := database.MigrateWithInfo()
	require.NoError(t, err)
	assert.Equal(t, []string{"000001_kv_entries.sql", "000002_migration_runs.sql"}, applied)

	applied, err = database.MigrateWithInfo()
	require.NoError(t, err)
	assert.Empty(t, applied)

	assert.NoError(t, database.RequiresMigrationError())

	done, pending, err := database.MigrationStatus()
	require.NoError(t, err)
	assert.Len(t, done, 2)
	assert.Empty(t, pending)
}

func TestMigrate_CreatesTables(t *testing.T) {
	database, _ := openTemp(t)
	require.NoError(t, database.Migrate())

	for _, table := range []string{"kv_entries", "migration_runs"} {
		var count int
		err := database.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s should exist", table)
	}
}
