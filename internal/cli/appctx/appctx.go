// Package appctx provides a shared bootstrap helper for CLI commands.
// It centralizes config loading, logging, database opening and wiring of
// the migration engine to reduce boilerplate across commands.
package appctx

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/lherron/habitus/internal/config"
	"github.com/lherron/habitus/internal/db"
	"github.com/lherron/habitus/internal/delivery"
	"github.com/lherron/habitus/internal/events"
	"github.com/lherron/habitus/internal/kvstore"
	"github.com/lherron/habitus/internal/logging"
	"github.com/lherron/habitus/internal/migration"
	"github.com/lherron/habitus/internal/prompt"
)

// App holds the shared application context for commands.
type App struct {
	// Config is the loaded configuration
	Config *config.Config

	// Logger writes structured logs (stderr or HABITUS_LOG_FILE)
	Logger zerolog.Logger

	// DB is the opened database connection (nil if NeedsDB is false)
	DB *db.DB

	// Store is the device key-value store backed by DB
	Store *kvstore.SQLite

	// Runs records export/import history
	Runs *events.Writer

	closeLog func()
}

// Close releases resources held by the App.
// Safe to call multiple times.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
		a.DB = nil
	}
	if a.closeLog != nil {
		a.closeLog()
		a.closeLog = nil
	}
}

// Options configures the bootstrap behavior.
type Options struct {
	// NeedsDB indicates whether to open the database.
	NeedsDB bool
}

// DefaultOptions returns default options (DB required).
func DefaultOptions() Options {
	return Options{NeedsDB: true}
}

// RunFunc is the signature for command run functions.
type RunFunc func(app *App, cmd *cobra.Command, args []string) error

// WithApp wraps a command's run function with shared bootstrap logic.
// The database is closed automatically when the wrapped function returns.
func WithApp(opts Options, fn RunFunc) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := Bootstrap(cmd, opts)
		if err != nil {
			return err
		}
		defer app.Close()

		return fn(app, cmd, args)
	}
}

// Bootstrap initializes the App according to the given options.
// Callers are responsible for calling App.Close() when done.
func Bootstrap(cmd *cobra.Command, opts Options) (*App, error) {
	app := &App{}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	app.Config = cfg

	// Flags override config
	if v := flagValue(cmd, "db"); v != "" {
		cfg.DBPath = v
	}
	if v := flagValue(cmd, "backup-dir"); v != "" {
		cfg.BackupDir = v
	}
	if v := flagValue(cmd, "log-level"); v != "" {
		cfg.LogLevel = v
	}

	logger, closeLog, err := logging.New(cfg.LogLevel, cfg.LogFile)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}
	app.Logger = logger
	app.closeLog = closeLog

	// Open database if needed
	if opts.NeedsDB {
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		app.DB = database

		// Check for pending migrations
		if err := database.RequiresMigrationError(); err != nil {
			app.Close()
			return nil, err
		}

		app.Store = kvstore.NewSQLite(database)
		app.Runs = events.NewWriter(database.DB)
	}

	return app, nil
}

// EngineOptions controls how the engine talks to the user.
type EngineOptions struct {
	// AssumeYes skips the interactive confirmation.
	AssumeYes bool
	// Notices receives user-facing notifications.
	Notices io.Writer
}

// Engine builds a migration engine over the app's store. After an import
// the CLI has no running app to reload, so the reload runs the task to
// goal backfill the app performs on startup.
func (a *App) Engine(ctx context.Context, opts EngineOptions) *migration.Engine {
	var confirm prompt.Confirmer = prompt.Form{Title: "Import backup", Affirmative: "Import", Negative: "Cancel"}
	if opts.AssumeYes {
		confirm = prompt.Auto(true)
	}

	var notify prompt.Notifier = prompt.Discard{}
	if opts.Notices != nil {
		notify = prompt.Terminal{W: opts.Notices}
	}

	var engine *migration.Engine
	reload := migration.ReloaderFunc(func(delay time.Duration) {
		a.Logger.Debug().Dur("delay", delay).Msg("reloading store after import")
		if _, err := engine.MigrateTasksToGoals(ctx); err != nil {
			a.Logger.Warn().Err(err).Msg("backfill after import failed")
		}
	})

	engine = migration.New(a.Store, migration.Options{
		Files:    delivery.Dir{Path: a.Config.BackupDir},
		Confirm:  confirm,
		Notify:   notify,
		Reload:   reload,
		Logger:   &a.Logger,
		Language: a.Config.Lang,
	})
	return engine
}

func flagValue(cmd *cobra.Command, name string) string {
	if f := cmd.Flag(name); f != nil {
		return f.Value.String()
	}
	return ""
}
