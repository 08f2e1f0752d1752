package migration

import (
	"context"
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lherron/habitus/internal/delivery"
	"github.com/lherron/habitus/internal/domain"
	"github.com/lherron/habitus/internal/kvstore"
	"github.com/lherron/habitus/internal/prompt"
)

// DefaultReloadDelay is how long after an import the app is asked to reload.
const DefaultReloadDelay = 1500 * time.Millisecond

// Reloader asks the consuming application to re-read the store.
type Reloader interface {
	RequestReload(delay time.Duration)
}

// ReloaderFunc adapts a function to Reloader.
type ReloaderFunc func(delay time.Duration)

// RequestReload calls f.
func (f ReloaderFunc) RequestReload(delay time.Duration) { f(delay) }

type noReload struct{}

func (noReload) RequestReload(time.Duration) {}

// Options configures an Engine. Zero values get usable defaults.
type Options struct {
	Files   delivery.Deliverer
	Confirm prompt.Confirmer
	Notify  prompt.Notifier
	Reload  Reloader
	Logger  *zerolog.Logger

	Device      Device
	Product     string
	Language    string // message language when the store has none
	ReloadDelay time.Duration

	Now   func() time.Time
	NewID func() string
}

// Engine exports and imports the full contents of a store.
type Engine struct {
	store   kvstore.Store
	files   delivery.Deliverer
	confirm prompt.Confirmer
	notify  prompt.Notifier
	reload  Reloader
	log     zerolog.Logger

	device      Device
	product     string
	language    string
	reloadDelay time.Duration

	now   func() time.Time
	newID func() string
}

// New creates an engine over store.
func New(store kvstore.Store, opts Options) *Engine {
	e := &Engine{
		store:       store,
		files:       opts.Files,
		confirm:     opts.Confirm,
		notify:      opts.Notify,
		reload:      opts.Reload,
		log:         zerolog.Nop(),
		device:      opts.Device,
		product:     opts.Product,
		language:    opts.Language,
		reloadDelay: opts.ReloadDelay,
		now:         opts.Now,
		newID:       opts.NewID,
	}
	if opts.Logger != nil {
		e.log = opts.Logger.With().Str("component", "migration").Logger()
	}
	if e.confirm == nil {
		e.confirm = prompt.Auto(false)
	}
	if e.notify == nil {
		e.notify = prompt.Discard{}
	}
	if e.reload == nil {
		e.reload = noReload{}
	}
	if e.device == (Device{}) {
		e.device = DefaultDevice()
	}
	if e.product == "" {
		e.product = DefaultProduct
	}
	if e.reloadDelay == 0 {
		e.reloadDelay = DefaultReloadDelay
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	return e
}

// DefaultDevice describes the current process.
func DefaultDevice() Device {
	lang := os.Getenv("LANG")
	if i := strings.IndexAny(lang, ".@"); i >= 0 {
		lang = lang[:i]
	}
	if lang == "" || lang == "C" || lang == "POSIX" {
		lang = "und"
	}
	return Device{
		UserAgent: fmt.Sprintf("%s-cli (%s)", DefaultProduct, runtime.Version()),
		Language:  strings.ReplaceAll(lang, "_", "-"),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// BackupFilename is the name of a user-requested backup taken at t.
func (e *Engine) BackupFilename(t time.Time) string {
	return fmt.Sprintf("%s_complete_backup_%s.csv", e.product, t.UTC().Format("2006-01-02"))
}

func (e *Engine) safetyFilename(t time.Time) string {
	return fmt.Sprintf("%s_safety_backup_%s.csv", e.product, t.UTC().Format("2006-01-02T150405Z"))
}

// Export writes a backup of the whole store through the deliverer.
// Failures are reported in the result and notified, never returned.
func (e *Engine) Export(ctx context.Context) ExportResult {
	return e.export(ctx, e.BackupFilename(e.now()), false)
}

func (e *Engine) export(ctx context.Context, filename string, quiet bool) (result ExportResult) {
	lang := e.messageLanguage(ctx)

	fail := func(err error) ExportResult {
		e.log.Error().Err(err).Str("file", filename).Msg("export failed")
		if !quiet {
			e.notify.Notify(message(lang, msgExportFailed, err), prompt.SeverityError)
		}
		return ExportResult{Filename: filename, Error: err.Error()}
	}

	defer func() {
		if r := recover(); r != nil {
			result = fail(fmt.Errorf("unexpected failure: %v", r))
		}
	}()

	if e.files == nil {
		return fail(fmt.Errorf("no file delivery configured"))
	}

	snap, err := e.PrepareSnapshot(ctx)
	if err != nil {
		return fail(err)
	}

	rows, err := EncodeRows(snap)
	if err != nil {
		return fail(err)
	}

	path, err := e.files.Deliver(ctx, SerializeCSV(rows), filename)
	if err != nil {
		return fail(fmt.Errorf("failed to deliver backup: %w", err))
	}

	rev := ""
	if len(rows) > 0 {
		rev = rowsRev(rows[1:])
	}
	result = ExportResult{
		Success:      true,
		Filename:     filename,
		Path:         path,
		TotalRecords: len(rows),
		Sections:     countSections(rows),
		SnapshotRev:  rev,
	}

	e.log.Info().
		Str("file", path).
		Int("records", result.TotalRecords).
		Int("sections", result.Sections).
		Msg("export complete")
	if !quiet {
		e.notify.Notify(message(lang, msgExportDone, result.TotalRecords, filename), prompt.SeveritySuccess)
	}

	return result
}

// messageLanguage picks the language of user-facing messages: the stored
// preference, then the configured fallback, then the app default.
func (e *Engine) messageLanguage(ctx context.Context) string {
	if lang, ok, err := e.store.Get(ctx, domain.KeyLang); err == nil && ok {
		if domain.ValidateLanguage(lang) == nil {
			return lang
		}
	}
	if domain.ValidateLanguage(e.language) == nil {
		return e.language
	}
	return domain.DefaultLanguage
}
