package migration

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/lherron/habitus/internal/domain"
	"github.com/lherron/habitus/internal/kvstore"
	"github.com/lherron/habitus/internal/prompt"
)

// Import reads a backup from source, confirms with the user and replaces the
// store contents with it. Failures are reported in the result and notified.
func (e *Engine) Import(ctx context.Context, source string) (result ImportResult) {
	lang := e.messageLanguage(ctx)

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("unexpected failure: %v", r)
			e.log.Error().Err(err).Str("source", source).Msg("import failed")
			e.notify.Notify(message(lang, msgImportFailed, err), prompt.SeverityError)
			result = ImportResult{Source: source, Error: err.Error()}
		}
	}()

	d, err := e.Load(ctx, source)
	if err != nil {
		result = ImportResult{Source: source, Kind: KindOf(err), Error: err.Error()}
		e.log.Error().Err(err).Str("source", source).Msg("import failed")
		switch result.Kind {
		case KindInvalidFormat:
			e.notify.Notify(message(lang, msgInvalidFormat), prompt.SeverityError)
		case KindIncompatibleVersion:
			version := ""
			if d != nil && d.Meta != nil {
				version = d.Meta.Version
			}
			e.notify.Notify(message(lang, msgIncompatibleVersion, version), prompt.SeverityError)
		default:
			e.notify.Notify(message(lang, msgImportFailed, err), prompt.SeverityError)
		}
		return result
	}

	result = e.ConfirmAndApply(ctx, d)
	result.Source = source
	return result
}

// Load reads, parses and decodes a backup, and checks its format version.
// On IncompatibleVersion the decoded file is returned alongside the error.
func (e *Engine) Load(ctx context.Context, source string) (*Decoded, error) {
	if e.files == nil {
		return nil, fmt.Errorf("no file delivery configured")
	}

	text, err := e.files.Open(ctx, source)
	if err != nil {
		return nil, err
	}
	text = strings.TrimPrefix(text, "\ufeff")

	d, err := DecodeRows(ParseCSV(text))
	if err != nil {
		return nil, err
	}

	for _, w := range d.Warnings {
		e.log.Warn().
			Int("line", w.Line).
			Str("section", string(w.Section)).
			Err(w).
			Msg("skipping backup row")
	}

	if err := CheckVersion(d.Meta); err != nil {
		return d, err
	}

	return d, nil
}

// ConfirmAndApply asks for confirmation, takes a safety backup of the
// current store and overwrites it with d. A cancelled confirmation leaves
// the store untouched.
func (e *Engine) ConfirmAndApply(ctx context.Context, d *Decoded) ImportResult {
	lang := e.messageLanguage(ctx)

	result := ImportResult{
		Summary: d.Summary(),
		Skipped: d.Skipped,
	}
	if d.Meta != nil {
		result.Version = d.Meta.Version
	} else {
		result.Warnings = append(result.Warnings, message(lang, msgNoMetadata))
	}
	if d.RevMismatch {
		result.Warnings = append(result.Warnings, message(lang, msgRevMismatch))
		e.log.Warn().Str("recorded", d.Meta.SnapshotRev).Msg("backup revision mismatch")
	}
	for _, w := range d.Warnings {
		result.Warnings = append(result.Warnings, w.Error())
	}

	fail := func(kind ErrorKind, err error, notice string) ImportResult {
		e.log.Error().Err(err).Msg("import failed")
		e.notify.Notify(notice, prompt.SeverityError)
		result.Kind = kind
		result.Error = err.Error()
		return result
	}

	ok, err := e.confirm.Confirm(ctx, message(lang, msgImportConfirm, describeSummary(lang, result.Summary)))
	if err != nil {
		return fail("", fmt.Errorf("confirmation failed: %w", err), message(lang, msgImportFailed, err))
	}
	if !ok {
		result.Cancelled = true
		e.log.Info().Msg("import cancelled")
		e.notify.Notify(message(lang, msgImportCancelled), prompt.SeverityInfo)
		return result
	}

	// Safety backup must finish before anything is overwritten
	backup := e.export(ctx, e.safetyFilename(e.now()), true)
	if backup.Success {
		result.BackupPath = backup.Path
	} else {
		berr := &Error{Kind: KindBackupFailure, Op: "import", Msg: backup.Error}
		result.Warnings = append(result.Warnings, berr.Error())
		e.log.Warn().Err(berr).Msg("continuing import without safety backup")
		e.notify.Notify(message(lang, msgBackupFailed, backup.Error), prompt.SeverityWarning)
	}

	writes, err := importWrites(&d.Collections)
	if err != nil {
		werr := &Error{Kind: KindWrite, Op: "import", Err: err}
		return fail(KindWrite, werr, message(lang, msgImportFailed, err))
	}

	written, err := kvstore.ApplyWrites(ctx, e.store, writes)
	result.Written = written
	if err != nil {
		werr := &Error{Kind: KindWrite, Op: "import", Err: err}
		var kerr *kvstore.WriteError
		if errors.As(err, &kerr) {
			werr.Key = kerr.Key
		}
		notice := message(lang, msgWriteFailed, werr.Key)
		if werr.Key == "" {
			notice = message(lang, msgImportFailed, err)
		}
		return fail(KindWrite, werr, notice)
	}

	result.Success = true
	e.log.Info().
		Int("keys", len(written)).
		Int("skipped", d.Skipped).
		Msg("import complete")

	// Messages follow the language of the imported data from here on
	lang = e.messageLanguage(ctx)
	e.notify.Notify(message(lang, msgImportDone), prompt.SeveritySuccess)
	if d.Skipped > 0 {
		e.notify.Notify(message(lang, msgRowsSkipped, d.Skipped), prompt.SeverityWarning)
	}

	e.reload.RequestReload(e.reloadDelay)

	return result
}

// importWrites lists the store writes that replace the current state with c.
func importWrites(c *Collections) ([]kvstore.Write, error) {
	normalize(c)

	collections := []struct {
		key   string
		value any
	}{
		{domain.KeyTasks, c.Tasks},
		{domain.KeyRoles, c.Roles},
		{domain.KeyGoals, c.Goals},
		{domain.KeyMetrics, c.Metrics},
		{domain.KeyTasksLog, c.TaskLog},
		{domain.KeyIdeas, c.Ideas},
	}

	var writes []kvstore.Write
	for _, col := range collections {
		value, err := marshalCompact(col.value)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", col.key, err)
		}
		writes = append(writes, kvstore.Write{Key: col.key, Value: value})
	}

	if len(c.CheckIn) > 0 {
		value, err := marshalCompact(c.CheckIn)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", domain.KeyCheckIn, err)
		}
		writes = append(writes, kvstore.Write{Key: domain.KeyCheckIn, Value: value})
	}

	for _, f := range settingFields {
		if !f.present(&c.Settings) {
			continue
		}
		value, err := f.stored(&c.Settings)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s: %w", f.key, err)
		}
		writes = append(writes, kvstore.Write{Key: f.key, Value: value})
	}

	return writes, nil
}
