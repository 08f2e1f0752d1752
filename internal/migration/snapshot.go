package migration

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/lherron/habitus/internal/domain"
)

// timestampLayout matches the millisecond ISO-8601 form the app writes.
const timestampLayout = "2006-01-02T15:04:05.000Z07:00"

// PrepareSnapshot reads every collection and setting from the store.
// Missing keys fall back to empty defaults; unparseable collections fail
// with a StoreReadError.
func (e *Engine) PrepareSnapshot(ctx context.Context) (*Snapshot, error) {
	snap := &Snapshot{Collections: NewCollections()}

	// Collections the app cannot run without
	required := []struct {
		key string
		dst any
	}{
		{domain.KeyTasks, &snap.Tasks},
		{domain.KeyRoles, &snap.Roles},
		{domain.KeyGoals, &snap.Goals},
		{domain.KeyMetrics, &snap.Metrics},
		{domain.KeyTasksLog, &snap.TaskLog},
		{domain.KeyIdeas, &snap.Ideas},
	}
	for _, r := range required {
		if err := e.readJSON(ctx, r.key, r.dst); err != nil {
			return nil, err
		}
	}

	// Check-in state is disposable; a corrupt value reads as empty
	if err := e.readJSON(ctx, domain.KeyCheckIn, &snap.CheckIn); err != nil {
		if KindOf(err) != KindStoreRead {
			return nil, err
		}
		e.log.Warn().Err(err).Str("key", domain.KeyCheckIn).Msg("ignoring unreadable check-in state")
		snap.CheckIn = domain.CheckInState{}
	}

	if err := e.readSettings(ctx, &snap.Settings); err != nil {
		return nil, err
	}

	normalize(&snap.Collections)

	snap.Meta = Metadata{
		Version:    FormatVersion,
		Product:    e.product,
		ExportDate: e.now().UTC().Format(timestampLayout),
		ExportID:   e.newID(),
		UserAgent:  e.device.UserAgent,
		Language:   e.device.Language,
		Platform:   e.device.Platform,
	}

	return snap, nil
}

// readJSON decodes the value under key into dst, leaving dst untouched when
// the key is absent or empty.
func (e *Engine) readJSON(ctx context.Context, key string, dst any) error {
	value, ok, err := e.store.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", key, err)
	}
	if !ok || value == "" {
		return nil
	}
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return &Error{Kind: KindStoreRead, Op: "export", Key: key, Err: err}
	}
	return nil
}

func (e *Engine) readSettings(ctx context.Context, s *domain.Settings) error {
	for _, f := range settingFields {
		value, ok, err := e.store.Get(ctx, f.key)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", f.key, err)
		}
		if !ok || value == "" {
			continue
		}
		if err := f.read(s, value); err != nil {
			e.log.Warn().Err(err).Str("key", f.key).Msg("ignoring unreadable setting")
		}
	}
	return nil
}

// normalize replaces nil collections (stored as JSON null) with empty ones.
func normalize(c *Collections) {
	if c.Tasks == nil {
		c.Tasks = []domain.Task{}
	}
	if c.Roles == nil {
		c.Roles = []string{}
	}
	if c.Goals == nil {
		c.Goals = []domain.Goal{}
	}
	if c.Metrics == nil {
		c.Metrics = []domain.WeeklyMetric{}
	}
	if c.TaskLog == nil {
		c.TaskLog = []domain.TaskLogEntry{}
	}
	for i := range c.TaskLog {
		if c.TaskLog[i].Tasks == nil {
			c.TaskLog[i].Tasks = []domain.Task{}
		}
	}
	if c.CheckIn == nil {
		c.CheckIn = domain.CheckInState{}
	}
	if c.Ideas == nil {
		c.Ideas = []domain.Idea{}
	}
}
