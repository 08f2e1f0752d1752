package migration

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/lherron/habitus/internal/domain"
	"github.com/lherron/habitus/internal/kvstore"
	"github.com/lherron/habitus/internal/prompt"
)

var testNow = time.Date(2026, 3, 9, 10, 0, 0, 0, time.UTC)

// memFiles is an in-memory Deliverer. Deliveries whose filename contains
// failOn are rejected.
type memFiles struct {
	files  map[string][]byte
	failOn string
}

func newMemFiles() *memFiles {
	return &memFiles{files: map[string][]byte{}}
}

func (m *memFiles) Deliver(_ context.Context, content []byte, filename string) (string, error) {
	if m.failOn != "" && strings.Contains(filename, m.failOn) {
		return "", errors.New("disk full")
	}
	m.files[filename] = content
	return "/backups/" + filename, nil
}

func (m *memFiles) Open(_ context.Context, source string) (string, error) {
	content, ok := m.files[source]
	if !ok {
		return "", fmt.Errorf("open %s: %w", source, os.ErrNotExist)
	}
	return string(content), nil
}

type harness struct {
	engine  *Engine
	store   kvstore.Store
	files   *memFiles
	rec     *prompt.Recorder
	reloads []time.Duration
}

func newHarness(t *testing.T, store kvstore.Store) *harness {
	t.Helper()
	h := &harness{
		store: store,
		files: newMemFiles(),
		rec:   &prompt.Recorder{Answer: true},
	}
	h.engine = New(store, Options{
		Files:   h.files,
		Confirm: h.rec,
		Notify:  h.rec,
		Reload:  ReloaderFunc(func(d time.Duration) { h.reloads = append(h.reloads, d) }),
		Device:  Device{UserAgent: "test-agent", Language: "es-ES", Platform: "linux/amd64"},
		Now:     func() time.Time { return testNow },
		NewID:   func() string { return "export-1" },
	})
	return h
}

func seed(t *testing.T, s kvstore.Store, key string, value any) {
	t.Helper()
	var raw string
	switch v := value.(type) {
	case string:
		raw = v
	default:
		data, err := json.Marshal(v)
		require.NoError(t, err)
		raw = string(data)
	}
	require.NoError(t, s.Set(context.Background(), key, raw))
}

func load[T any](t *testing.T, s kvstore.Store, key string) T {
	t.Helper()
	var out T
	value, ok, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok, "key %s not set", key)
	require.NoError(t, json.Unmarshal([]byte(value), &out))
	return out
}

func scenarioTasks() []domain.Task {
	return []domain.Task{
		{ID: "t1", Description: "Correr 5km", Role: "Salud", GoalID: "g1", CreatedAt: "2026-03-02T08:00:00.000Z"},
		{ID: "t2", Description: "Leer \"Dune\", capítulo 3", Role: "Personal", CreatedAt: "2026-03-02T09:00:00.000Z"},
		{ID: "t3", Description: "Revisar presupuesto", Role: "Salud", Completed: true,
			CreatedAt: "2026-03-03T10:00:00.000Z", CompletedAt: "2026-03-04T18:30:00.000Z"},
	}
}

func fullCollections() Collections {
	return Collections{
		Tasks: scenarioTasks(),
		Roles: []string{"Salud", "Personal"},
		Goals: []domain.Goal{
			{ID: "g1", Name: "Maratón", Role: "Salud", IsDefault: true, CreatedAt: "2026-01-01T00:00:00.000Z"},
			{ID: "g2", Name: "Leer más", Role: "Personal", CreatedAt: "2026-01-02T00:00:00.000Z"},
		},
		Metrics: []domain.WeeklyMetric{
			{Timestamp: "2026-02-23T00:00:00.000Z", TotalTasks: 5, CompletedTasks: 3},
			{Timestamp: "2026-03-02T00:00:00.000Z", TotalTasks: 4, CompletedTasks: 4},
		},
		TaskLog: []domain.TaskLogEntry{
			{Timestamp: "2026-02-23T00:00:00.000Z", Tasks: []domain.Task{
				{ID: "old1", Description: "Yoga", Role: "Salud", Completed: true, CreatedAt: "2026-02-16T00:00:00.000Z"},
				{ID: "old2", Description: "Escribir, editar", Role: "Personal", Completed: true, CreatedAt: "2026-02-17T00:00:00.000Z"},
			}},
			{Timestamp: "2026-03-02T00:00:00.000Z", Tasks: []domain.Task{
				{ID: "old3", Description: "Nadar", Role: "Salud", Completed: true, CreatedAt: "2026-02-24T00:00:00.000Z"},
			}},
		},
		CheckIn: domain.CheckInState{"step": float64(2), "notes": "semana\nintensa", "done": false},
		Ideas: []domain.Idea{
			{ID: "i1", Description: "App de recetas", Archived: true, Priority: 2,
				CreatedAt: "2026-01-05T00:00:00.000Z", UpdatedAt: "2026-01-06T00:00:00.000Z"},
		},
		Settings: domain.Settings{
			LastReview: "2026-03-01T20:00:00.000Z",
			LastReset:  "2026-03-02T00:00:00.000Z",
			Lang:       "en",
			Theme:      "dark",
			Feedback: []domain.Feedback{
				{ID: "f1", Text: "Me encanta", CreatedAt: "2026-02-01T00:00:00.000Z",
					Extra: domain.Extra{"source": json.RawMessage(`"mobile"`)}},
			},
		},
	}
}

// seedCollections writes c into s the way the app stores it.
func seedCollections(t *testing.T, s kvstore.Store, c Collections) {
	t.Helper()
	seed(t, s, domain.KeyTasks, c.Tasks)
	seed(t, s, domain.KeyRoles, c.Roles)
	seed(t, s, domain.KeyGoals, c.Goals)
	seed(t, s, domain.KeyMetrics, c.Metrics)
	seed(t, s, domain.KeyTasksLog, c.TaskLog)
	seed(t, s, domain.KeyCheckIn, c.CheckIn)
	seed(t, s, domain.KeyIdeas, c.Ideas)
	seed(t, s, domain.KeyLastReview, c.Settings.LastReview)
	seed(t, s, domain.KeyLastReset, c.Settings.LastReset)
	seed(t, s, domain.KeyLang, c.Settings.Lang)
	seed(t, s, domain.KeyTheme, c.Settings.Theme)
	seed(t, s, domain.KeyFeedback, c.Settings.Feedback)
}
