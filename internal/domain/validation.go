package domain

import (
	"fmt"
	"time"
)

// ValidateLanguage validates a language code
func ValidateLanguage(lang string) error {
	switch lang {
	case "es", "en":
		return nil
	default:
		return fmt.Errorf("invalid language: must be one of: es, en")
	}
}

// ValidateTheme validates a theme name
func ValidateTheme(theme string) error {
	switch theme {
	case "light", "dark":
		return nil
	default:
		return fmt.Errorf("invalid theme: must be one of: light, dark")
	}
}

// ValidateTimestamp validates and parses an ISO8601 timestamp.
// Millisecond precision (as written by browsers) is accepted.
func ValidateTimestamp(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp format: expected ISO8601/RFC3339")
	}
	return t, nil
}

// timestampLayouts are the ISO8601 forms a browser Date accepts, most
// specific first. Zone-less forms are read as UTC.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ParseTimestamp parses an ISO8601 timestamp in any of the layouts above.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: expected ISO8601", s)
}

// ValidateTask checks the fields every stored task must carry.
func ValidateTask(t *Task) error {
	if t.Description == "" {
		return fmt.Errorf("task %q: description is required", t.ID)
	}
	if t.Role == "" {
		return fmt.Errorf("task %q: role is required", t.ID)
	}
	return nil
}

// ValidateGoal checks the fields every stored goal must carry.
func ValidateGoal(g *Goal) error {
	if g.Name == "" {
		return fmt.Errorf("goal %q: name is required", g.ID)
	}
	if g.Role == "" {
		return fmt.Errorf("goal %q: role is required", g.ID)
	}
	return nil
}

// DefaultGoalForRole returns the default goal of a role, if any.
func DefaultGoalForRole(goals []Goal, role string) (*Goal, bool) {
	for i := range goals {
		if goals[i].IsDefault && goals[i].Role == role {
			return &goals[i], true
		}
	}
	return nil, false
}
