package domain

import (
	"testing"
	"time"
)

func TestValidateLanguage(t *testing.T) {
	tests := []struct {
		name    string
		lang    string
		wantErr bool
	}{
		{name: "spanish", lang: "es", wantErr: false},
		{name: "english", lang: "en", wantErr: false},
		{name: "uppercase", lang: "ES", wantErr: true},
		{name: "unknown", lang: "fr", wantErr: true},
		{name: "empty", lang: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateLanguage(tt.lang)
			if tt.wantErr && err == nil {
				t.Error("ValidateLanguage() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateLanguage() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTheme(t *testing.T) {
	tests := []struct {
		name    string
		theme   string
		wantErr bool
	}{
		{name: "light", theme: "light", wantErr: false},
		{name: "dark", theme: "dark", wantErr: false},
		{name: "unknown", theme: "solarized", wantErr: true},
		{name: "empty", theme: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateTheme(tt.theme)
			if tt.wantErr && err == nil {
				t.Error("ValidateTheme() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateTheme() unexpected error: %v", err)
			}
		})
	}
}

func TestValidateTimestamp(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "seconds", input: "2025-01-06T09:00:00Z", wantErr: false},
		{name: "browser milliseconds", input: "2025-01-06T09:00:00.123Z", wantErr: false},
		{name: "offset", input: "2025-01-06T09:00:00+02:00", wantErr: false},
		{name: "date only", input: "2025-01-06", wantErr: true},
		{name: "garbage", input: "yesterday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateTimestamp(tt.input)
			if tt.wantErr && err == nil {
				t.Errorf("ValidateTimestamp(%q) expected error, got nil", tt.input)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidateTimestamp(%q) unexpected error: %v", tt.input, err)
			}
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		input string
		want  time.Time
	}{
		{"2025-01-06T09:00:00.123Z", time.Date(2025, 1, 6, 9, 0, 0, 123e6, time.UTC)},
		{"2025-01-06T09:00:00", time.Date(2025, 1, 6, 9, 0, 0, 0, time.UTC)},
		{"2025-01-06T09:00:00.5", time.Date(2025, 1, 6, 9, 0, 0, 5e8, time.UTC)},
		{"2025-01-06T09:30", time.Date(2025, 1, 6, 9, 30, 0, 0, time.UTC)},
		{"2025-01-06", time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseTimestamp(tt.input)
			if err != nil {
				t.Fatalf("ParseTimestamp(%q) unexpected error: %v", tt.input, err)
			}
			if !got.Equal(tt.want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}

	for _, bad := range []string{"", "yesterday", "06/01/2025"} {
		if _, err := ParseTimestamp(bad); err == nil {
			t.Errorf("ParseTimestamp(%q) expected error, got nil", bad)
		}
	}
}

func TestValidateTask(t *testing.T) {
	if err := ValidateTask(&Task{ID: "t1", Description: "Call mom", Role: "Son"}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateTask(&Task{ID: "t2", Role: "Son"}); err == nil {
		t.Error("expected error for missing description")
	}
	if err := ValidateTask(&Task{ID: "t3", Description: "Run"}); err == nil {
		t.Error("expected error for missing role")
	}
}

func TestDefaultGoalForRole(t *testing.T) {
	goals := []Goal{
		{ID: "g1", Name: "Health", Role: "Athlete"},
		{ID: "g2", Name: "General", Role: "Athlete", IsDefault: true},
		{ID: "g3", Name: "General", Role: "Parent", IsDefault: true},
	}

	g, ok := DefaultGoalForRole(goals, "Athlete")
	if !ok || g.ID != "g2" {
		t.Fatalf("expected g2, got %+v (ok=%v)", g, ok)
	}

	if _, ok := DefaultGoalForRole(goals, "Writer"); ok {
		t.Error("expected no default goal for Writer")
	}
}

func TestSettingsDefaults(t *testing.T) {
	var s Settings
	if s.Language() != DefaultLanguage {
		t.Errorf("expected default language %q, got %q", DefaultLanguage, s.Language())
	}
	if s.ThemeName() != DefaultTheme {
		t.Errorf("expected default theme %q, got %q", DefaultTheme, s.ThemeName())
	}

	s = Settings{Lang: "en", Theme: "dark"}
	if s.Language() != "en" || s.ThemeName() != "dark" {
		t.Errorf("stored values not returned: %+v", s)
	}
}
