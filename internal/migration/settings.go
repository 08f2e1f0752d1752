package migration

import (
	"encoding/json"
	"fmt"

	"github.com/lherron/habitus/internal/domain"
)

// settingField binds one store key to its place in domain.Settings.
// Scalars are stored as raw strings; the feedback list is stored as JSON.
type settingField struct {
	key     string
	present func(s *domain.Settings) bool
	// payload is the value written into the setting row.
	payload func(s *domain.Settings) any
	// load parses a value read from the store or a row payload.
	load func(s *domain.Settings, raw json.RawMessage) error
	// stored is the value written to the store.
	stored func(s *domain.Settings) (string, error)
	// read parses the raw store value.
	read func(s *domain.Settings, value string) error
}

// settingFields is applied in order on import.
var settingFields = []settingField{
	scalarSetting(domain.KeyLastReview, func(s *domain.Settings) *string { return &s.LastReview }),
	scalarSetting(domain.KeyLastReset, func(s *domain.Settings) *string { return &s.LastReset }),
	scalarSetting(domain.KeyLang, func(s *domain.Settings) *string { return &s.Lang }),
	scalarSetting(domain.KeyTheme, func(s *domain.Settings) *string { return &s.Theme }),
	{
		key:     domain.KeyFeedback,
		present: func(s *domain.Settings) bool { return len(s.Feedback) > 0 },
		payload: func(s *domain.Settings) any { return s.Feedback },
		load: func(s *domain.Settings, raw json.RawMessage) error {
			var list []domain.Feedback
			if err := json.Unmarshal(raw, &list); err != nil {
				return err
			}
			s.Feedback = list
			return nil
		},
		stored: func(s *domain.Settings) (string, error) {
			return marshalCompact(s.Feedback)
		},
		read: func(s *domain.Settings, value string) error {
			var list []domain.Feedback
			if err := json.Unmarshal([]byte(value), &list); err != nil {
				return err
			}
			s.Feedback = list
			return nil
		},
	},
}

func scalarSetting(key string, field func(*domain.Settings) *string) settingField {
	return settingField{
		key:     key,
		present: func(s *domain.Settings) bool { return !emptySetting(*field(s)) },
		payload: func(s *domain.Settings) any { return *field(s) },
		load: func(s *domain.Settings, raw json.RawMessage) error {
			var v any
			if err := json.Unmarshal(raw, &v); err != nil {
				return err
			}
			switch v := v.(type) {
			case string:
				*field(s) = v
			case nil:
				*field(s) = ""
			default:
				// Non-string scalars are kept in their JSON form.
				*field(s) = string(raw)
			}
			return nil
		},
		stored: func(s *domain.Settings) (string, error) { return *field(s), nil },
		read: func(s *domain.Settings, value string) error {
			*field(s) = value
			return nil
		},
	}
}

// emptySetting reports values that are never exported.
func emptySetting(v string) bool {
	return v == "" || v == "[]" || v == "null"
}

func lookupSetting(key string) (settingField, bool) {
	for _, f := range settingFields {
		if f.key == key {
			return f, true
		}
	}
	return settingField{}, false
}

// settingPayload is the DATA_JSON of a SETTINGS row.
type settingPayload struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

func encodeSetting(f settingField, s *domain.Settings) (string, error) {
	value, err := marshalCompact(f.payload(s))
	if err != nil {
		return "", fmt.Errorf("failed to encode setting %s: %w", f.key, err)
	}
	return marshalCompact(settingPayload{Key: f.key, Value: json.RawMessage(value)})
}
