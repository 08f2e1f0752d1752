package domain

import (
	"encoding/json"
	"reflect"
	"strings"
)

// Extra holds JSON fields a record carries that this version does not know.
// They are written back unchanged so newer data survives a round trip.
type Extra map[string]json.RawMessage

func (t *Task) UnmarshalJSON(data []byte) error {
	type plain Task
	return unmarshalKeepingExtra(data, (*plain)(t), &t.Extra)
}

func (t Task) MarshalJSON() ([]byte, error) {
	type plain Task
	return marshalWithExtra(plain(t), t.Extra)
}

func (g *Goal) UnmarshalJSON(data []byte) error {
	type plain Goal
	return unmarshalKeepingExtra(data, (*plain)(g), &g.Extra)
}

func (g Goal) MarshalJSON() ([]byte, error) {
	type plain Goal
	return marshalWithExtra(plain(g), g.Extra)
}

func (m *WeeklyMetric) UnmarshalJSON(data []byte) error {
	type plain WeeklyMetric
	return unmarshalKeepingExtra(data, (*plain)(m), &m.Extra)
}

func (m WeeklyMetric) MarshalJSON() ([]byte, error) {
	type plain WeeklyMetric
	return marshalWithExtra(plain(m), m.Extra)
}

func (i *Idea) UnmarshalJSON(data []byte) error {
	type plain Idea
	return unmarshalKeepingExtra(data, (*plain)(i), &i.Extra)
}

func (i Idea) MarshalJSON() ([]byte, error) {
	type plain Idea
	return marshalWithExtra(plain(i), i.Extra)
}

func (f *Feedback) UnmarshalJSON(data []byte) error {
	type plain Feedback
	return unmarshalKeepingExtra(data, (*plain)(f), &f.Extra)
}

func (f Feedback) MarshalJSON() ([]byte, error) {
	type plain Feedback
	return marshalWithExtra(plain(f), f.Extra)
}

func unmarshalKeepingExtra(data []byte, v any, extra *Extra) error {
	if err := json.Unmarshal(data, v); err != nil {
		return err
	}

	var all map[string]json.RawMessage
	if err := json.Unmarshal(data, &all); err != nil {
		return err
	}
	for _, name := range jsonFieldNames(reflect.TypeOf(v).Elem()) {
		delete(all, name)
	}

	if len(all) == 0 {
		*extra = nil
		return nil
	}
	*extra = all
	return nil
}

func marshalWithExtra(v any, extra Extra) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil || len(extra) == 0 {
		return data, err
	}

	var known map[string]json.RawMessage
	if err := json.Unmarshal(data, &known); err != nil {
		return nil, err
	}
	merged := make(map[string]json.RawMessage, len(known)+len(extra))
	for k, raw := range extra {
		merged[k] = raw
	}
	for k, raw := range known {
		merged[k] = raw
	}
	return json.Marshal(merged)
}

func jsonFieldNames(t reflect.Type) []string {
	names := make([]string, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		tag := t.Field(i).Tag.Get("json")
		if tag == "" || tag == "-" {
			continue
		}
		name, _, _ := strings.Cut(tag, ",")
		names = append(names, name)
	}
	return names
}
