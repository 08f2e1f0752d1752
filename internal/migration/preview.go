package migration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/pmezard/go-difflib/difflib"
)

// KeyDiff is the change an import would make to one store key.
type KeyDiff struct {
	Key     string `json:"key" yaml:"key"`
	Changed bool   `json:"changed" yaml:"changed"`
	Diff    string `json:"diff,omitempty" yaml:"diff,omitempty"`
}

// Preview compares the current store with what importing d would write,
// without writing anything.
func (e *Engine) Preview(ctx context.Context, d *Decoded) ([]KeyDiff, error) {
	writes, err := importWrites(&d.Collections)
	if err != nil {
		return nil, err
	}

	diffs := make([]KeyDiff, 0, len(writes))
	for _, w := range writes {
		current, ok, err := e.store.Get(ctx, w.Key)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", w.Key, err)
		}
		if !ok {
			current = ""
		}

		from, to := prettyValue(current), prettyValue(w.Value)
		if from == to {
			diffs = append(diffs, KeyDiff{Key: w.Key})
			continue
		}

		text, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
			A:        difflib.SplitLines(from),
			B:        difflib.SplitLines(to),
			FromFile: "current/" + w.Key,
			ToFile:   "backup/" + w.Key,
			Context:  2,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to diff %s: %w", w.Key, err)
		}
		diffs = append(diffs, KeyDiff{Key: w.Key, Changed: true, Diff: text})
	}

	return diffs, nil
}

// prettyValue indents JSON values so diffs are per record; other values are
// returned as-is.
func prettyValue(v string) string {
	if v == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, []byte(v), "", "  "); err != nil {
		return v + "\n"
	}
	buf.WriteByte('\n')
	return buf.String()
}
