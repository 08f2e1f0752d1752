// Package kvstore provides the string-keyed blob store the application keeps
// its state in, plus the batching hook used to apply imports atomically.
package kvstore

import (
	"context"
)

// Store reads and writes string blobs by key.
// Get returns ok=false when the key has never been set.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Write is one mutation in a batch. Remove takes precedence over Value.
type Write struct {
	Key    string
	Value  string
	Remove bool
}

// Batcher is implemented by stores that can apply several writes as a unit.
// Either every write is visible afterwards or none is.
type Batcher interface {
	Apply(ctx context.Context, writes []Write) error
}

// ApplyWrites applies writes atomically when s supports batching and
// sequentially otherwise. The returned slice lists the keys that were
// written before a failure, which is always empty for batching stores.
func ApplyWrites(ctx context.Context, s Store, writes []Write) ([]string, error) {
	if b, ok := s.(Batcher); ok {
		if err := b.Apply(ctx, writes); err != nil {
			return nil, err
		}
		return keysOf(writes), nil
	}

	written := make([]string, 0, len(writes))
	for _, w := range writes {
		var err error
		if w.Remove {
			err = s.Remove(ctx, w.Key)
		} else {
			err = s.Set(ctx, w.Key, w.Value)
		}
		if err != nil {
			return written, &WriteError{Key: w.Key, Err: err}
		}
		written = append(written, w.Key)
	}

	return written, nil
}

// WriteError identifies the key whose write failed.
type WriteError struct {
	Key string
	Err error
}

func (e *WriteError) Error() string {
	return "write " + e.Key + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

func keysOf(writes []Write) []string {
	keys := make([]string, len(writes))
	for i, w := range writes {
		keys[i] = w.Key
	}
	return keys
}
