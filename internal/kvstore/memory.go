package kvstore

import (
	"context"
	"sort"
	"sync"
)

// Memory is a thread-safe in-memory Store.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

var (
	_ Store   = (*Memory)(nil)
	_ Batcher = (*Memory)(nil)
)

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

// NewMemoryFrom creates an in-memory store seeded with the given entries.
func NewMemoryFrom(entries map[string]string) *Memory {
	m := NewMemory()
	for k, v := range entries {
		m.data[k] = v
	}
	return m
}

// Get retrieves a value by key.
func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

// Set stores a value by key.
func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

// Remove deletes a key. Removing a missing key is not an error.
func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Apply applies all writes under a single lock.
func (m *Memory) Apply(_ context.Context, writes []Write) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, w := range writes {
		if w.Remove {
			delete(m.data, w.Key)
			continue
		}
		m.data[w.Key] = w.Value
	}
	return nil
}

// Keys returns all keys in sorted order.
func (m *Memory) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the number of stored keys.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.data)
}
