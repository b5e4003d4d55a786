// Package kv defines the key-value store the tracking engine persists
// through, plus an in-memory implementation used in tests and as the
// degraded non-persistent fallback.
package kv

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Logical keys.
const (
	KeySnapshot = "assessment.snapshot"
	KeyHistory  = "assessment.history"
	KeyJournal  = "journal.entries"
)

// Store is a string-valued key-value store.
// Get reports ok=false for an absent key. Implementations return an error
// only when the backing store itself fails.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Memory is a Store backed by a map.
type Memory struct {
	mu   sync.RWMutex
	data map[string]string
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{data: make(map[string]string)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[key]
	return v, ok, nil
}

func (m *Memory) Set(_ context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *Memory) Remove(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

// Decode parses a persisted record into T and runs check on the result.
// Any shape mismatch (invalid JSON, wrong types, failed check) is returned
// as an error so the caller can fall back to an empty value.
func Decode[T any](raw string, check func(*T) error) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		var zero T
		return zero, fmt.Errorf("unmarshal record: %w", err)
	}
	if check != nil {
		if err := check(&out); err != nil {
			var zero T
			return zero, fmt.Errorf("invalid record: %w", err)
		}
	}
	return out, nil
}

// Encode serializes a record for Set.
func Encode(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("marshal record: %w", err)
	}
	return string(b), nil
}
