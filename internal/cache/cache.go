// Package cache implements the freshness gate in front of upstream fetches.
// One key per widget, overwritten each cycle; there is deliberately no
// capacity bound or eviction. Stale entries are kept around so a failing
// upstream can still serve the last known copy.
package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

type Gate interface {
	// GetOrFetch returns the stored value for key when it is younger than
	// ttl, otherwise calls fetch, stores the result and returns it. When
	// fetch fails and a stale value exists, the stale value is returned
	// alongside the error so callers can degrade.
	GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) ([]byte, error)) ([]byte, error)

	// Peek returns whatever is stored for key regardless of age.
	Peek(ctx context.Context, key string) ([]byte, bool)
}

type memoryEntry struct {
	data     []byte
	storedAt time.Time
}

// Memory is the default single-process gate.
type Memory struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemory() *Memory {
	return &Memory{
		entries: map[string]memoryEntry{},
		now:     time.Now,
	}
}

func (m *Memory) GetOrFetch(ctx context.Context, key string, ttl time.Duration, fetch func(context.Context) ([]byte, error)) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if entry, ok := m.entries[key]; ok && m.now().Sub(entry.storedAt) < ttl {
		return entry.data, nil
	}

	data, err := fetch(ctx)
	if err != nil {
		if entry, ok := m.entries[key]; ok {
			return entry.data, err
		}
		return nil, err
	}
	m.entries[key] = memoryEntry{data: data, storedAt: m.now()}
	return data, nil
}

func (m *Memory) Peek(ctx context.Context, key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	entry, ok := m.entries[key]
	if !ok {
		return nil, false
	}
	return entry.data, true
}

// GetOrFetch is the typed wrapper over a Gate; values cross the gate as
// JSON blobs so the memory and Redis backends behave identically. The bool
// reports whether any value (fresh or stale) came back; err is non-nil when
// the fetch failed, in which case a true bool means a stale copy was
// served and the caller decides whether stale is acceptable.
func GetOrFetch[T any](ctx context.Context, g Gate, key string, ttl time.Duration, fetch func(context.Context) (T, error)) (T, bool, error) {
	var zero T
	data, err := g.GetOrFetch(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		value, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		return json.Marshal(value)
	})
	if data == nil {
		return zero, false, err
	}
	var out T
	if uerr := json.Unmarshal(data, &out); uerr != nil {
		return zero, false, uerr
	}
	return out, true, err
}

// Peek is the typed stale read.
func Peek[T any](ctx context.Context, g Gate, key string) (T, bool) {
	var zero T
	data, ok := g.Peek(ctx, key)
	if !ok {
		return zero, false
	}
	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return zero, false
	}
	return out, true
}
