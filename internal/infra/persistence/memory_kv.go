package persistence

import (
	"context"
	"sync"
	"time"

	"medstaff-dashboard/internal/domain"
	"medstaff-dashboard/internal/domain/ports/repository"
)

var _ repository.KeyValueStore = (*MemoryKV)(nil)

type memEntry struct {
	value   string
	expires time.Time
}

// MemoryKV is a process-local KeyValueStore for dev mode and tests.
type MemoryKV struct {
	mu   sync.RWMutex
	data map[string]memEntry
	now  func() time.Time
}

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{data: make(map[string]memEntry), now: time.Now}
}

func (m *MemoryKV) Get(_ context.Context, key string) (string, error) {
	m.mu.RLock()
	e, ok := m.data[key]
	m.mu.RUnlock()
	if !ok || (!e.expires.IsZero() && !m.now().Before(e.expires)) {
		return "", domain.ErrNotFound
	}
	return e.value, nil
}

func (m *MemoryKV) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := memEntry{value: value}
	if ttl > 0 {
		e.expires = m.now().Add(ttl)
	}
	m.mu.Lock()
	m.data[key] = e
	m.mu.Unlock()
	return nil
}

func (m *MemoryKV) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.data, key)
	m.mu.Unlock()
	return nil
}

// PurgeExpired drops expired entries.
func (m *MemoryKV) PurgeExpired(_ context.Context) (int64, error) {
	now := m.now()
	var n int64
	m.mu.Lock()
	for k, e := range m.data {
		if !e.expires.IsZero() && !now.Before(e.expires) {
			delete(m.data, k)
			n++
		}
	}
	m.mu.Unlock()
	return n, nil
}
