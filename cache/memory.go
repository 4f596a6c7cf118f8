package cache

import (
	"context"
	"sync"
	"time"
)

// Ensures Memory implements Store.
var _ Store = (*Memory)(nil)

type entry struct {
	value     []byte
	expiresAt time.Time // zero time = permanent tier
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// Memory is the in-process Store backend: an RWMutex-guarded map with lazy
// expiry. Expired entries are dropped on read; CleanupExpired sweeps the rest.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
}

// NewMemory creates an empty in-process cache.
func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

// Get returns the value stored under key, or false on miss or expiry.
func (m *Memory) Get(_ context.Context, key string) ([]byte, bool, error) {
	now := time.Now()
	m.mu.RLock()
	ent, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if ent.expired(now) {
		m.mu.Lock()
		// Re-check under the write lock; a concurrent Set may have replaced it.
		if cur, ok := m.entries[key]; ok && cur.expired(time.Now()) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, false, nil
	}
	return ent.value, true, nil
}

// Set stores value under key. ttl <= 0 stores it permanently.
func (m *Memory) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = entry{value: value, expiresAt: expiresAt}
	m.mu.Unlock()
	return nil
}

// Delete removes one entry.
func (m *Memory) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Clear removes all entries from both tiers.
func (m *Memory) Clear(_ context.Context) error {
	m.mu.Lock()
	m.entries = make(map[string]entry)
	m.mu.Unlock()
	return nil
}

// CleanupExpired removes all expired TTL-tier entries and returns how many
// were dropped. Permanent entries are never touched.
func (m *Memory) CleanupExpired() int {
	now := time.Now()
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for key, ent := range m.entries {
		if ent.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

// Len returns the number of live entries, expired ones included until swept.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
