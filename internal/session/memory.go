package session

import (
	"context"
	"sync"
	"time"

	"github.com/coder/quartz"
)

type memoryEntry struct {
	value  []byte
	expiry time.Time
}

// MemoryStore is an in-process Store for local development and as the
// fallback when Redis is unreachable. Expiry is lazy on read; callers that
// care about memory run CleanupExpired periodically.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	clock   quartz.Clock
}

// NewMemoryStore creates an in-memory store reading time from clock
func NewMemoryStore(clock quartz.Clock) *MemoryStore {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		clock:   clock,
	}
}

func (m *MemoryStore) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()

	if !ok {
		return nil, ErrNotFound
	}
	if m.clock.Now().After(entry.expiry) {
		// Lazy delete on read
		m.mu.Lock()
		if cur, ok := m.entries[key]; ok && cur.expiry.Equal(entry.expiry) {
			delete(m.entries, key)
		}
		m.mu.Unlock()
		return nil, ErrNotFound
	}

	value := make([]byte, len(entry.value))
	copy(value, entry.value)
	return value, nil
}

func (m *MemoryStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	stored := make([]byte, len(value))
	copy(stored, value)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = memoryEntry{value: stored, expiry: m.clock.Now().Add(ttl)}
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) Exists(ctx context.Context, key string) (bool, error) {
	_, err := m.Get(ctx, key)
	if err == ErrNotFound {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// CleanupExpired removes every expired entry and returns how many it removed
func (m *MemoryStore) CleanupExpired() int {
	now := m.clock.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	count := 0
	for key, entry := range m.entries {
		if now.After(entry.expiry) {
			delete(m.entries, key)
			count++
		}
	}
	return count
}

// Len returns the number of entries, expired or not
func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}
