package cache

import (
	"errors"
	"sync"
	"time"
)

// ErrMiss is returned when a key is absent or expired.
var ErrMiss = errors.New("cache miss")

type memoryEntry struct {
	value     []byte
	expiresAt time.Time
}

// MemoryService implements CacheService with an in-process map. It is used
// when no memcache address is configured and in tests.
type MemoryService struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
}

// NewMemoryService creates a new in-memory cache service
func NewMemoryService() *MemoryService {
	return &MemoryService{
		entries: make(map[string]memoryEntry),
	}
}

// Get retrieves a value from the in-memory cache
func (m *MemoryService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[key]
	if !ok {
		return nil, ErrMiss
	}
	if !entry.expiresAt.IsZero() && time.Now().After(entry.expiresAt) {
		delete(m.entries, key)
		return nil, ErrMiss
	}
	return entry.value, nil
}

// Set stores a value in the in-memory cache with an expiration time
func (m *MemoryService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	var expiresAt time.Time
	if expiration > 0 {
		expiresAt = time.Now().Add(expiration)
	}
	m.entries[key] = memoryEntry{value: value, expiresAt: expiresAt}
	return nil
}

// Delete removes a value from the in-memory cache
func (m *MemoryService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.entries, key)
	return nil
}
