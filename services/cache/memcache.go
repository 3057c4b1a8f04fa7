package cache

import (
	"errors"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcacheService implements CacheService over a memcached server, so
// rate-limit blocks survive process restarts and are shared between
// scheduled runs on the same host.
type MemcacheService struct {
	client *memcache.Client
}

// NewMemcacheService connects to the memcached server at serverAddr.
func NewMemcacheService(serverAddr string) *MemcacheService {
	return &MemcacheService{
		client: memcache.New(serverAddr),
	}
}

// Get retrieves a value, returning ErrMiss for absent or expired keys.
func (m *MemcacheService) Get(key string) ([]byte, error) {
	item, err := m.client.Get(key)
	if err != nil {
		if errors.Is(err, memcache.ErrCacheMiss) {
			return nil, ErrMiss
		}
		return nil, err
	}
	return item.Value, nil
}

// Set stores a value with an expiration rounded down to whole seconds.
func (m *MemcacheService) Set(key string, value []byte, expiration time.Duration) error {
	return m.client.Set(&memcache.Item{
		Key:        key,
		Value:      value,
		Expiration: int32(expiration.Seconds()),
	})
}

// Delete removes a key. Deleting an absent key is not an error.
func (m *MemcacheService) Delete(key string) error {
	if err := m.client.Delete(key); err != nil && !errors.Is(err, memcache.ErrCacheMiss) {
		return err
	}
	return nil
}
