package cache

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a simple in-memory key-value store with expiration.
// Expired entries are dropped when they are read; there is no sweeper.
type MemoryStore struct {
	mu    sync.Mutex
	items map[string]*memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value      string
	expireTime time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: make(map[string]*memoryItem),
		now:   time.Now,
	}
}

// Set stores a key-value pair with expiration
func (ms *MemoryStore) Set(_ context.Context, key, value string, ttl time.Duration) error {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	ms.items[key] = &memoryItem{
		value:      value,
		expireTime: ms.now().Add(ttl),
	}
	return nil
}

// Get retrieves a value by key (found=false if missing or expired)
func (ms *MemoryStore) Get(_ context.Context, key string) (string, bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[key]
	if !exists {
		return "", false, nil
	}

	if !ms.now().Before(item.expireTime) {
		delete(ms.items, key)
		return "", false, nil
	}

	return item.value, true, nil
}

// Del removes a key and reports whether a live entry was removed
func (ms *MemoryStore) Del(_ context.Context, key string) (bool, error) {
	ms.mu.Lock()
	defer ms.mu.Unlock()

	item, exists := ms.items[key]
	if !exists {
		return false, nil
	}
	delete(ms.items, key)
	return ms.now().Before(item.expireTime), nil
}

// Ping always succeeds
func (ms *MemoryStore) Ping(context.Context) error {
	return nil
}
