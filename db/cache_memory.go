package db

import (
	"context"
	"sync"
	"time"

	"github.com/go-gorm/caches/v4"
)

var _ caches.Cacher = (*memoryCacher)(nil)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

type memoryCacher struct {
	store map[string]memoryEntry
	ttl   time.Duration
	mu    sync.RWMutex
}

func newMemoryCacher(ttl time.Duration) *memoryCacher {
	return &memoryCacher{
		store: make(map[string]memoryEntry),
		ttl:   ttl,
	}
}

func (c *memoryCacher) Get(ctx context.Context, key string, q *caches.Query[any]) (*caches.Query[any], error) {
	c.mu.RLock()
	entry, ok := c.store[key]
	c.mu.RUnlock()

	if !ok {
		return nil, nil
	}

	if !entry.expires.IsZero() && time.Now().After(entry.expires) {
		c.mu.Lock()
		delete(c.store, key)
		c.mu.Unlock()
		return nil, nil
	}

	if err := q.Unmarshal(entry.value); err != nil {
		return nil, err
	}

	return q, nil
}

func (c *memoryCacher) Store(ctx context.Context, key string, val *caches.Query[any]) error {
	res, err := val.Marshal()
	if err != nil {
		return err
	}

	entry := memoryEntry{value: res}
	if c.ttl > 0 {
		entry.expires = time.Now().Add(c.ttl)
	}

	c.mu.Lock()
	c.store[key] = entry
	c.mu.Unlock()

	return nil
}

func (c *memoryCacher) Invalidate(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store = make(map[string]memoryEntry)
	return nil
}
