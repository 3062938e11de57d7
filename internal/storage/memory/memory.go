// Package memory provides an in-memory storage.Store used as the default
// backend and as the substitute store in tests.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/farmline/marketplace/internal/storage"
)

type Store struct {
	mu          sync.Mutex
	collections map[string]*collection
}

func New() *Store {
	return &Store{
		collections: make(map[string]*collection),
	}
}

func (s *Store) Collection(name string) storage.Collection {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		c = &collection{items: make(map[string][]byte)}
		s.collections[name] = c
	}
	return c
}

type collection struct {
	mu    sync.RWMutex
	items map[string][]byte
}

func (c *collection) Get(ctx context.Context, key string) ([]byte, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	value, ok := c.items[key]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return cloneBytes(value), nil
}

func (c *collection) Put(ctx context.Context, key string, value []byte) error {
	_ = ctx

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = cloneBytes(value)
	return nil
}

func (c *collection) ListAll(ctx context.Context) ([][]byte, error) {
	_ = ctx

	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.items))
	for k := range c.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	values := make([][]byte, 0, len(keys))
	for _, k := range keys {
		values = append(values, cloneBytes(c.items[k]))
	}
	return values, nil
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	clone := make([]byte, len(b))
	copy(clone, b)
	return clone
}
