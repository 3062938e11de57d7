// Package redisstore backs the storage.Store capability with Redis. Each
// collection maps to a single Redis hash, which keeps Get/Put single-command
// atomic and makes ListAll a plain HVALS.
package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/farmline/marketplace/internal/storage"
)

type Store struct {
	client *redis.Client
	prefix string
}

// NewClient builds a Redis client for the given address and verifies
// connectivity.
func NewClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

// New wraps an existing client. The prefix namespaces all collections so
// several deployments can share one Redis instance.
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "marketplace"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) Collection(name string) storage.Collection {
	return &collection{
		client: s.client,
		key:    s.prefix + ":" + name,
	}
}

type collection struct {
	client *redis.Client
	key    string
}

func (c *collection) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := c.client.HGet(ctx, c.key, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis hget %s: %w", c.key, err)
	}
	return value, nil
}

func (c *collection) Put(ctx context.Context, key string, value []byte) error {
	if err := c.client.HSet(ctx, c.key, key, value).Err(); err != nil {
		return fmt.Errorf("redis hset %s: %w", c.key, err)
	}
	return nil
}

func (c *collection) ListAll(ctx context.Context) ([][]byte, error) {
	values, err := c.client.HVals(ctx, c.key).Result()
	if err != nil {
		return nil, fmt.Errorf("redis hvals %s: %w", c.key, err)
	}
	out := make([][]byte, 0, len(values))
	for _, v := range values {
		out = append(out, []byte(v))
	}
	return out, nil
}
