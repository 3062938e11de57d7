// Package storage defines the keyed-storage capability the marketplace core
// is written against. The store offers single-key atomic get/put plus a full
// scan per collection; there are no multi-key transactions, so any
// all-or-nothing behaviour must be built on top of it by validating fully
// before writing.
package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Collection.Get when no value exists for the key.
var ErrNotFound = errors.New("storage: key not found")

// Collection names used by the marketplace.
const (
	CollectionUsers    = "users"
	CollectionProducts = "products"
	CollectionOrders   = "orders"
	CollectionReviews  = "reviews"
)

// Collection is a single keyed namespace of opaque values.
type Collection interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	ListAll(ctx context.Context) ([][]byte, error)
}

// Store hands out named collections. Implementations must replace each value
// atomically as a whole; readers never observe a partially written record.
type Store interface {
	Collection(name string) Collection
}
