package review

import "context"

// Repository stores reviews keyed by id. The backing store has no secondary
// indexes, so ListByProduct is a filtered full scan.
type Repository interface {
	Save(ctx context.Context, review *Review) error
	ListByProduct(ctx context.Context, productID string) ([]*Review, error)
	ListAll(ctx context.Context) ([]*Review, error)
}
