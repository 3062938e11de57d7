package product

import "context"

// Repository is the keyed-storage view of products. Save replaces the whole
// record atomically; callers re-read through FindByID before every mutation
// instead of caching entities across operations.
type Repository interface {
	Save(ctx context.Context, product *Product) error
	FindByID(ctx context.Context, id string) (*Product, error)
	ListAll(ctx context.Context) ([]*Product, error)
}
