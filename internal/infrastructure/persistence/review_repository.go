package persistence

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	domain "github.com/farmline/marketplace/internal/domain/review"
	"github.com/farmline/marketplace/internal/storage"
)

type ReviewRepository struct {
	col storage.Collection
}

func NewReviewRepository(store storage.Store) *ReviewRepository {
	return &ReviewRepository{col: store.Collection(storage.CollectionReviews)}
}

type reviewRecord struct {
	ID        string    `json:"id"`
	ProductID string    `json:"product_id"`
	UserID    string    `json:"user_id"`
	Rating    uint32    `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func (r *ReviewRepository) Save(ctx context.Context, rev *domain.Review) error {
	if rev == nil || rev.ID == "" {
		return fmt.Errorf("review repository: id is required")
	}
	value, err := json.Marshal(reviewRecord{
		ID:        rev.ID,
		ProductID: rev.ProductID,
		UserID:    rev.UserID,
		Rating:    rev.Rating,
		Comment:   rev.Comment,
		CreatedAt: rev.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("review repository: encode %s: %w", rev.ID, err)
	}
	return r.col.Put(ctx, rev.ID, value)
}

func (r *ReviewRepository) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	all, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Review, 0, len(all))
	for _, rev := range all {
		if rev.ProductID == productID {
			out = append(out, rev)
		}
	}
	return out, nil
}

func (r *ReviewRepository) ListAll(ctx context.Context) ([]*domain.Review, error) {
	values, err := r.col.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Review, 0, len(values))
	for _, value := range values {
		var rec reviewRecord
		if err := json.Unmarshal(value, &rec); err != nil {
			return nil, fmt.Errorf("review repository: decode: %w", err)
		}
		out = append(out, &domain.Review{
			ID:        rec.ID,
			ProductID: rec.ProductID,
			UserID:    rec.UserID,
			Rating:    rec.Rating,
			Comment:   rec.Comment,
			CreatedAt: rec.CreatedAt,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}
