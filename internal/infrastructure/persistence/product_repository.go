// Package persistence implements the domain repositories on top of the
// storage.Store capability, marshaling entities to JSON records. Each Save
// replaces the whole record atomically; referential integrity between
// collections is enforced by the application services, not here.
package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	domain "github.com/farmline/marketplace/internal/domain/product"
	"github.com/farmline/marketplace/internal/storage"
)

type ProductRepository struct {
	col storage.Collection
}

func NewProductRepository(store storage.Store) *ProductRepository {
	return &ProductRepository{col: store.Collection(storage.CollectionProducts)}
}

type productRecord struct {
	ID          string    `json:"id"`
	SellerID    string    `json:"seller_id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Category    string    `json:"category"`
	Price       uint64    `json:"price"`
	Stock       uint64    `json:"stock"`
	Rating      uint32    `json:"rating"`
	Status      string    `json:"status"`
	Escrow      uint64    `json:"escrow_balance"`
	Disputed    bool      `json:"disputed"`
	BuyerID     string    `json:"buyer_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *ProductRepository) Save(ctx context.Context, p *domain.Product) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("product repository: id is required")
	}
	value, err := json.Marshal(encodeProduct(p))
	if err != nil {
		return fmt.Errorf("product repository: encode %s: %w", p.ID, err)
	}
	return r.col.Put(ctx, p.ID, value)
}

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	value, err := r.col.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeProduct(value)
}

func (r *ProductRepository) ListAll(ctx context.Context) ([]*domain.Product, error) {
	values, err := r.col.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(values))
	for _, value := range values {
		p, derr := decodeProduct(value)
		if derr != nil {
			return nil, derr
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func encodeProduct(p *domain.Product) productRecord {
	return productRecord{
		ID:          p.ID,
		SellerID:    p.SellerID,
		Name:        p.Name,
		Description: p.Description,
		Category:    string(p.Category),
		Price:       p.Price,
		Stock:       p.Stock,
		Rating:      p.Rating,
		Status:      string(p.Status),
		Escrow:      p.Escrow,
		Disputed:    p.Disputed,
		BuyerID:     p.BuyerID,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func decodeProduct(value []byte) (*domain.Product, error) {
	var rec productRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("product repository: decode: %w", err)
	}
	return &domain.Product{
		ID:          rec.ID,
		SellerID:    rec.SellerID,
		Name:        rec.Name,
		Description: rec.Description,
		Category:    domain.Category(rec.Category),
		Price:       rec.Price,
		Stock:       rec.Stock,
		Rating:      rec.Rating,
		Status:      domain.Status(rec.Status),
		Escrow:      rec.Escrow,
		Disputed:    rec.Disputed,
		BuyerID:     rec.BuyerID,
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}, nil
}
