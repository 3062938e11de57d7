package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	domain "github.com/farmline/marketplace/internal/domain/order"
	"github.com/farmline/marketplace/internal/storage"
)

type OrderRepository struct {
	col storage.Collection
}

func NewOrderRepository(store storage.Store) *OrderRepository {
	return &OrderRepository{col: store.Collection(storage.CollectionOrders)}
}

type orderRecord struct {
	ID          string            `json:"id"`
	BuyerID     string            `json:"buyer_id"`
	Lines       []orderLineRecord `json:"lines"`
	TotalAmount uint64            `json:"total_amount"`
	Status      string            `json:"status"`
	CreatedAt   time.Time         `json:"created_at"`
}

type orderLineRecord struct {
	ProductID string `json:"product_id"`
	Quantity  uint64 `json:"quantity"`
	UnitPrice uint64 `json:"unit_price"`
}

func (r *OrderRepository) Save(ctx context.Context, o *domain.Order) error {
	if o == nil || o.ID == "" {
		return fmt.Errorf("order repository: id is required")
	}
	value, err := json.Marshal(encodeOrder(o))
	if err != nil {
		return fmt.Errorf("order repository: encode %s: %w", o.ID, err)
	}
	return r.col.Put(ctx, o.ID, value)
}

func (r *OrderRepository) FindByID(ctx context.Context, id string) (*domain.Order, error) {
	value, err := r.col.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeOrder(value)
}

func (r *OrderRepository) ListAll(ctx context.Context) ([]*domain.Order, error) {
	values, err := r.col.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Order, 0, len(values))
	for _, value := range values {
		o, derr := decodeOrder(value)
		if derr != nil {
			return nil, derr
		}
		out = append(out, o)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func encodeOrder(o *domain.Order) orderRecord {
	lines := make([]orderLineRecord, 0, len(o.Lines))
	for _, line := range o.Lines {
		lines = append(lines, orderLineRecord{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return orderRecord{
		ID:          o.ID,
		BuyerID:     o.BuyerID,
		Lines:       lines,
		TotalAmount: o.TotalAmount,
		Status:      string(o.Status),
		CreatedAt:   o.CreatedAt,
	}
}

func decodeOrder(value []byte) (*domain.Order, error) {
	var rec orderRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("order repository: decode: %w", err)
	}
	lines := make([]domain.Line, 0, len(rec.Lines))
	for _, line := range rec.Lines {
		lines = append(lines, domain.Line{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
		})
	}
	return &domain.Order{
		ID:          rec.ID,
		BuyerID:     rec.BuyerID,
		Lines:       lines,
		TotalAmount: rec.TotalAmount,
		Status:      domain.Status(rec.Status),
		CreatedAt:   rec.CreatedAt,
	}, nil
}
