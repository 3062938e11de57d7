package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	domain "github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/storage"
)

type UserRepository struct {
	col storage.Collection
}

func NewUserRepository(store storage.Store) *UserRepository {
	return &UserRepository{col: store.Collection(storage.CollectionUsers)}
}

type userRecord struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Role     string    `json:"role"`
	JoinedAt time.Time `json:"joined_at"`
}

func (r *UserRepository) Save(ctx context.Context, u *domain.User) error {
	if u == nil || u.ID == "" {
		return fmt.Errorf("user repository: id is required")
	}
	value, err := json.Marshal(userRecord{
		ID:       u.ID,
		Name:     u.Name,
		Role:     string(u.Role),
		JoinedAt: u.JoinedAt,
	})
	if err != nil {
		return fmt.Errorf("user repository: encode %s: %w", u.ID, err)
	}
	return r.col.Put(ctx, u.ID, value)
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	value, err := r.col.Get(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return decodeUser(value)
}

func (r *UserRepository) ListAll(ctx context.Context) ([]*domain.User, error) {
	values, err := r.col.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.User, 0, len(values))
	for _, value := range values {
		u, derr := decodeUser(value)
		if derr != nil {
			return nil, derr
		}
		out = append(out, u)
	}
	return out, nil
}

func decodeUser(value []byte) (*domain.User, error) {
	var rec userRecord
	if err := json.Unmarshal(value, &rec); err != nil {
		return nil, fmt.Errorf("user repository: decode: %w", err)
	}
	return &domain.User{
		ID:       rec.ID,
		Name:     rec.Name,
		Role:     domain.Role(rec.Role),
		JoinedAt: rec.JoinedAt,
	}, nil
}
