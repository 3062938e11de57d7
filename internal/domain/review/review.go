package review

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("review: not found")
	ErrInvalidRating   = errors.New("review: rating must be between 1 and 5")
	ErrProductRequired = errors.New("review: product id is required")
	ErrUserRequired    = errors.New("review: user id is required")
)

const (
	MinRating uint32 = 1
	MaxRating uint32 = 5
)

// Review is append-only; a product's aggregate rating is recomputed from all
// of its reviews rather than updated incrementally.
type Review struct {
	ID        string
	ProductID string
	UserID    string
	Rating    uint32
	Comment   string
	CreatedAt time.Time
}

func New(id, productID, userID string, rating uint32, comment string) (*Review, error) {
	if productID == "" {
		return nil, ErrProductRequired
	}
	if userID == "" {
		return nil, ErrUserRequired
	}
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}
	return &Review{
		ID:        id,
		ProductID: productID,
		UserID:    userID,
		Rating:    rating,
		Comment:   comment,
		CreatedAt: time.Now().UTC(),
	}, nil
}

func (r *Review) Clone() *Review {
	if r == nil {
		return nil
	}
	clone := *r
	return &clone
}
