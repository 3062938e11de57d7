package order

import (
	"errors"
	"time"
)

var (
	ErrNotFound        = errors.New("order: not found")
	ErrEmptyCart       = errors.New("order: cart is empty")
	ErrInvalidQuantity = errors.New("order: quantity must be greater than zero")
	ErrBuyerRequired   = errors.New("order: buyer id is required")
	ErrTotalOverflow   = errors.New("order: total amount out of range")
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusShipped   Status = "shipped"
	StatusDelivered Status = "delivered"
)

// Line captures one cart line with the unit price read at checkout time.
// Lines are immutable once the order exists.
type Line struct {
	ProductID string
	Quantity  uint64
	UnitPrice uint64
}

// Order is created only by the checkout engine and never mutated by the core
// afterwards. TotalAmount is the checked sum of quantity*unit price across
// lines, computed once at creation.
type Order struct {
	ID          string
	BuyerID     string
	Lines       []Line
	TotalAmount uint64
	Status      Status
	CreatedAt   time.Time
}

func New(id, buyerID string, lines []Line, totalAmount uint64) (*Order, error) {
	if buyerID == "" {
		return nil, ErrBuyerRequired
	}
	if len(lines) == 0 {
		return nil, ErrEmptyCart
	}
	for _, line := range lines {
		if line.Quantity == 0 {
			return nil, ErrInvalidQuantity
		}
	}
	return &Order{
		ID:          id,
		BuyerID:     buyerID,
		Lines:       append([]Line(nil), lines...),
		TotalAmount: totalAmount,
		Status:      StatusPending,
		CreatedAt:   time.Now().UTC(),
	}, nil
}

func (o *Order) Clone() *Order {
	if o == nil {
		return nil
	}
	clone := *o
	clone.Lines = append([]Line(nil), o.Lines...)
	return &clone
}
