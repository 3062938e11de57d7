package product

import (
	"errors"
	"strings"
	"time"

	"github.com/farmline/marketplace/internal/pkg/checked"
)

var (
	ErrNotFound          = errors.New("product: not found")
	ErrNameRequired      = errors.New("product: name is required")
	ErrSellerRequired    = errors.New("product: seller id is required")
	ErrBuyerRequired     = errors.New("product: buyer id is required")
	ErrInvalidQuantity   = errors.New("product: quantity must be greater than zero")
	ErrInsufficientStock = errors.New("product: insufficient stock")
	ErrStockOverflow     = errors.New("product: stock out of range")

	ErrAlreadyBid  = errors.New("product: already bid on")
	ErrNoBid       = errors.New("product: no bid to accept")
	ErrNotAccepted = errors.New("product: bid not accepted or already sold")
	ErrNoDispute   = errors.New("product: no dispute to resolve")
	ErrDisputeOpen = errors.New("product: dispute already open")
)

// Product is the aggregate the marketplace core protects: stock, price, the
// bidding/sale/dispute status, and the escrow balance held against the sale.
// Money is held in cents and stock in units, both unsigned with checked
// arithmetic. Rating is a derived average in hundredths of a star (400 =
// 4.00); zero means unrated.
type Product struct {
	ID          string
	SellerID    string
	Name        string
	Description string
	Category    Category
	Price       uint64
	Stock       uint64
	Rating      uint32
	Status      Status
	Escrow      uint64
	Disputed    bool
	// BuyerID holds the bidder of the current bidding cycle. It survives a
	// sale or dispute resolution (so the buyer of record stays known) and is
	// overwritten when the next cycle starts with a new bid.
	BuyerID   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func New(id, sellerID, name, description string, category Category, price, stock uint64) (*Product, error) {
	if strings.TrimSpace(sellerID) == "" {
		return nil, ErrSellerRequired
	}
	if strings.TrimSpace(name) == "" {
		return nil, ErrNameRequired
	}
	if !category.Valid() {
		return nil, ErrInvalidCategory
	}

	status := StatusAvailable
	if stock == 0 {
		status = StatusOutOfStock
	}

	now := time.Now().UTC()
	return &Product{
		ID:          id,
		SellerID:    sellerID,
		Name:        name,
		Description: description,
		Category:    category,
		Price:       price,
		Stock:       stock,
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// DeductStock removes quantity units. The caller must have validated the
// quantity against current stock when several deductions form one logical
// transaction; this method still refuses any single deduction that would
// underflow.
func (p *Product) DeductStock(quantity uint64) error {
	if quantity == 0 {
		return ErrInvalidQuantity
	}
	remaining, ok := checked.Sub(p.Stock, quantity)
	if !ok {
		return ErrInsufficientStock
	}
	p.Stock = remaining
	if p.Stock == 0 && p.Status == StatusAvailable {
		p.Status = StatusOutOfStock
	}
	p.touch()
	return nil
}

// Restock adds quantity units back.
func (p *Product) Restock(quantity uint64) error {
	if quantity == 0 {
		return ErrInvalidQuantity
	}
	total, ok := checked.Add(p.Stock, quantity)
	if !ok {
		return ErrStockOverflow
	}
	p.Stock = total
	if p.Status == StatusOutOfStock {
		p.Status = StatusAvailable
	}
	p.touch()
	return nil
}

// SetStock replaces the stock count. The listing status is re-derived only
// while the product sits in a plain listed state; an active bid, sale, or
// dispute status is left alone.
func (p *Product) SetStock(quantity uint64) {
	p.Stock = quantity
	switch p.Status {
	case StatusAvailable:
		if quantity == 0 {
			p.Status = StatusOutOfStock
		}
	case StatusOutOfStock:
		if quantity > 0 {
			p.Status = StatusAvailable
		}
	}
	p.touch()
}

func (p *Product) SetPrice(price uint64) {
	p.Price = price
	p.touch()
}

func (p *Product) SetName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	p.Name = name
	p.touch()
	return nil
}

func (p *Product) SetDescription(description string) {
	p.Description = description
	p.touch()
}

func (p *Product) SetCategory(category Category) error {
	if !category.Valid() {
		return ErrInvalidCategory
	}
	p.Category = category
	p.touch()
	return nil
}

// SetRating stores the recomputed review average in hundredths of a star.
func (p *Product) SetRating(hundredths uint32) {
	p.Rating = hundredths
	p.touch()
}

func (p *Product) Clone() *Product {
	if p == nil {
		return nil
	}
	clone := *p
	return &clone
}

func (p *Product) touch() {
	p.UpdatedAt = time.Now().UTC()
}
