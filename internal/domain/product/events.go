package product

import "time"

// Domain events emitted after successful product mutations. They are handled
// by other parts of the system (event relay, projections) and never feed back
// into the aggregate.

type ListedEvent struct {
	ProductID  string
	SellerID   string
	Category   Category
	Price      uint64
	Stock      uint64
	OccurredAt time.Time
}

func (ListedEvent) EventName() string { return "product.listed" }

func NewListedEvent(p *Product) ListedEvent {
	return ListedEvent{
		ProductID:  p.ID,
		SellerID:   p.SellerID,
		Category:   p.Category,
		Price:      p.Price,
		Stock:      p.Stock,
		OccurredAt: time.Now().UTC(),
	}
}

type BidPlacedEvent struct {
	ProductID  string
	BuyerID    string
	OccurredAt time.Time
}

func (BidPlacedEvent) EventName() string { return "product.bid_placed" }

func NewBidPlacedEvent(p *Product) BidPlacedEvent {
	return BidPlacedEvent{
		ProductID:  p.ID,
		BuyerID:    p.BuyerID,
		OccurredAt: time.Now().UTC(),
	}
}

type BidAcceptedEvent struct {
	ProductID  string
	BuyerID    string
	OccurredAt time.Time
}

func (BidAcceptedEvent) EventName() string { return "product.bid_accepted" }

func NewBidAcceptedEvent(p *Product) BidAcceptedEvent {
	return BidAcceptedEvent{
		ProductID:  p.ID,
		BuyerID:    p.BuyerID,
		OccurredAt: time.Now().UTC(),
	}
}

type SoldEvent struct {
	ProductID  string
	SellerID   string
	BuyerID    string
	OccurredAt time.Time
}

func (SoldEvent) EventName() string { return "product.sold" }

func NewSoldEvent(p *Product) SoldEvent {
	return SoldEvent{
		ProductID:  p.ID,
		SellerID:   p.SellerID,
		BuyerID:    p.BuyerID,
		OccurredAt: time.Now().UTC(),
	}
}

type DisputeRaisedEvent struct {
	ProductID  string
	RaisedBy   string
	OccurredAt time.Time
}

func (DisputeRaisedEvent) EventName() string { return "product.dispute_raised" }

func NewDisputeRaisedEvent(p *Product, raisedBy string) DisputeRaisedEvent {
	return DisputeRaisedEvent{
		ProductID:  p.ID,
		RaisedBy:   raisedBy,
		OccurredAt: time.Now().UTC(),
	}
}

type DisputeResolvedEvent struct {
	ProductID   string
	FavorSeller bool
	OccurredAt  time.Time
}

func (DisputeResolvedEvent) EventName() string { return "product.dispute_resolved" }

func NewDisputeResolvedEvent(p *Product, favorSeller bool) DisputeResolvedEvent {
	return DisputeResolvedEvent{
		ProductID:   p.ID,
		FavorSeller: favorSeller,
		OccurredAt:  time.Now().UTC(),
	}
}

type EscrowDepositedEvent struct {
	ProductID  string
	Amount     uint64
	Balance    uint64
	OccurredAt time.Time
}

func (EscrowDepositedEvent) EventName() string { return "escrow.deposited" }

func NewEscrowDepositedEvent(p *Product, amount uint64) EscrowDepositedEvent {
	return EscrowDepositedEvent{
		ProductID:  p.ID,
		Amount:     amount,
		Balance:    p.Escrow,
		OccurredAt: time.Now().UTC(),
	}
}

type EscrowWithdrawnEvent struct {
	ProductID  string
	Amount     uint64
	Balance    uint64
	OccurredAt time.Time
}

func (EscrowWithdrawnEvent) EventName() string { return "escrow.withdrawn" }

func NewEscrowWithdrawnEvent(p *Product, amount uint64) EscrowWithdrawnEvent {
	return EscrowWithdrawnEvent{
		ProductID:  p.ID,
		Amount:     amount,
		Balance:    p.Escrow,
		OccurredAt: time.Now().UTC(),
	}
}

type EscrowReleasedEvent struct {
	ProductID  string
	SellerID   string
	Amount     uint64
	OccurredAt time.Time
}

func (EscrowReleasedEvent) EventName() string { return "escrow.released" }

func NewEscrowReleasedEvent(p *Product, amount uint64) EscrowReleasedEvent {
	return EscrowReleasedEvent{
		ProductID:  p.ID,
		SellerID:   p.SellerID,
		Amount:     amount,
		OccurredAt: time.Now().UTC(),
	}
}
