package product

// Status is the closed listing-lifecycle enumeration. The dispute flag is
// tied to it: Disputed is true exactly while the status is
// StatusDisputeRaised.
type Status string

const (
	StatusAvailable               Status = "available"
	StatusOutOfStock              Status = "out_of_stock"
	StatusBidPlaced               Status = "bid_placed"
	StatusBidAccepted             Status = "bid_accepted"
	StatusSold                    Status = "sold"
	StatusDisputeRaised           Status = "dispute_raised"
	StatusDisputeResolvedToSeller Status = "dispute_resolved_to_seller"
	StatusDisputeResolvedToBuyer  Status = "dispute_resolved_to_buyer"
)

func (s Status) Valid() bool {
	switch s {
	case StatusAvailable, StatusOutOfStock, StatusBidPlaced, StatusBidAccepted,
		StatusSold, StatusDisputeRaised, StatusDisputeResolvedToSeller, StatusDisputeResolvedToBuyer:
		return true
	default:
		return false
	}
}

// listingState implements the state pattern for the bidding/sale/dispute
// lifecycle. Each transition either returns the successor state after
// mutating the product, or an error leaving the product untouched.
type listingState interface {
	Status() Status
	PlaceBid(p *Product, buyerID string) (listingState, error)
	AcceptBid(p *Product) (listingState, error)
	MarkSold(p *Product) (listingState, error)
	RaiseDispute(p *Product) (listingState, error)
	ResolveDispute(p *Product, favorSeller bool) (listingState, error)
}

func stateFor(p *Product) listingState {
	switch p.Status {
	case StatusBidPlaced:
		return bidPlacedState{}
	case StatusBidAccepted:
		return bidAcceptedState{}
	case StatusSold:
		return soldState{}
	case StatusDisputeRaised:
		return disputeRaisedState{}
	case StatusDisputeResolvedToSeller:
		return disputeResolvedState{toSeller: true}
	case StatusDisputeResolvedToBuyer:
		return disputeResolvedState{toSeller: false}
	default:
		return listedState{status: p.Status}
	}
}

// PlaceBid binds buyerID as the bidder of a new cycle. It is rejected while
// a cycle is active (a bid is pending or accepted) or a dispute is open.
func (p *Product) PlaceBid(buyerID string) error {
	if buyerID == "" {
		return ErrBuyerRequired
	}
	return p.transition(func(s listingState) (listingState, error) {
		return s.PlaceBid(p, buyerID)
	})
}

// AcceptBid moves a pending bid to accepted.
func (p *Product) AcceptBid() error {
	return p.transition(func(s listingState) (listingState, error) {
		return s.AcceptBid(p)
	})
}

// MarkSold completes an accepted bid.
func (p *Product) MarkSold() error {
	return p.transition(func(s listingState) (listingState, error) {
		return s.MarkSold(p)
	})
}

// RaiseDispute opens a dispute from any state except an already-open one.
func (p *Product) RaiseDispute() error {
	return p.transition(func(s listingState) (listingState, error) {
		return s.RaiseDispute(p)
	})
}

// ResolveDispute closes an open dispute in favour of the seller or the buyer.
func (p *Product) ResolveDispute(favorSeller bool) error {
	return p.transition(func(s listingState) (listingState, error) {
		return s.ResolveDispute(p, favorSeller)
	})
}

func (p *Product) transition(step func(listingState) (listingState, error)) error {
	next, err := step(stateFor(p))
	if err != nil {
		return err
	}
	p.Status = next.Status()
	p.touch()
	return nil
}

// beginBid starts a bidding cycle, overwriting any buyer left over from a
// completed cycle.
func beginBid(p *Product, buyerID string) (listingState, error) {
	p.BuyerID = buyerID
	return bidPlacedState{}, nil
}

func openDispute(p *Product) (listingState, error) {
	p.Disputed = true
	return disputeRaisedState{}, nil
}

// listedState covers Available and OutOfStock: listed, no active bid.
type listedState struct{ status Status }

func (s listedState) Status() Status { return s.status }

func (listedState) PlaceBid(p *Product, buyerID string) (listingState, error) {
	return beginBid(p, buyerID)
}

func (listedState) AcceptBid(*Product) (listingState, error) {
	return nil, ErrNoBid
}

func (listedState) MarkSold(*Product) (listingState, error) {
	return nil, ErrNotAccepted
}

func (listedState) RaiseDispute(p *Product) (listingState, error) {
	return openDispute(p)
}

func (listedState) ResolveDispute(*Product, bool) (listingState, error) {
	return nil, ErrNoDispute
}

type bidPlacedState struct{}

func (bidPlacedState) Status() Status { return StatusBidPlaced }

func (bidPlacedState) PlaceBid(*Product, string) (listingState, error) {
	return nil, ErrAlreadyBid
}

func (bidPlacedState) AcceptBid(*Product) (listingState, error) {
	return bidAcceptedState{}, nil
}

func (bidPlacedState) MarkSold(*Product) (listingState, error) {
	return nil, ErrNotAccepted
}

func (bidPlacedState) RaiseDispute(p *Product) (listingState, error) {
	return openDispute(p)
}

func (bidPlacedState) ResolveDispute(*Product, bool) (listingState, error) {
	return nil, ErrNoDispute
}

type bidAcceptedState struct{}

func (bidAcceptedState) Status() Status { return StatusBidAccepted }

func (bidAcceptedState) PlaceBid(*Product, string) (listingState, error) {
	return nil, ErrAlreadyBid
}

func (bidAcceptedState) AcceptBid(*Product) (listingState, error) {
	// Re-accepting an already-accepted bid is a no-op.
	return bidAcceptedState{}, nil
}

func (bidAcceptedState) MarkSold(*Product) (listingState, error) {
	return soldState{}, nil
}

func (bidAcceptedState) RaiseDispute(p *Product) (listingState, error) {
	return openDispute(p)
}

func (bidAcceptedState) ResolveDispute(*Product, bool) (listingState, error) {
	return nil, ErrNoDispute
}

type soldState struct{}

func (soldState) Status() Status { return StatusSold }

func (soldState) PlaceBid(p *Product, buyerID string) (listingState, error) {
	return beginBid(p, buyerID)
}

func (soldState) AcceptBid(*Product) (listingState, error) {
	return nil, ErrNoBid
}

func (soldState) MarkSold(*Product) (listingState, error) {
	return nil, ErrNotAccepted
}

func (soldState) RaiseDispute(p *Product) (listingState, error) {
	return openDispute(p)
}

func (soldState) ResolveDispute(*Product, bool) (listingState, error) {
	return nil, ErrNoDispute
}

type disputeRaisedState struct{}

func (disputeRaisedState) Status() Status { return StatusDisputeRaised }

func (disputeRaisedState) PlaceBid(*Product, string) (listingState, error) {
	return nil, ErrDisputeOpen
}

func (disputeRaisedState) AcceptBid(*Product) (listingState, error) {
	return nil, ErrDisputeOpen
}

func (disputeRaisedState) MarkSold(*Product) (listingState, error) {
	return nil, ErrDisputeOpen
}

func (disputeRaisedState) RaiseDispute(*Product) (listingState, error) {
	return nil, ErrDisputeOpen
}

func (disputeRaisedState) ResolveDispute(p *Product, favorSeller bool) (listingState, error) {
	p.Disputed = false
	return disputeResolvedState{toSeller: favorSeller}, nil
}

type disputeResolvedState struct{ toSeller bool }

func (s disputeResolvedState) Status() Status {
	if s.toSeller {
		return StatusDisputeResolvedToSeller
	}
	return StatusDisputeResolvedToBuyer
}

func (disputeResolvedState) PlaceBid(p *Product, buyerID string) (listingState, error) {
	return beginBid(p, buyerID)
}

func (disputeResolvedState) AcceptBid(*Product) (listingState, error) {
	return nil, ErrNoBid
}

func (disputeResolvedState) MarkSold(*Product) (listingState, error) {
	return nil, ErrNotAccepted
}

func (disputeResolvedState) RaiseDispute(p *Product) (listingState, error) {
	return openDispute(p)
}

func (disputeResolvedState) ResolveDispute(*Product, bool) (listingState, error) {
	return nil, ErrNoDispute
}
