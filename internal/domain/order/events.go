package order

import "time"

// CreatedEvent is emitted after checkout persists a new order.
type CreatedEvent struct {
	OrderID     string
	BuyerID     string
	TotalAmount uint64
	LineCount   int
	OccurredAt  time.Time
}

func (CreatedEvent) EventName() string { return "order.created" }

func NewCreatedEvent(o *Order) CreatedEvent {
	return CreatedEvent{
		OrderID:     o.ID,
		BuyerID:     o.BuyerID,
		TotalAmount: o.TotalAmount,
		LineCount:   len(o.Lines),
		OccurredAt:  time.Now().UTC(),
	}
}
