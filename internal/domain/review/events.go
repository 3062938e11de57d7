package review

import "time"

// AddedEvent is emitted after a review is stored and the product rating has
// been recomputed.
type AddedEvent struct {
	ReviewID   string
	ProductID  string
	UserID     string
	Rating     uint32
	OccurredAt time.Time
}

func (AddedEvent) EventName() string { return "review.added" }

func NewAddedEvent(r *Review) AddedEvent {
	return AddedEvent{
		ReviewID:   r.ID,
		ProductID:  r.ProductID,
		UserID:     r.UserID,
		Rating:     r.Rating,
		OccurredAt: time.Now().UTC(),
	}
}
