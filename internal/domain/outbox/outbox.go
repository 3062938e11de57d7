package outbox

import "context"

// Event is any marketplace domain event, identified by a stable name such as
// "product.sold" or "order.created".
type Event interface {
	EventName() string
}

// Handler processes a published event.
type Handler func(ctx context.Context, e Event) error

// Publisher delivers events to interested subscribers. Publishing is best
// effort from the core's point of view: a failed publish never rolls back
// the state change that produced the event.
type Publisher interface {
	Publish(ctx context.Context, e Event) error
}

// Subscriber registers handlers for event names.
type Subscriber interface {
	Subscribe(eventName string, h Handler)
}
