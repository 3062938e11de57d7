package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	domoutbox "github.com/farmline/marketplace/internal/domain/outbox"
	"github.com/farmline/marketplace/internal/observability"
)

// RelayedEventNames lists every domain event the relay exports.
var RelayedEventNames = []string{
	"product.listed",
	"product.bid_placed",
	"product.bid_accepted",
	"product.sold",
	"product.dispute_raised",
	"product.dispute_resolved",
	"escrow.deposited",
	"escrow.withdrawn",
	"escrow.released",
	"order.created",
	"review.added",
}

type envelope struct {
	Event      string          `json:"event"`
	OccurredAt time.Time       `json:"occurred_at"`
	Payload    json.RawMessage `json:"payload"`
}

// Relay subscribes to the in-process bus and forwards each event to Kafka as
// a JSON envelope keyed by event name.
type Relay struct {
	producer *Producer
	log      observability.Logger
}

func NewRelay(sub domoutbox.Subscriber, producer *Producer, logger observability.Logger) *Relay {
	if logger == nil {
		logger = observability.NopLogger()
	}
	r := &Relay{
		producer: producer,
		log:      logger.With(observability.F("component", "kafka_relay")),
	}
	for _, name := range RelayedEventNames {
		sub.Subscribe(name, r.handle)
	}
	return r
}

func (r *Relay) handle(ctx context.Context, e domoutbox.Event) error {
	payload, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("kafka relay: encode %s: %w", e.EventName(), err)
	}
	value, err := json.Marshal(envelope{
		Event:      e.EventName(),
		OccurredAt: time.Now().UTC(),
		Payload:    payload,
	})
	if err != nil {
		return fmt.Errorf("kafka relay: envelope %s: %w", e.EventName(), err)
	}
	if err := r.producer.Publish(ctx, []byte(e.EventName()), value); err != nil {
		r.log.Warn("relay_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err),
		)
		return err
	}
	return nil
}
