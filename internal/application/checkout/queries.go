package checkout

import (
	"context"

	"github.com/farmline/marketplace/internal/application/identity"
	domorder "github.com/farmline/marketplace/internal/domain/order"
)

// Queries answers order lookups. Orders are visible only to their buyer.
type Queries struct {
	orders domorder.Repository
}

func NewQueries(orders domorder.Repository) *Queries {
	return &Queries{orders: orders}
}

func (q *Queries) GetOrder(ctx context.Context, actor identity.Actor, orderID string) (*domorder.Order, error) {
	o, err := q.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.BuyerID != actor.UserID {
		return nil, identity.ErrUnauthorized
	}
	return o, nil
}

func (q *Queries) ListOrders(ctx context.Context, actor identity.Actor) ([]*domorder.Order, error) {
	all, err := q.orders.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domorder.Order, 0, len(all))
	for _, o := range all {
		if o.BuyerID == actor.UserID {
			out = append(out, o)
		}
	}
	return out, nil
}
