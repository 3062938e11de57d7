// Package escrow manages the per-product escrow balance: deposits toward a
// purchase, withdrawals, and the post-sale release to the seller.
package escrow

import (
	"context"
	"fmt"

	"github.com/farmline/marketplace/internal/application/identity"
	"github.com/farmline/marketplace/internal/domain/outbox"
	domain "github.com/farmline/marketplace/internal/domain/product"
	"github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/observability"
	"github.com/farmline/marketplace/internal/observability/logctx"
)

type Service struct {
	products  domain.Repository
	publisher outbox.Publisher
	log       observability.Logger
}

func NewService(products domain.Repository, publisher outbox.Publisher, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		products:  products,
		publisher: publisher,
		log:       logger.With(observability.F("component", "escrow_service")),
	}
}

// Deposit adds funds against a product. Consumers only; funds are bound to
// the product, not the payer.
func (s *Service) Deposit(ctx context.Context, actor identity.Actor, productID string, amount uint64) (uint64, error) {
	if actor.Role != user.RoleConsumer {
		return 0, identity.ErrUnauthorized
	}
	return s.mutate(ctx, productID, "escrow_deposited", func(p *domain.Product) (outbox.Event, error) {
		if err := p.Deposit(amount); err != nil {
			return nil, err
		}
		return domain.NewEscrowDepositedEvent(p, amount), nil
	})
}

// Withdraw removes funds. Allowed to the seller of record, or to the buyer
// of record once a dispute has been resolved in the buyer's favour.
func (s *Service) Withdraw(ctx context.Context, actor identity.Actor, productID string, amount uint64) (uint64, error) {
	return s.mutate(ctx, productID, "escrow_withdrawn", func(p *domain.Product) (outbox.Event, error) {
		if !canWithdraw(actor, p) {
			return nil, identity.ErrUnauthorized
		}
		if err := p.Withdraw(amount); err != nil {
			return nil, err
		}
		return domain.NewEscrowWithdrawnEvent(p, amount), nil
	})
}

// Release zeroes the balance of a sold, undisputed product; the transfer to
// the seller happens outside the core. Seller of record only.
func (s *Service) Release(ctx context.Context, actor identity.Actor, productID string) (uint64, error) {
	var released uint64
	_, err := s.mutate(ctx, productID, "escrow_released", func(p *domain.Product) (outbox.Event, error) {
		if actor.Role != user.RoleSeller || actor.UserID != p.SellerID {
			return nil, identity.ErrUnauthorized
		}
		amount, err := p.ReleaseEscrow()
		if err != nil {
			return nil, err
		}
		released = amount
		return domain.NewEscrowReleasedEvent(p, amount), nil
	})
	if err != nil {
		return 0, err
	}
	return released, nil
}

func canWithdraw(actor identity.Actor, p *domain.Product) bool {
	if actor.Role == user.RoleSeller && actor.UserID == p.SellerID {
		return true
	}
	return actor.UserID == p.BuyerID && p.Status == domain.StatusDisputeResolvedToBuyer
}

// mutate runs the read-validate-write cycle and returns the balance after
// the successful write.
func (s *Service) mutate(ctx context.Context, productID, logEvent string, step func(p *domain.Product) (outbox.Event, error)) (uint64, error) {
	logger := logctx.FromOr(ctx, s.log)

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return 0, err
	}
	event, err := step(p)
	if err != nil {
		return 0, err
	}
	if err := s.products.Save(ctx, p); err != nil {
		logger.Error("product_save_failed",
			observability.F("product_id", productID),
			observability.F("error", err),
		)
		return 0, fmt.Errorf("escrow: save: %w", err)
	}

	logger.Info(logEvent,
		observability.F("product_id", productID),
		observability.F("balance", p.Escrow),
	)
	if s.publisher != nil && event != nil {
		if err := s.publisher.Publish(ctx, event); err != nil {
			logger.Warn("event_publish_failed",
				observability.F("event", event.EventName()),
				observability.F("error", err),
			)
		}
	}
	return p.Escrow, nil
}
