// Package product implements the single-product operations: listing,
// bidding, sale, disputes, and detail updates. Every mutation re-reads the
// persisted record, applies the state transition on the entity, and writes
// the whole record back.
package product

import (
	"context"
	"fmt"

	"github.com/farmline/marketplace/internal/application"
	"github.com/farmline/marketplace/internal/application/identity"
	"github.com/farmline/marketplace/internal/domain/outbox"
	domain "github.com/farmline/marketplace/internal/domain/product"
	"github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/observability"
	"github.com/farmline/marketplace/internal/observability/logctx"
)

type Service struct {
	products  domain.Repository
	idGen     application.IDGenerator
	publisher outbox.Publisher
	log       observability.Logger
}

func NewService(products domain.Repository, idGen application.IDGenerator, publisher outbox.Publisher, logger observability.Logger) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		products:  products,
		idGen:     idGen,
		publisher: publisher,
		log:       logger.With(observability.F("component", "product_service")),
	}
}

type AddProductInput struct {
	Name        string
	Description string
	Category    domain.Category
	Price       uint64
	Stock       uint64
}

// AddProduct lists a new product owned by the acting seller.
func (s *Service) AddProduct(ctx context.Context, actor identity.Actor, in AddProductInput) (*domain.Product, error) {
	logger := logctx.FromOr(ctx, s.log)

	if actor.Role != user.RoleSeller {
		return nil, identity.ErrUnauthorized
	}

	entity, err := domain.New(s.idGen.NewID(), actor.UserID, in.Name, in.Description, in.Category, in.Price, in.Stock)
	if err != nil {
		return nil, err
	}
	if err := s.products.Save(ctx, entity); err != nil {
		logger.Error("product_save_failed", observability.F("error", err))
		return nil, fmt.Errorf("product: save: %w", err)
	}

	logger.Info("product_listed",
		observability.F("product_id", entity.ID),
		observability.F("seller_id", entity.SellerID),
		observability.F("category", entity.Category),
		observability.F("stock", entity.Stock),
	)
	s.publish(ctx, domain.NewListedEvent(entity))
	return entity, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return s.products.FindByID(ctx, id)
}

// Filter narrows List results. Zero values mean no constraint.
type Filter struct {
	Category domain.Category
	Status   domain.Status
	SellerID string
}

func (s *Service) List(ctx context.Context, f Filter) ([]*domain.Product, error) {
	all, err := s.products.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*domain.Product, 0, len(all))
	for _, p := range all {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		if f.SellerID != "" && p.SellerID != f.SellerID {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

// PlaceBid binds the acting consumer as the bidder of a new cycle.
func (s *Service) PlaceBid(ctx context.Context, actor identity.Actor, productID string) error {
	if actor.Role != user.RoleConsumer {
		return identity.ErrUnauthorized
	}
	return s.mutate(ctx, productID, "bid_placed", func(p *domain.Product) (outbox.Event, error) {
		if err := p.PlaceBid(actor.UserID); err != nil {
			return nil, err
		}
		return domain.NewBidPlacedEvent(p), nil
	})
}

// AcceptBid accepts the pending bid. Seller of record only.
func (s *Service) AcceptBid(ctx context.Context, actor identity.Actor, productID string) error {
	return s.mutate(ctx, productID, "bid_accepted", func(p *domain.Product) (outbox.Event, error) {
		if err := s.authorizeSeller(actor, p); err != nil {
			return nil, err
		}
		if err := p.AcceptBid(); err != nil {
			return nil, err
		}
		return domain.NewBidAcceptedEvent(p), nil
	})
}

// MarkSold completes the accepted bid. Seller of record only.
func (s *Service) MarkSold(ctx context.Context, actor identity.Actor, productID string) error {
	return s.mutate(ctx, productID, "product_sold", func(p *domain.Product) (outbox.Event, error) {
		if err := s.authorizeSeller(actor, p); err != nil {
			return nil, err
		}
		if err := p.MarkSold(); err != nil {
			return nil, err
		}
		return domain.NewSoldEvent(p), nil
	})
}

// RaiseDispute opens a dispute. Allowed to the seller of record or the buyer
// of the current cycle.
func (s *Service) RaiseDispute(ctx context.Context, actor identity.Actor, productID string) error {
	return s.mutate(ctx, productID, "dispute_raised", func(p *domain.Product) (outbox.Event, error) {
		if actor.UserID != p.SellerID && actor.UserID != p.BuyerID {
			return nil, identity.ErrUnauthorized
		}
		if err := p.RaiseDispute(); err != nil {
			return nil, err
		}
		return domain.NewDisputeRaisedEvent(p, actor.UserID), nil
	})
}

// ResolveDispute closes the open dispute in favour of seller or buyer.
// Seller of record only (no arbiter role in this system).
func (s *Service) ResolveDispute(ctx context.Context, actor identity.Actor, productID string, favorSeller bool) error {
	return s.mutate(ctx, productID, "dispute_resolved", func(p *domain.Product) (outbox.Event, error) {
		if err := s.authorizeSeller(actor, p); err != nil {
			return nil, err
		}
		if err := p.ResolveDispute(favorSeller); err != nil {
			return nil, err
		}
		return domain.NewDisputeResolvedEvent(p, favorSeller), nil
	})
}

// UpdateInput carries optional field updates; nil means leave unchanged.
type UpdateInput struct {
	Name        *string
	Description *string
	Category    *domain.Category
	Price       *uint64
	Stock       *uint64
}

// Update edits listing details. Seller of record only.
func (s *Service) Update(ctx context.Context, actor identity.Actor, productID string, in UpdateInput) (*domain.Product, error) {
	logger := logctx.FromOr(ctx, s.log)

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeSeller(actor, p); err != nil {
		return nil, err
	}

	if in.Name != nil {
		if err := p.SetName(*in.Name); err != nil {
			return nil, err
		}
	}
	if in.Description != nil {
		p.SetDescription(*in.Description)
	}
	if in.Category != nil {
		if err := p.SetCategory(*in.Category); err != nil {
			return nil, err
		}
	}
	if in.Price != nil {
		p.SetPrice(*in.Price)
	}
	if in.Stock != nil {
		p.SetStock(*in.Stock)
	}

	if err := s.products.Save(ctx, p); err != nil {
		logger.Error("product_save_failed",
			observability.F("product_id", productID),
			observability.F("error", err),
		)
		return nil, fmt.Errorf("product: save: %w", err)
	}
	logger.Info("product_updated", observability.F("product_id", productID))
	return p, nil
}

func (s *Service) authorizeSeller(actor identity.Actor, p *domain.Product) error {
	if actor.Role != user.RoleSeller || actor.UserID != p.SellerID {
		return identity.ErrUnauthorized
	}
	return nil
}

// mutate runs the read-validate-write cycle for one product and publishes
// the resulting event on success.
func (s *Service) mutate(ctx context.Context, productID, logEvent string, step func(p *domain.Product) (outbox.Event, error)) error {
	logger := logctx.FromOr(ctx, s.log)

	p, err := s.products.FindByID(ctx, productID)
	if err != nil {
		return err
	}
	event, err := step(p)
	if err != nil {
		return err
	}
	if err := s.products.Save(ctx, p); err != nil {
		logger.Error("product_save_failed",
			observability.F("product_id", productID),
			observability.F("error", err),
		)
		return fmt.Errorf("product: save: %w", err)
	}

	logger.Info(logEvent,
		observability.F("product_id", productID),
		observability.F("status", p.Status),
	)
	s.publish(ctx, event)
	return nil
}

func (s *Service) publish(ctx context.Context, e outbox.Event) {
	if s.publisher == nil || e == nil {
		return
	}
	if err := s.publisher.Publish(ctx, e); err != nil {
		logctx.FromOr(ctx, s.log).Warn("event_publish_failed",
			observability.F("event", e.EventName()),
			observability.F("error", err),
		)
	}
}
