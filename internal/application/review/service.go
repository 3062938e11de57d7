// Package review appends product reviews and recomputes the derived rating
// aggregate from scratch after each append.
package review

import (
	"context"
	"fmt"

	"github.com/farmline/marketplace/internal/application"
	"github.com/farmline/marketplace/internal/application/identity"
	"github.com/farmline/marketplace/internal/domain/outbox"
	domproduct "github.com/farmline/marketplace/internal/domain/product"
	domain "github.com/farmline/marketplace/internal/domain/review"
	"github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/observability"
	"github.com/farmline/marketplace/internal/observability/logctx"
)

type Service struct {
	products  domproduct.Repository
	reviews   domain.Repository
	idGen     application.IDGenerator
	publisher outbox.Publisher
	log       observability.Logger
}

func NewService(
	products domproduct.Repository,
	reviews domain.Repository,
	idGen application.IDGenerator,
	publisher outbox.Publisher,
	logger observability.Logger,
) *Service {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Service{
		products:  products,
		reviews:   reviews,
		idGen:     idGen,
		publisher: publisher,
		log:       logger.With(observability.F("component", "review_service")),
	}
}

type AddReviewInput struct {
	ProductID string
	Rating    uint32
	Comment   string
}

// AddReview appends a consumer's review and recomputes the product's rating
// as the truncated mean of all review ratings, in hundredths of a star.
func (s *Service) AddReview(ctx context.Context, actor identity.Actor, in AddReviewInput) (*domain.Review, error) {
	logger := logctx.FromOr(ctx, s.log)

	if actor.Role != user.RoleConsumer {
		return nil, identity.ErrUnauthorized
	}

	p, err := s.products.FindByID(ctx, in.ProductID)
	if err != nil {
		return nil, err
	}

	entity, err := domain.New(s.idGen.NewID(), in.ProductID, actor.UserID, in.Rating, in.Comment)
	if err != nil {
		return nil, err
	}
	if err := s.reviews.Save(ctx, entity); err != nil {
		logger.Error("review_save_failed", observability.F("error", err))
		return nil, fmt.Errorf("review: save: %w", err)
	}

	all, err := s.reviews.ListByProduct(ctx, in.ProductID)
	if err != nil {
		return nil, fmt.Errorf("review: list for rating: %w", err)
	}
	p.SetRating(averageHundredths(all))
	if err := s.products.Save(ctx, p); err != nil {
		logger.Error("rating_write_failed",
			observability.F("product_id", in.ProductID),
			observability.F("error", err),
		)
		return nil, fmt.Errorf("review: persist rating: %w", err)
	}

	logger.Info("review_added",
		observability.F("product_id", in.ProductID),
		observability.F("rating", in.Rating),
		observability.F("product_rating", p.Rating),
	)
	if s.publisher != nil {
		event := domain.NewAddedEvent(entity)
		if perr := s.publisher.Publish(ctx, event); perr != nil {
			logger.Warn("event_publish_failed",
				observability.F("event", event.EventName()),
				observability.F("error", perr),
			)
		}
	}
	return entity, nil
}

func (s *Service) ListByProduct(ctx context.Context, productID string) ([]*domain.Review, error) {
	if _, err := s.products.FindByID(ctx, productID); err != nil {
		return nil, err
	}
	return s.reviews.ListByProduct(ctx, productID)
}

// averageHundredths returns the mean rating scaled by 100, truncated toward
// zero. Ratings are 1..5 so the scaled sum cannot overflow uint64 for any
// realistic review count.
func averageHundredths(reviews []*domain.Review) uint32 {
	if len(reviews) == 0 {
		return 0
	}
	var sum uint64
	for _, r := range reviews {
		sum += uint64(r.Rating)
	}
	return uint32(sum * 100 / uint64(len(reviews)))
}
