package review_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmline/marketplace/internal/application/identity"
	appreview "github.com/farmline/marketplace/internal/application/review"
	domproduct "github.com/farmline/marketplace/internal/domain/product"
	domain "github.com/farmline/marketplace/internal/domain/review"
	"github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/infrastructure/persistence"
	"github.com/farmline/marketplace/internal/storage/memory"
)

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

var consumer = identity.Actor{UserID: "buyer-1", Role: user.RoleConsumer}

func newFixture(t *testing.T) (*appreview.Service, *persistence.ProductRepository) {
	t.Helper()
	store := memory.New()
	products := persistence.NewProductRepository(store)
	reviews := persistence.NewReviewRepository(store)

	p, err := domproduct.New("p1", "seller-1", "Carrots", "", domproduct.CategoryVegetables, 1000, 5)
	require.NoError(t, err)
	require.NoError(t, products.Save(context.Background(), p))

	return appreview.NewService(products, reviews, &seqIDGen{}, nil, nil), products
}

func addReview(t *testing.T, svc *appreview.Service, actor identity.Actor, rating uint32) {
	t.Helper()
	_, err := svc.AddReview(context.Background(), actor, appreview.AddReviewInput{
		ProductID: "p1",
		Rating:    rating,
	})
	require.NoError(t, err)
}

func TestAddReviewRequiresConsumerRole(t *testing.T) {
	svc, _ := newFixture(t)

	sellerActor := identity.Actor{UserID: "seller-1", Role: user.RoleSeller}
	_, err := svc.AddReview(context.Background(), sellerActor, appreview.AddReviewInput{
		ProductID: "p1",
		Rating:    5,
	})
	assert.ErrorIs(t, err, identity.ErrUnauthorized)
}

func TestAddReviewUnknownProduct(t *testing.T) {
	svc, _ := newFixture(t)

	_, err := svc.AddReview(context.Background(), consumer, appreview.AddReviewInput{
		ProductID: "missing",
		Rating:    5,
	})
	assert.ErrorIs(t, err, domproduct.ErrNotFound)
}

func TestAddReviewRatingBounds(t *testing.T) {
	svc, _ := newFixture(t)

	for _, rating := range []uint32{0, 6} {
		_, err := svc.AddReview(context.Background(), consumer, appreview.AddReviewInput{
			ProductID: "p1",
			Rating:    rating,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidRating)
	}
}

// The product rating is the truncated mean in hundredths: 4, 5, 3 -> 4.00.
func TestRatingAggregation(t *testing.T) {
	svc, products := newFixture(t)
	ctx := context.Background()

	addReview(t, svc, consumer, 4)

	p, err := products.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, uint32(400), p.Rating)

	addReview(t, svc, identity.Actor{UserID: "buyer-2", Role: user.RoleConsumer}, 5)

	p, err = products.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, uint32(450), p.Rating)

	addReview(t, svc, identity.Actor{UserID: "buyer-3", Role: user.RoleConsumer}, 3)

	p, err = products.FindByID(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, uint32(400), p.Rating)
}

// Truncation, not rounding: 4, 4, 5 averages to 4.333... and stores as 433.
func TestRatingTruncates(t *testing.T) {
	svc, products := newFixture(t)

	addReview(t, svc, consumer, 4)
	addReview(t, svc, identity.Actor{UserID: "buyer-2", Role: user.RoleConsumer}, 4)
	addReview(t, svc, identity.Actor{UserID: "buyer-3", Role: user.RoleConsumer}, 5)

	p, err := products.FindByID(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, uint32(433), p.Rating)
}

func TestListByProduct(t *testing.T) {
	svc, _ := newFixture(t)
	ctx := context.Background()

	addReview(t, svc, consumer, 4)
	addReview(t, svc, identity.Actor{UserID: "buyer-2", Role: user.RoleConsumer}, 5)

	reviews, err := svc.ListByProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Len(t, reviews, 2)

	_, err = svc.ListByProduct(ctx, "missing")
	assert.ErrorIs(t, err, domproduct.ErrNotFound)
}
