package product_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/farmline/marketplace/internal/application/identity"
	appproduct "github.com/farmline/marketplace/internal/application/product"
	domain "github.com/farmline/marketplace/internal/domain/product"
	"github.com/farmline/marketplace/internal/domain/user"
	"github.com/farmline/marketplace/internal/infrastructure/persistence"
	"github.com/farmline/marketplace/internal/storage/memory"
)

type seqIDGen struct{ n int }

func (g *seqIDGen) NewID() string {
	g.n++
	return fmt.Sprintf("id-%d", g.n)
}

var (
	seller   = identity.Actor{UserID: "seller-1", Role: user.RoleSeller}
	consumer = identity.Actor{UserID: "buyer-1", Role: user.RoleConsumer}
)

func newService(t *testing.T) (*appproduct.Service, *persistence.ProductRepository) {
	t.Helper()
	repo := persistence.NewProductRepository(memory.New())
	return appproduct.NewService(repo, &seqIDGen{}, nil, nil), repo
}

func addProduct(t *testing.T, svc *appproduct.Service, stock uint64) *domain.Product {
	t.Helper()
	p, err := svc.AddProduct(context.Background(), seller, appproduct.AddProductInput{
		Name:     "Carrots",
		Category: domain.CategoryVegetables,
		Price:    1000,
		Stock:    stock,
	})
	require.NoError(t, err)
	return p
}

func TestAddProductRequiresSellerRole(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.AddProduct(context.Background(), consumer, appproduct.AddProductInput{
		Name:     "Carrots",
		Category: domain.CategoryVegetables,
		Price:    1000,
		Stock:    5,
	})
	assert.ErrorIs(t, err, identity.ErrUnauthorized)
}

func TestAddProductPersists(t *testing.T) {
	svc, repo := newService(t)

	p := addProduct(t, svc, 5)
	assert.Equal(t, seller.UserID, p.SellerID)
	assert.Equal(t, domain.StatusAvailable, p.Status)

	stored, err := repo.FindByID(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.Name, stored.Name)
	assert.Equal(t, uint64(5), stored.Stock)
}

func TestGetUnknownProduct(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestListFilters(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.AddProduct(ctx, seller, appproduct.AddProductInput{
		Name: "Carrots", Category: domain.CategoryVegetables, Price: 1000, Stock: 5,
	})
	require.NoError(t, err)
	_, err = svc.AddProduct(ctx, seller, appproduct.AddProductInput{
		Name: "Apples", Category: domain.CategoryFruits, Price: 500, Stock: 0,
	})
	require.NoError(t, err)

	all, err := svc.List(ctx, appproduct.Filter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fruits, err := svc.List(ctx, appproduct.Filter{Category: domain.CategoryFruits})
	require.NoError(t, err)
	require.Len(t, fruits, 1)
	assert.Equal(t, "Apples", fruits[0].Name)

	outOfStock, err := svc.List(ctx, appproduct.Filter{Status: domain.StatusOutOfStock})
	require.NoError(t, err)
	require.Len(t, outOfStock, 1)
	assert.Equal(t, "Apples", outOfStock[0].Name)
}

func TestPlaceBidRequiresConsumerRole(t *testing.T) {
	svc, _ := newService(t)
	p := addProduct(t, svc, 5)

	err := svc.PlaceBid(context.Background(), seller, p.ID)
	assert.ErrorIs(t, err, identity.ErrUnauthorized)
}

func TestPlaceBidBindsBuyer(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	p := addProduct(t, svc, 5)

	require.NoError(t, svc.PlaceBid(ctx, consumer, p.ID))

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBidPlaced, stored.Status)
	assert.Equal(t, consumer.UserID, stored.BuyerID)
}

func TestSecondBidConflicts(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := addProduct(t, svc, 5)

	require.NoError(t, svc.PlaceBid(ctx, consumer, p.ID))

	other := identity.Actor{UserID: "buyer-2", Role: user.RoleConsumer}
	err := svc.PlaceBid(ctx, other, p.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyBid)
}

func TestAcceptBidSellerOfRecordOnly(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := addProduct(t, svc, 5)
	require.NoError(t, svc.PlaceBid(ctx, consumer, p.ID))

	impostor := identity.Actor{UserID: "seller-2", Role: user.RoleSeller}
	err := svc.AcceptBid(ctx, impostor, p.ID)
	assert.ErrorIs(t, err, identity.ErrUnauthorized)

	require.NoError(t, svc.AcceptBid(ctx, seller, p.ID))
	// Accepting again is a no-op, not an error.
	require.NoError(t, svc.AcceptBid(ctx, seller, p.ID))
}

func TestFullSaleCycle(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	p := addProduct(t, svc, 5)

	require.NoError(t, svc.PlaceBid(ctx, consumer, p.ID))
	require.NoError(t, svc.AcceptBid(ctx, seller, p.ID))
	require.NoError(t, svc.MarkSold(ctx, seller, p.ID))

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSold, stored.Status)
	assert.Equal(t, consumer.UserID, stored.BuyerID)

	// The next bid starts a fresh cycle with a new buyer.
	other := identity.Actor{UserID: "buyer-2", Role: user.RoleConsumer}
	require.NoError(t, svc.PlaceBid(ctx, other, p.ID))

	stored, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusBidPlaced, stored.Status)
	assert.Equal(t, other.UserID, stored.BuyerID)
}

func TestMarkSoldWithoutAcceptedBid(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := addProduct(t, svc, 5)

	err := svc.MarkSold(ctx, seller, p.ID)
	assert.ErrorIs(t, err, domain.ErrNotAccepted)
}

func TestDisputeLifecycle(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	p := addProduct(t, svc, 5)

	require.NoError(t, svc.PlaceBid(ctx, consumer, p.ID))

	stranger := identity.Actor{UserID: "buyer-2", Role: user.RoleConsumer}
	err := svc.RaiseDispute(ctx, stranger, p.ID)
	assert.ErrorIs(t, err, identity.ErrUnauthorized)

	require.NoError(t, svc.RaiseDispute(ctx, consumer, p.ID))

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisputeRaised, stored.Status)
	assert.True(t, stored.Disputed)

	err = svc.RaiseDispute(ctx, consumer, p.ID)
	assert.ErrorIs(t, err, domain.ErrDisputeOpen)

	require.NoError(t, svc.ResolveDispute(ctx, seller, p.ID, false))

	stored, err = repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDisputeResolvedToBuyer, stored.Status)
	assert.False(t, stored.Disputed)
	assert.Equal(t, consumer.UserID, stored.BuyerID)
}

func TestResolveWithoutDispute(t *testing.T) {
	svc, _ := newService(t)
	p := addProduct(t, svc, 5)

	err := svc.ResolveDispute(context.Background(), seller, p.ID, true)
	assert.ErrorIs(t, err, domain.ErrNoDispute)
}

func TestUpdateSellerOnly(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()
	p := addProduct(t, svc, 5)

	_, err := svc.Update(ctx, consumer, p.ID, appproduct.UpdateInput{})
	assert.ErrorIs(t, err, identity.ErrUnauthorized)
}

func TestUpdateFields(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()
	p := addProduct(t, svc, 5)

	price := uint64(2500)
	stock := uint64(0)
	name := "Organic Carrots"
	updated, err := svc.Update(ctx, seller, p.ID, appproduct.UpdateInput{
		Name:  &name,
		Price: &price,
		Stock: &stock,
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(2500), updated.Price)
	assert.Equal(t, domain.StatusOutOfStock, updated.Status)

	stored, err := repo.FindByID(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Organic Carrots", stored.Name)
	assert.Equal(t, uint64(0), stored.Stock)
}
