package escrow_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appescrow "github.com/farmline/marketplace/internal/application/escrow"
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

type fixture struct {
	escrow   *appescrow.Service
	products *appproduct.Service
	repo     *persistence.ProductRepository
	product  *domain.Product
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := persistence.NewProductRepository(memory.New())
	productSvc := appproduct.NewService(repo, &seqIDGen{}, nil, nil)

	p, err := productSvc.AddProduct(context.Background(), seller, appproduct.AddProductInput{
		Name:     "Carrots",
		Category: domain.CategoryVegetables,
		Price:    1000,
		Stock:    5,
	})
	require.NoError(t, err)

	return &fixture{
		escrow:   appescrow.NewService(repo, nil, nil),
		products: productSvc,
		repo:     repo,
		product:  p,
	}
}

// sell drives the product through bid, acceptance, and sale.
func (f *fixture) sell(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.products.PlaceBid(ctx, consumer, f.product.ID))
	require.NoError(t, f.products.AcceptBid(ctx, seller, f.product.ID))
	require.NoError(t, f.products.MarkSold(ctx, seller, f.product.ID))
}

func TestDepositAccumulates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	balance, err := f.escrow.Deposit(ctx, consumer, f.product.ID, 400)
	require.NoError(t, err)
	assert.Equal(t, uint64(400), balance)

	balance, err = f.escrow.Deposit(ctx, consumer, f.product.ID, 600)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), balance)
}

func TestDepositRequiresConsumerRole(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	for _, actor := range []identity.Actor{
		seller,
		{UserID: "seller-2", Role: user.RoleSeller},
	} {
		_, err := f.escrow.Deposit(ctx, actor, f.product.ID, 500)
		assert.ErrorIs(t, err, identity.ErrUnauthorized)
	}

	stored, err := f.repo.FindByID(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stored.Escrow)
}

func TestDepositZeroAmount(t *testing.T) {
	f := newFixture(t)

	_, err := f.escrow.Deposit(context.Background(), consumer, f.product.ID, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)
}

func TestWithdrawInsufficientLeavesBalance(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.escrow.Deposit(ctx, consumer, f.product.ID, 300)
	require.NoError(t, err)

	_, err = f.escrow.Withdraw(ctx, seller, f.product.ID, 500)
	assert.ErrorIs(t, err, domain.ErrInsufficientFunds)

	stored, err := f.repo.FindByID(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(300), stored.Escrow)
}

func TestWithdrawStrangerDenied(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.escrow.Deposit(ctx, consumer, f.product.ID, 300)
	require.NoError(t, err)

	stranger := identity.Actor{UserID: "buyer-2", Role: user.RoleConsumer}
	_, err = f.escrow.Withdraw(ctx, stranger, f.product.ID, 100)
	assert.ErrorIs(t, err, identity.ErrUnauthorized)
}

func TestWithdrawBuyerAfterResolutionInBuyerFavor(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sell(t)

	_, err := f.escrow.Deposit(ctx, consumer, f.product.ID, 1000)
	require.NoError(t, err)

	// Buyer cannot pull funds back while the sale stands.
	_, err = f.escrow.Withdraw(ctx, consumer, f.product.ID, 1000)
	assert.ErrorIs(t, err, identity.ErrUnauthorized)

	require.NoError(t, f.products.RaiseDispute(ctx, consumer, f.product.ID))
	require.NoError(t, f.products.ResolveDispute(ctx, seller, f.product.ID, false))

	balance, err := f.escrow.Withdraw(ctx, consumer, f.product.ID, 1000)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), balance)
}

func TestReleaseBeforeSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.escrow.Deposit(ctx, consumer, f.product.ID, 1000)
	require.NoError(t, err)

	_, err = f.escrow.Release(ctx, seller, f.product.ID)
	assert.ErrorIs(t, err, domain.ErrNotSold)
}

func TestReleaseAfterSale(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sell(t)

	_, err := f.escrow.Deposit(ctx, consumer, f.product.ID, 1000)
	require.NoError(t, err)

	released, err := f.escrow.Release(ctx, seller, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), released)

	stored, err := f.repo.FindByID(ctx, f.product.ID)
	require.NoError(t, err)
	assert.Equal(t, uint64(0), stored.Escrow)
}

func TestReleaseBlockedByOpenDispute(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sell(t)

	_, err := f.escrow.Deposit(ctx, consumer, f.product.ID, 1000)
	require.NoError(t, err)
	require.NoError(t, f.products.RaiseDispute(ctx, consumer, f.product.ID))

	_, err = f.escrow.Release(ctx, seller, f.product.ID)
	assert.ErrorIs(t, err, domain.ErrNotSold)
}

func TestReleaseSellerOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.sell(t)

	_, err := f.escrow.Release(ctx, consumer, f.product.ID)
	assert.ErrorIs(t, err, identity.ErrUnauthorized)
}
