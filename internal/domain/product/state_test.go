package product_test

import (
	"testing"

	"github.com/farmline/marketplace/internal/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBidCycle(t *testing.T) {
	p := newProduct(t, 5)

	require.NoError(t, p.PlaceBid("buyer-1"))
	assert.Equal(t, product.StatusBidPlaced, p.Status)
	assert.Equal(t, "buyer-1", p.BuyerID)

	require.NoError(t, p.AcceptBid())
	assert.Equal(t, product.StatusBidAccepted, p.Status)

	require.NoError(t, p.MarkSold())
	assert.Equal(t, product.StatusSold, p.Status)
	// The buyer of record survives the sale until the next cycle starts.
	assert.Equal(t, "buyer-1", p.BuyerID)
}

func TestPlaceBidTwiceConflicts(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.PlaceBid("buyer-1"))

	err := p.PlaceBid("buyer-2")
	assert.ErrorIs(t, err, product.ErrAlreadyBid)
	assert.Equal(t, "buyer-1", p.BuyerID)
	assert.Equal(t, product.StatusBidPlaced, p.Status)
}

func TestPlaceBidRequiresBuyer(t *testing.T) {
	p := newProduct(t, 5)
	assert.ErrorIs(t, p.PlaceBid(""), product.ErrBuyerRequired)
}

func TestAcceptBidWithoutBid(t *testing.T) {
	p := newProduct(t, 5)
	assert.ErrorIs(t, p.AcceptBid(), product.ErrNoBid)
}

func TestAcceptBidIsIdempotent(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.PlaceBid("buyer-1"))
	require.NoError(t, p.AcceptBid())
	require.NoError(t, p.AcceptBid())
	assert.Equal(t, product.StatusBidAccepted, p.Status)
}

func TestMarkSoldRequiresAcceptedBid(t *testing.T) {
	p := newProduct(t, 5)
	assert.ErrorIs(t, p.MarkSold(), product.ErrNotAccepted)

	require.NoError(t, p.PlaceBid("buyer-1"))
	assert.ErrorIs(t, p.MarkSold(), product.ErrNotAccepted)

	require.NoError(t, p.AcceptBid())
	require.NoError(t, p.MarkSold())
	assert.ErrorIs(t, p.MarkSold(), product.ErrNotAccepted)
}

func TestNewCycleAfterSale(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.PlaceBid("buyer-1"))
	require.NoError(t, p.AcceptBid())
	require.NoError(t, p.MarkSold())

	require.NoError(t, p.PlaceBid("buyer-2"))
	assert.Equal(t, product.StatusBidPlaced, p.Status)
	assert.Equal(t, "buyer-2", p.BuyerID)
}

func TestRaiseDisputeFromAnyOpenState(t *testing.T) {
	for _, setup := range []func(p *product.Product){
		func(*product.Product) {},
		func(p *product.Product) { require.NoError(t, p.PlaceBid("b")) },
		func(p *product.Product) {
			require.NoError(t, p.PlaceBid("b"))
			require.NoError(t, p.AcceptBid())
		},
		func(p *product.Product) {
			require.NoError(t, p.PlaceBid("b"))
			require.NoError(t, p.AcceptBid())
			require.NoError(t, p.MarkSold())
		},
	} {
		p := newProduct(t, 5)
		setup(p)

		require.NoError(t, p.RaiseDispute())
		assert.Equal(t, product.StatusDisputeRaised, p.Status)
		assert.True(t, p.Disputed)
	}
}

func TestRaiseDisputeTwiceConflicts(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.RaiseDispute())
	assert.ErrorIs(t, p.RaiseDispute(), product.ErrDisputeOpen)
}

func TestDisputeBlocksBidOperations(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.RaiseDispute())

	assert.ErrorIs(t, p.PlaceBid("buyer-1"), product.ErrDisputeOpen)
	assert.ErrorIs(t, p.AcceptBid(), product.ErrDisputeOpen)
	assert.ErrorIs(t, p.MarkSold(), product.ErrDisputeOpen)
}

func TestResolveDispute(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.RaiseDispute())

	require.NoError(t, p.ResolveDispute(true))
	assert.Equal(t, product.StatusDisputeResolvedToSeller, p.Status)
	assert.False(t, p.Disputed)

	q := newProduct(t, 5)
	require.NoError(t, q.RaiseDispute())
	require.NoError(t, q.ResolveDispute(false))
	assert.Equal(t, product.StatusDisputeResolvedToBuyer, q.Status)
	assert.False(t, q.Disputed)
}

func TestResolveDisputeWithoutDispute(t *testing.T) {
	p := newProduct(t, 5)
	assert.ErrorIs(t, p.ResolveDispute(true), product.ErrNoDispute)

	require.NoError(t, p.RaiseDispute())
	require.NoError(t, p.ResolveDispute(true))
	assert.ErrorIs(t, p.ResolveDispute(true), product.ErrNoDispute)
}

func TestNewCycleAfterDisputeResolution(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.PlaceBid("buyer-1"))
	require.NoError(t, p.RaiseDispute())
	require.NoError(t, p.ResolveDispute(false))

	require.NoError(t, p.PlaceBid("buyer-2"))
	assert.Equal(t, "buyer-2", p.BuyerID)
	assert.Equal(t, product.StatusBidPlaced, p.Status)
}

// Disputed must be true exactly while the status is dispute_raised.
func TestDisputedTracksStatus(t *testing.T) {
	p := newProduct(t, 5)
	assert.False(t, p.Disputed)

	require.NoError(t, p.RaiseDispute())
	assert.True(t, p.Disputed)
	assert.Equal(t, product.StatusDisputeRaised, p.Status)

	require.NoError(t, p.ResolveDispute(true))
	assert.False(t, p.Disputed)
	assert.NotEqual(t, product.StatusDisputeRaised, p.Status)
}
