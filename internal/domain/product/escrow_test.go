package product_test

import (
	"math"
	"testing"

	"github.com/farmline/marketplace/internal/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeposit(t *testing.T) {
	p := newProduct(t, 5)

	require.NoError(t, p.Deposit(500))
	require.NoError(t, p.Deposit(250))
	assert.Equal(t, uint64(750), p.Escrow)
}

func TestDepositZeroAmount(t *testing.T) {
	p := newProduct(t, 5)
	assert.ErrorIs(t, p.Deposit(0), product.ErrInvalidAmount)
}

func TestDepositOverflow(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.Deposit(math.MaxUint64))

	err := p.Deposit(1)
	assert.ErrorIs(t, err, product.ErrBalanceOverflow)
	assert.Equal(t, uint64(math.MaxUint64), p.Escrow)
}

func TestWithdraw(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.Deposit(500))

	require.NoError(t, p.Withdraw(200))
	assert.Equal(t, uint64(300), p.Escrow)
}

func TestWithdrawInsufficientFunds(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.Deposit(100))

	err := p.Withdraw(101)
	assert.ErrorIs(t, err, product.ErrInsufficientFunds)
	assert.Equal(t, uint64(100), p.Escrow)
}

func TestReleaseEscrow(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.Deposit(1000))
	require.NoError(t, p.PlaceBid("buyer-1"))
	require.NoError(t, p.AcceptBid())
	require.NoError(t, p.MarkSold())

	released, err := p.ReleaseEscrow()
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), released)
	assert.Equal(t, uint64(0), p.Escrow)
}

func TestReleaseEscrowBeforeSale(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.Deposit(1000))
	require.NoError(t, p.PlaceBid("buyer-1"))

	_, err := p.ReleaseEscrow()
	assert.ErrorIs(t, err, product.ErrNotSold)
	assert.Equal(t, uint64(1000), p.Escrow)
}

func TestReleaseEscrowDuringDispute(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.Deposit(1000))
	require.NoError(t, p.RaiseDispute())

	_, err := p.ReleaseEscrow()
	assert.ErrorIs(t, err, product.ErrNotSold)
	assert.Equal(t, uint64(1000), p.Escrow)
}
