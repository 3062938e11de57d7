package product_test

import (
	"testing"

	"github.com/farmline/marketplace/internal/domain/product"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProduct(t *testing.T, stock uint64) *product.Product {
	t.Helper()
	p, err := product.New("p1", "seller-1", "Carrots", "crunchy", product.CategoryVegetables, 1000, stock)
	require.NoError(t, err)
	return p
}

func TestNewDerivesStatusFromStock(t *testing.T) {
	p := newProduct(t, 5)
	assert.Equal(t, product.StatusAvailable, p.Status)

	empty := newProduct(t, 0)
	assert.Equal(t, product.StatusOutOfStock, empty.Status)
}

func TestNewValidation(t *testing.T) {
	_, err := product.New("p1", "", "Carrots", "", product.CategoryVegetables, 1, 1)
	assert.ErrorIs(t, err, product.ErrSellerRequired)

	_, err = product.New("p1", "seller-1", "  ", "", product.CategoryVegetables, 1, 1)
	assert.ErrorIs(t, err, product.ErrNameRequired)

	_, err = product.New("p1", "seller-1", "Carrots", "", product.Category("fish"), 1, 1)
	assert.ErrorIs(t, err, product.ErrInvalidCategory)
}

func TestParseCategory(t *testing.T) {
	c, err := product.ParseCategory(" Fruits ")
	require.NoError(t, err)
	assert.Equal(t, product.CategoryFruits, c)

	_, err = product.ParseCategory("dairy")
	assert.ErrorIs(t, err, product.ErrInvalidCategory)
}

func TestDeductStock(t *testing.T) {
	p := newProduct(t, 5)

	require.NoError(t, p.DeductStock(2))
	assert.Equal(t, uint64(3), p.Stock)
	assert.Equal(t, product.StatusAvailable, p.Status)

	require.NoError(t, p.DeductStock(3))
	assert.Equal(t, uint64(0), p.Stock)
	assert.Equal(t, product.StatusOutOfStock, p.Status)
}

func TestDeductStockInsufficient(t *testing.T) {
	p := newProduct(t, 3)

	err := p.DeductStock(4)
	assert.ErrorIs(t, err, product.ErrInsufficientStock)
	assert.Equal(t, uint64(3), p.Stock)
}

func TestDeductStockZeroQuantity(t *testing.T) {
	p := newProduct(t, 3)
	assert.ErrorIs(t, p.DeductStock(0), product.ErrInvalidQuantity)
}

func TestRestock(t *testing.T) {
	p := newProduct(t, 0)
	require.Equal(t, product.StatusOutOfStock, p.Status)

	require.NoError(t, p.Restock(4))
	assert.Equal(t, uint64(4), p.Stock)
	assert.Equal(t, product.StatusAvailable, p.Status)
}

func TestSetStockKeepsLifecycleStatus(t *testing.T) {
	p := newProduct(t, 5)
	require.NoError(t, p.PlaceBid("buyer-1"))

	p.SetStock(0)
	assert.Equal(t, product.StatusBidPlaced, p.Status)

	listed := newProduct(t, 5)
	listed.SetStock(0)
	assert.Equal(t, product.StatusOutOfStock, listed.Status)
	listed.SetStock(2)
	assert.Equal(t, product.StatusAvailable, listed.Status)
}

func TestCloneIsIndependent(t *testing.T) {
	p := newProduct(t, 5)
	clone := p.Clone()
	clone.Stock = 1

	assert.Equal(t, uint64(5), p.Stock)
}
