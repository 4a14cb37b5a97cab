package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	p, err := NewProduct("sku-1", 10)
	require.NoError(t, err)
	assert.Equal(t, "sku-1", p.ProductID)
	assert.Equal(t, 10, p.AvailableQuantity)
	assert.Equal(t, 0, p.ReservedQuantity)
}

func TestNewProductZeroQuantity(t *testing.T) {
	p, err := NewProduct("sku-1", 0)
	require.NoError(t, err)
	assert.Equal(t, 0, p.AvailableQuantity)
}

func TestNewProductNegativeQuantity(t *testing.T) {
	_, err := NewProduct("sku-1", -1)
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestProductAdd(t *testing.T) {
	p, _ := NewProduct("sku-1", 10)

	require.NoError(t, p.Add(5))
	assert.Equal(t, 15, p.AvailableQuantity)

	assert.ErrorIs(t, p.Add(0), ErrInvalidQuantity)
	assert.ErrorIs(t, p.Add(-3), ErrInvalidQuantity)
}

func TestProductDecrease(t *testing.T) {
	p, _ := NewProduct("sku-1", 10)

	require.NoError(t, p.Decrease(4))
	assert.Equal(t, 6, p.AvailableQuantity)

	assert.ErrorIs(t, p.Decrease(7), ErrInsufficientStock)
	assert.Equal(t, 6, p.AvailableQuantity)

	assert.ErrorIs(t, p.Decrease(0), ErrInvalidQuantity)
}

func TestProductReserveMovesQuantityBetweenCounters(t *testing.T) {
	p, _ := NewProduct("sku-1", 10)

	require.NoError(t, p.Reserve(4))
	assert.Equal(t, 6, p.AvailableQuantity)
	assert.Equal(t, 4, p.ReservedQuantity)
	assert.Equal(t, 10, p.AvailableQuantity+p.ReservedQuantity)

	assert.ErrorIs(t, p.Reserve(7), ErrInsufficientStock)
}

func TestProductReleaseRestoresAvailable(t *testing.T) {
	p, _ := NewProduct("sku-1", 10)
	require.NoError(t, p.Reserve(4))

	require.NoError(t, p.Release(4))
	assert.Equal(t, 10, p.AvailableQuantity)
	assert.Equal(t, 0, p.ReservedQuantity)
}

func TestProductReleaseInsufficientReserved(t *testing.T) {
	p, _ := NewProduct("sku-1", 10)
	require.NoError(t, p.Reserve(2))

	assert.ErrorIs(t, p.Release(3), ErrInsufficientReserved)
	assert.Equal(t, 8, p.AvailableQuantity)
	assert.Equal(t, 2, p.ReservedQuantity)
}
