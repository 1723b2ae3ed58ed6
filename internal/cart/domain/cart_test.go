package domain

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCart(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	c, err := NewCart([]CartItem{{ProductID: a, Quantity: 1}, {ProductID: b, Quantity: 2}, {ProductID: a, Quantity: 3}})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, c.ID)
	assert.Equal(t, []CartItem{{ProductID: a, Quantity: 4}, {ProductID: b, Quantity: 2}}, c.Products)
	assert.Equal(t, 6, c.Units())
}

func TestNewCart_Invalid(t *testing.T) {
	_, err := NewCart(nil)
	assert.ErrorIs(t, err, ErrEmptyCart)

	_, err = NewCart([]CartItem{{ProductID: uuid.New(), Quantity: 0}})
	assert.ErrorIs(t, err, ErrInvalidQuantity)

	_, err = NewCart([]CartItem{{ProductID: uuid.Nil, Quantity: 1}})
	assert.ErrorIs(t, err, ErrInvalidCart)
}

func TestCart_SetQuantityUpdatesOrAppends(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c, err := NewCart([]CartItem{{ProductID: a, Quantity: 1}})
	require.NoError(t, err)
	before := c.UpdatedAt
	time.Sleep(time.Millisecond)

	require.NoError(t, c.SetQuantity(a, 5))
	require.NoError(t, c.SetQuantity(b, 2))

	assert.Equal(t, []CartItem{{ProductID: a, Quantity: 5}, {ProductID: b, Quantity: 2}}, c.Products)
	assert.True(t, c.UpdatedAt.After(before))
	assert.ErrorIs(t, c.SetQuantity(a, 0), ErrInvalidQuantity)
}

func TestCart_RemoveAndClear(t *testing.T) {
	a, b := uuid.New(), uuid.New()
	c, err := NewCart([]CartItem{{ProductID: a, Quantity: 1}, {ProductID: b, Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, c.RemoveProduct(a))
	assert.ErrorIs(t, c.RemoveProduct(a), ErrProductNotInCart)
	assert.Len(t, c.Products, 1)

	c.Clear()
	assert.NotNil(t, c.Products)
	assert.Empty(t, c.Products)
}

func TestCart_ReplaceProductsAllowsEmpty(t *testing.T) {
	c, err := NewCart([]CartItem{{ProductID: uuid.New(), Quantity: 1}})
	require.NoError(t, err)

	require.NoError(t, c.ReplaceProducts(nil))

	assert.Empty(t, c.Products)
	assert.Zero(t, c.Units())
}
