package usecase

import (
	"context"
	"testing"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCartAdd(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{
		ID: "p1", Title: "Widget", Price: decimal.RequireFromString("5.00"), OwnerID: "admin1",
	})
	carts := newFakeCartRepo()
	c := NewCart(carts, products)
	user := entity.Principal{ID: "u1"}

	require.NoError(t, c.Add(context.Background(), user, "p1"))
	require.NoError(t, c.Add(context.Background(), user, "p1"))

	cart, err := c.View(context.Background(), user)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.Equal(t, 2, cart.Items[0].Qty, "adding again increments quantity")
}

func TestCartAddUnknownOrDeletedProduct(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{
		ID: "p1", Title: "Widget", Price: decimal.RequireFromString("5.00"), OwnerID: "admin1", Deleted: true,
	})
	c := NewCart(newFakeCartRepo(), products)
	user := entity.Principal{ID: "u1"}

	assert.ErrorIs(t, c.Add(context.Background(), user, "ghost"), entity.ErrNotFound)
	assert.ErrorIs(t, c.Add(context.Background(), user, "p1"), entity.ErrNotFound)
}

func TestCartRemove(t *testing.T) {
	products := newFakeProductRepo(&entity.Product{
		ID: "p1", Title: "Widget", Price: decimal.RequireFromString("5.00"), OwnerID: "admin1",
	})
	carts := newFakeCartRepo()
	c := NewCart(carts, products)
	user := entity.Principal{ID: "u1"}

	require.NoError(t, c.Add(context.Background(), user, "p1"))
	require.NoError(t, c.Add(context.Background(), user, "p1"))
	require.NoError(t, c.Add(context.Background(), user, "p1"))

	t.Run("partial decrement", func(t *testing.T) {
		require.NoError(t, c.Remove(context.Background(), user, "p1", 1))
		cart, _ := c.View(context.Background(), user)
		require.Len(t, cart.Items, 1)
		assert.Equal(t, 2, cart.Items[0].Qty)
	})

	t.Run("removing the rest drops the line", func(t *testing.T) {
		require.NoError(t, c.Remove(context.Background(), user, "p1", 0))
		cart, _ := c.View(context.Background(), user)
		assert.Empty(t, cart.Items)
	})
}
