package usecase

import (
	"context"

	"github.com/chilin89117/shopfront/internal/entity"
)

type Cart struct {
	carts    CartRepo
	products ProductRepo
}

func NewCart(carts CartRepo, products ProductRepo) *Cart {
	return &Cart{carts: carts, products: products}
}

func (c *Cart) View(ctx context.Context, user entity.Principal) (entity.Cart, error) {
	items, err := c.carts.Items(ctx, user.ID)
	if err != nil {
		return entity.Cart{}, err
	}
	return entity.Cart{Items: items}, nil
}

// Add puts one unit of the product in the cart, incrementing the
// quantity when it is already there.
func (c *Cart) Add(ctx context.Context, user entity.Principal, productID string) error {
	p, err := c.products.GetByID(ctx, productID)
	if err != nil {
		return err
	}
	if p.Deleted {
		return entity.ErrNotFound
	}
	return c.carts.Add(ctx, user.ID, productID)
}

// Remove decrements the quantity by qty; qty <= 0 or qty >= current
// removes the line entirely (repo-side rule).
func (c *Cart) Remove(ctx context.Context, user entity.Principal, productID string, qty int) error {
	return c.carts.Remove(ctx, user.ID, productID, qty)
}
