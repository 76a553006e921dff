package entity

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestOrderTotal(t *testing.T) {
	t.Run("empty order totals zero", func(t *testing.T) {
		o := Order{}
		assert.Equal(t, "0.00", o.Total().StringFixed(2))
	})

	t.Run("sums qty times unit price", func(t *testing.T) {
		o := Order{Items: []OrderItem{
			{Title: "Widget", Qty: 2, UnitPrice: dec("5.00")},
			{Title: "Gadget", Qty: 1, UnitPrice: dec("9.99")},
		}}
		assert.Equal(t, "19.99", o.Total().StringFixed(2))
	})

	t.Run("no float drift on awkward prices", func(t *testing.T) {
		o := Order{Items: []OrderItem{
			{Qty: 3, UnitPrice: dec("0.10")},
		}}
		assert.Equal(t, "0.30", o.Total().StringFixed(2))
	})
}

func TestCartSubtotal(t *testing.T) {
	c := Cart{Items: []CartItem{
		{Title: "Widget", Qty: 2, Price: dec("5.00")},
		{Title: "Gadget", Qty: 4, Price: dec("2.50")},
	}}
	assert.Equal(t, "20.00", c.Subtotal().StringFixed(2))
}

func TestUserPrincipal(t *testing.T) {
	u := User{ID: "u1", Name: "Abbie", Email: "abbie@example.com", Admin: true, PasswordHash: "x"}
	p := u.Principal()
	assert.Equal(t, Principal{ID: "u1", Name: "Abbie", Email: "abbie@example.com", Admin: true}, p)
}
