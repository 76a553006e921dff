package entity

import "github.com/shopspring/decimal"

// CartItem references a live product; title and price are joined in at
// read time so the cart always shows current catalog values.
type CartItem struct {
	ProductID string
	Title     string
	Price     decimal.Decimal
	ImagePath string
	Qty       int
}

type Cart struct {
	Items []CartItem
}

func (c Cart) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, it := range c.Items {
		total = total.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total
}
