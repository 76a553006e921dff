package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPaid    PaymentStatus = "PAID"
	PaymentFailed  PaymentStatus = "FAILED"
)

// OrderItem is a deliberate snapshot of a product at checkout time:
// title, price and image path are copied, never re-read from the
// catalog, so the order (and its invoice) stays stable even if the
// product is edited or soft-deleted later.
type OrderItem struct {
	Title     string
	Qty       int
	UnitPrice decimal.Decimal
	ImagePath string
}

// OrderUser is the denormalized owner snapshot taken at order creation.
type OrderUser struct {
	ID    string
	Name  string
	Email string
}

// Order is immutable once stored, except for PaymentStatus which moves
// PENDING -> PAID | FAILED as processor events arrive.
type Order struct {
	ID            string
	User          OrderUser
	Items         []OrderItem
	PaymentStatus PaymentStatus
	CreatedAt     time.Time
}

// Total sums qty*unitPrice over the items in stored order.
func (o Order) Total() decimal.Decimal {
	total := decimal.Zero
	for _, it := range o.Items {
		total = total.Add(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Qty))))
	}
	return total
}
