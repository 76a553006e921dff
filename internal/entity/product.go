package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID          string
	Title       string
	Price       decimal.Decimal
	Description string
	ImagePath   string // relative path under the uploads dir
	OwnerID     string
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProductPage is one page of a catalog listing plus the cursor info the
// client needs to paginate.
type ProductPage struct {
	Products    []Product
	CurrentPage int
	LastPage    int
	HasNextPage bool
	HasPrevPage bool
}
