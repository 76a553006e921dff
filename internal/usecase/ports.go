package usecase

import (
	"context"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/shopspring/decimal"
)

type UserRepo interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	UpdatePassword(ctx context.Context, id, passwordHash string) error
}

type ProductRepo interface {
	Create(ctx context.Context, p *entity.Product) error
	Update(ctx context.Context, p *entity.Product) error
	SoftDelete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*entity.Product, error)
	List(ctx context.Context, offset, limit int) ([]entity.Product, error)
	Count(ctx context.Context) (int, error)
	ListByOwner(ctx context.Context, ownerID string, offset, limit int) ([]entity.Product, error)
	CountByOwner(ctx context.Context, ownerID string) (int, error)
}

type CartRepo interface {
	Items(ctx context.Context, userID string) ([]entity.CartItem, error)
	Add(ctx context.Context, userID, productID string) error
	Remove(ctx context.Context, userID, productID string, qty int) error
	Clear(ctx context.Context, userID string) error
	// PurgeProduct removes a product from every user's cart (used when a
	// product is deleted from the catalog).
	PurgeProduct(ctx context.Context, productID string) error
}

type OrderRepo interface {
	Create(ctx context.Context, o *entity.Order) error
	GetByID(ctx context.Context, id string) (*entity.Order, error)
	ListByUser(ctx context.Context, userID string) ([]entity.Order, error)
	// UpdatePaymentStatusIf transitions payment status only from the
	// expected current value; returns false when nothing matched.
	UpdatePaymentStatusIf(ctx context.Context, id string, from, to entity.PaymentStatus) (bool, error)
}

// SessionStore maps opaque cookie tokens to authenticated principals.
type SessionStore interface {
	Create(ctx context.Context, p entity.Principal) (string, error)
	Get(ctx context.Context, token string) (entity.Principal, bool, error)
	Delete(ctx context.Context, token string) error
}

type ChargeInput struct {
	OrderID     string
	UserID      string
	AmountCents int64
	Currency    string
	Token       string
}

type ChargeResult struct {
	ProviderRef string
}

type PaymentGateway interface {
	Charge(ctx context.Context, in ChargeInput) (ChargeResult, error)
}

type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
}

type OrderEvents interface {
	PublishPlaced(ctx context.Context, msg OrderPlacedMsg) error
}

// StatusCache mirrors order payment status in Redis for cheap reads by
// the orders listing.
type StatusCache interface {
	SetPaymentStatus(ctx context.Context, orderID, status string) error
	GetPaymentStatus(ctx context.Context, orderID string) (string, bool, error)
}

func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}
