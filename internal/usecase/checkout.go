package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/logging"
	"github.com/google/uuid"
)

var ErrPaymentDeclined = errors.New("payment declined")

// Checkout snapshots the cart into an immutable order, captures the
// card payment, clears the cart and announces the order on the events
// exchange.
type Checkout struct {
	carts    CartRepo
	orders   OrderRepo
	gateway  PaymentGateway
	events   OrderEvents
	statuses StatusCache
	currency string
}

func NewCheckout(carts CartRepo, orders OrderRepo, gateway PaymentGateway, events OrderEvents, statuses StatusCache, currency string) *Checkout {
	return &Checkout{carts: carts, orders: orders, gateway: gateway, events: events, statuses: statuses, currency: currency}
}

type CheckoutOutput struct {
	OrderID       string
	Total         string
	PaymentStatus entity.PaymentStatus
}

func (uc *Checkout) Execute(ctx context.Context, user entity.Principal, paymentToken string) (CheckoutOutput, error) {
	cartItems, err := uc.carts.Items(ctx, user.ID)
	if err != nil {
		return CheckoutOutput{}, err
	}
	if len(cartItems) == 0 {
		return CheckoutOutput{}, entity.ErrEmptyCart
	}

	// Explicit line-item snapshot, in cart insertion order. The order
	// never points back at catalog rows.
	items := make([]entity.OrderItem, 0, len(cartItems))
	for _, ci := range cartItems {
		items = append(items, entity.OrderItem{
			Title:     ci.Title,
			Qty:       ci.Qty,
			UnitPrice: ci.Price,
			ImagePath: ci.ImagePath,
		})
	}

	order := &entity.Order{
		ID:            uuid.NewString(),
		User:          entity.OrderUser{ID: user.ID, Name: user.Name, Email: user.Email},
		Items:         items,
		PaymentStatus: entity.PaymentPending,
		CreatedAt:     time.Now(),
	}
	if err := uc.orders.Create(ctx, order); err != nil {
		return CheckoutOutput{}, err
	}

	total := order.Total()
	_, chargeErr := uc.gateway.Charge(ctx, ChargeInput{
		OrderID:     order.ID,
		UserID:      user.ID,
		AmountCents: toCents(total),
		Currency:    uc.currency,
		Token:       paymentToken,
	})
	if chargeErr != nil {
		// The order stands as a failed attempt; the processor never
		// confirms it, so mark it directly.
		if _, err := uc.orders.UpdatePaymentStatusIf(ctx, order.ID, entity.PaymentPending, entity.PaymentFailed); err != nil {
			logging.FromCtx(ctx).Error("mark order failed", "err", err, "order_id", order.ID)
		}
		_ = uc.statuses.SetPaymentStatus(ctx, order.ID, string(entity.PaymentFailed))
		return CheckoutOutput{OrderID: order.ID, Total: total.StringFixed(2), PaymentStatus: entity.PaymentFailed},
			errors.Join(ErrPaymentDeclined, chargeErr)
	}

	if err := uc.carts.Clear(ctx, user.ID); err != nil {
		logging.FromCtx(ctx).Error("clear cart", "err", err, "user_id", user.ID)
	}

	msg := OrderPlacedMsg{
		OrderID: order.ID,
		UserID:  user.ID,
		Name:    user.Name,
		Email:   user.Email,
		Total:   total.StringFixed(2),
	}
	if err := uc.events.PublishPlaced(ctx, msg); err != nil {
		logging.FromCtx(ctx).Error("publish order.placed", "err", err, "order_id", order.ID)
	}

	return CheckoutOutput{OrderID: order.ID, Total: total.StringFixed(2), PaymentStatus: entity.PaymentPending}, nil
}

// Orders lists the caller's orders, newest first, with payment status
// refreshed from the cache when present.
type Orders struct {
	orders   OrderRepo
	statuses StatusCache
}

func NewOrders(orders OrderRepo, statuses StatusCache) *Orders {
	return &Orders{orders: orders, statuses: statuses}
}

func (uc *Orders) ListForUser(ctx context.Context, user entity.Principal) ([]entity.Order, error) {
	orders, err := uc.orders.ListByUser(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		if s, ok, err := uc.statuses.GetPaymentStatus(ctx, orders[i].ID); err == nil && ok {
			orders[i].PaymentStatus = entity.PaymentStatus(s)
		}
	}
	return orders, nil
}

// GetOwned fetches an order and enforces ownership before anything is
// done with it (invoice access depends on this check).
func (uc *Orders) GetOwned(ctx context.Context, user entity.Principal, orderID string) (*entity.Order, error) {
	order, err := uc.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if order.User.ID != user.ID {
		return nil, entity.ErrForbidden
	}
	return order, nil
}
