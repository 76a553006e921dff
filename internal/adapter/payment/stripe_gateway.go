package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/chilin89117/shopfront/internal/usecase"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/client"
)

// StripeGateway captures card payments with a client-supplied token.
type StripeGateway struct {
	api     *client.API
	timeout time.Duration
}

func NewStripeGateway(secretKey string, timeout time.Duration) *StripeGateway {
	api := &client.API{}
	api.Init(secretKey, nil)
	return &StripeGateway{api: api, timeout: timeout}
}

func (g *StripeGateway) Charge(ctx context.Context, in usecase.ChargeInput) (usecase.ChargeResult, error) {
	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	params := &stripe.ChargeParams{
		Params:      stripe.Params{Context: ctx},
		Amount:      stripe.Int64(in.AmountCents),
		Currency:    stripe.String(in.Currency),
		Description: stripe.String(in.OrderID),
	}
	if err := params.SetSource(in.Token); err != nil {
		return usecase.ChargeResult{}, fmt.Errorf("set source: %w", err)
	}
	params.AddMetadata("order_id", in.OrderID)
	params.AddMetadata("user_id", in.UserID)

	ch, err := g.api.Charges.New(params)
	if err != nil {
		return usecase.ChargeResult{}, fmt.Errorf("stripe charge: %w", err)
	}
	return usecase.ChargeResult{ProviderRef: ch.ID}, nil
}

var _ usecase.PaymentGateway = (*StripeGateway)(nil)
