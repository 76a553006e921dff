package kafka

import (
	"context"

	"github.com/chilin89117/shopfront/internal/entity"
	"github.com/chilin89117/shopfront/internal/usecase"
)

// PaymentEventHandler applies processor outcomes to orders. Only
// PENDING orders transition; replays and late events are no-ops.
type PaymentEventHandler struct {
	Repo  usecase.OrderRepo
	Cache usecase.StatusCache // optional
}

func NewPaymentEventHandler(repo usecase.OrderRepo, cache usecase.StatusCache) *PaymentEventHandler {
	return &PaymentEventHandler{Repo: repo, Cache: cache}
}

func (h *PaymentEventHandler) Handle(ctx context.Context, ev usecase.PaymentEventMsg) error {
	var target entity.PaymentStatus
	switch ev.Status {
	case "SUCCESS":
		target = entity.PaymentPaid
	default:
		target = entity.PaymentFailed
	}

	changed, err := h.Repo.UpdatePaymentStatusIf(ctx, ev.OrderID, entity.PaymentPending, target)
	if err != nil {
		return err
	}

	if changed && h.Cache != nil {
		_ = h.Cache.SetPaymentStatus(ctx, ev.OrderID, string(target))
	}
	return nil
}
