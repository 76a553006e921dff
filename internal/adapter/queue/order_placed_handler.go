package queue

import (
	"context"
	"fmt"

	"github.com/chilin89117/shopfront/internal/usecase"
)

// OrderPlacedHandler mails the order confirmation off the request path.
type OrderPlacedHandler struct {
	Mail usecase.MailSender
}

func NewOrderPlacedHandler(mail usecase.MailSender) *OrderPlacedHandler {
	return &OrderPlacedHandler{Mail: mail}
}

// HandlePlaced is intended to be used with queue.JSONHandler[usecase.OrderPlacedMsg].
func (h *OrderPlacedHandler) HandlePlaced(ctx context.Context, msg usecase.OrderPlacedMsg) error {
	body := fmt.Sprintf("Hi %s,\n\nyour order %s over $ %s was placed. Thank you.",
		msg.Name, msg.OrderID, msg.Total)
	return h.Mail.Send(ctx, msg.Email, "Order confirmation", body)
}
