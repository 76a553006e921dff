package usecase

// OrderPlacedMsg is the payload published to the order.events exchange
// when checkout succeeds.
type OrderPlacedMsg struct {
	OrderID string `json:"orderId"`
	UserID  string `json:"userId"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	Total   string `json:"total"`
}

// PaymentEventMsg arrives on the payment.events topic from the
// processor bridge. Status is the processor's vocabulary, mapped to
// entity.PaymentStatus by the consumer.
type PaymentEventMsg struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"` // SUCCESS | FAILED
}
