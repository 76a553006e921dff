package queue

import (
	"context"
	"testing"

	"github.com/chilin89117/shopfront/internal/usecase"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONHandlerDecodesDelivery(t *testing.T) {
	var got usecase.OrderPlacedMsg
	h := JSONHandler[usecase.OrderPlacedMsg]{
		HandleFunc: func(_ context.Context, msg usecase.OrderPlacedMsg) error {
			got = msg
			return nil
		},
	}

	body := []byte(`{"orderId":"o1","userId":"u1","name":"Abbie","email":"abbie@example.com","total":"19.99"}`)
	require.NoError(t, h.Handle(context.Background(), amqp.Delivery{Body: body}))

	assert.Equal(t, "o1", got.OrderID)
	assert.Equal(t, "abbie@example.com", got.Email)
	assert.Equal(t, "19.99", got.Total)
}

func TestJSONHandlerRejectsBadPayload(t *testing.T) {
	called := false
	h := JSONHandler[usecase.OrderPlacedMsg]{
		HandleFunc: func(context.Context, usecase.OrderPlacedMsg) error {
			called = true
			return nil
		},
	}

	err := h.Handle(context.Background(), amqp.Delivery{Body: []byte("not json")})
	assert.Error(t, err)
	assert.False(t, called)
}
