package order_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viktor-nazarov/bloomcart/internal/order"
)

func TestPermissivePolicy(t *testing.T) {
	policy := order.PermissivePolicy()

	assert.True(t, policy.CanTransition(order.StatusAwaitingPayment, order.StatusDelivered))
	assert.True(t, policy.CanTransition(order.StatusDelivered, order.StatusAwaitingPayment))
	assert.True(t, policy.CanTransition(order.StatusCanceled, order.StatusPaid))
	assert.False(t, policy.CanTransition(order.StatusPaid, order.Status("SHIPPED")))
}

func TestLinearPolicy(t *testing.T) {
	policy := order.LinearPolicy()

	tests := []struct {
		name string
		from order.Status
		to   order.Status
		want bool
	}{
		{"awaiting_to_paid", order.StatusAwaitingPayment, order.StatusPaid, true},
		{"awaiting_to_canceled", order.StatusAwaitingPayment, order.StatusCanceled, true},
		{"awaiting_to_rejected", order.StatusAwaitingPayment, order.StatusRejected, true},
		{"paid_to_preparing", order.StatusPaid, order.StatusPreparing, true},
		{"preparing_to_delivered", order.StatusPreparing, order.StatusDelivered, true},
		{"awaiting_skips_to_delivered", order.StatusAwaitingPayment, order.StatusDelivered, false},
		{"preparing_cannot_cancel", order.StatusPreparing, order.StatusCanceled, false},
		{"delivered_is_terminal", order.StatusDelivered, order.StatusPaid, false},
		{"canceled_is_terminal", order.StatusCanceled, order.StatusAwaitingPayment, false},
		{"no_backwards_move", order.StatusPaid, order.StatusAwaitingPayment, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, policy.CanTransition(tt.from, tt.to))
		})
	}
}
