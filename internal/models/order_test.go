// internal/models/order_test.go
package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderStatusCanTransitionTo(t *testing.T) {
	nonTerminal := []OrderStatus{OrderStatusPending, OrderStatusProcessing, OrderStatusShipped}

	t.Run("cancel allowed from any non-terminal state", func(t *testing.T) {
		for _, from := range nonTerminal {
			assert.True(t, from.CanTransitionTo(OrderStatusCancelled), "from %s", from)
		}
	})

	t.Run("terminal states reject all transitions", func(t *testing.T) {
		targets := []OrderStatus{
			OrderStatusPending, OrderStatusProcessing, OrderStatusShipped,
			OrderStatusDelivered, OrderStatusCancelled,
		}
		for _, from := range []OrderStatus{OrderStatusDelivered, OrderStatusCancelled} {
			for _, to := range targets {
				assert.False(t, from.CanTransitionTo(to), "from %s to %s", from, to)
			}
		}
	})

	t.Run("admin may jump forward", func(t *testing.T) {
		assert.True(t, OrderStatusPending.CanTransitionTo(OrderStatusDelivered))
		assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusDelivered))
	})

	t.Run("self transition and unknown target rejected", func(t *testing.T) {
		assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatusPending))
		assert.False(t, OrderStatusPending.CanTransitionTo(OrderStatus("archived")))
	})
}

func TestOrderTransition(t *testing.T) {
	order := &Order{Status: OrderStatusPending}

	assert.NoError(t, order.Transition(OrderStatusProcessing))
	assert.Equal(t, OrderStatusProcessing, order.Status)

	assert.NoError(t, order.Transition(OrderStatusDelivered))

	err := order.Transition(OrderStatusCancelled)
	assert.Error(t, err)
	assert.Equal(t, OrderStatusDelivered, order.Status, "failed transition must not mutate status")
}

func TestOrderCustomerEmail(t *testing.T) {
	guest := &Order{GuestEmail: "guest@example.com"}
	assert.Equal(t, "guest@example.com", guest.CustomerEmail())

	account := &Order{User: &User{Email: "user@example.com"}, GuestEmail: "ignored@example.com"}
	assert.Equal(t, "user@example.com", account.CustomerEmail())
}
