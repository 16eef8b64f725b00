package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderStatusTransitions(t *testing.T) {
	assert.True(t, OrderStatusReceived.CanTransitionTo(OrderStatusProcessing))
	assert.True(t, OrderStatusReceived.CanTransitionTo(OrderStatusCancelled))
	assert.True(t, OrderStatusProcessing.CanTransitionTo(OrderStatusShipped))
	assert.True(t, OrderStatusShipped.CanTransitionTo(OrderStatusDelivered))

	assert.False(t, OrderStatusShipped.CanTransitionTo(OrderStatusCancelled))
	assert.False(t, OrderStatusDelivered.CanTransitionTo(OrderStatusReceived))
	assert.False(t, OrderStatusCancelled.CanTransitionTo(OrderStatusProcessing))
	assert.False(t, OrderStatusReceived.CanTransitionTo(OrderStatusDelivered))
}

func TestPaymentStatusTransitions(t *testing.T) {
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusPaid))
	assert.True(t, PaymentStatusPending.CanTransitionTo(PaymentStatusFailed))
	assert.True(t, PaymentStatusFailed.CanTransitionTo(PaymentStatusPaid))
	assert.True(t, PaymentStatusPaid.CanTransitionTo(PaymentStatusRefunded))

	assert.False(t, PaymentStatusRefunded.CanTransitionTo(PaymentStatusPaid))
	assert.False(t, PaymentStatusPending.CanTransitionTo(PaymentStatusRefunded))
}

func TestParseStatus(t *testing.T) {
	st, err := ParseOrderStatus("  Shipped ")
	require.NoError(t, err)
	assert.Equal(t, OrderStatusShipped, st)

	_, err = ParseOrderStatus("ready_to_ship")
	assert.Error(t, err)

	ps, err := ParsePaymentStatus("PAID")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusPaid, ps)

	_, err = ParsePaymentStatus("chargeback")
	assert.Error(t, err)
}

func TestVerifyTotal(t *testing.T) {
	order := Order{
		OrderRef:   "ref-1",
		TotalPrice: decimal.NewFromInt(515),
		Items: []OrderItem{
			{ProductID: 1, UnitPrice: decimal.NewFromInt(100), EmbroiderySurcharge: decimal.NewFromInt(5), Quantity: 3},
			{UnitPrice: decimal.NewFromInt(200), Quantity: 1, IsShippingLine: true},
		},
	}
	require.NoError(t, order.VerifyTotal())
	assert.True(t, order.ShippingLine().UnitPrice.Equal(decimal.NewFromInt(200)))

	order.TotalPrice = decimal.NewFromInt(1)
	assert.ErrorContains(t, order.VerifyTotal(), "does not match")

	order.TotalPrice = decimal.NewFromInt(315)
	order.Items = order.Items[:1]
	assert.ErrorContains(t, order.VerifyTotal(), "shipping line")
}
