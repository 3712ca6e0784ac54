package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderOrderConfirmation(t *testing.T) {
	body, err := RenderOrderConfirmation(OrderEmailData{
		Name:    "Asha",
		OrderID: 42,
		Lines: []OrderLine{
			{Name: "Margherita", Quantity: 2, UnitPrice: "10.00"},
		},
		Subtotal:    "20.00",
		DeliveryFee: "3.99",
		Tax:         "1.60",
		Total:       "25.59",
		Currency:    "USD",
		DeliverTo:   "1 Main St, Pune",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Order #42 is confirmed")
	assert.Contains(t, body, "2 x Margherita")
	assert.Contains(t, body, "25.59 USD")
	assert.NotContains(t, body, "Track your order")
}

func TestRenderOrderConfirmationEscapesInput(t *testing.T) {
	body, err := RenderOrderConfirmation(OrderEmailData{Name: "<script>alert(1)</script>"})
	require.NoError(t, err)
	assert.NotContains(t, body, "<script>")
}
