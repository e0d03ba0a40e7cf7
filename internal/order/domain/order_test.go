package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOrder_ComputesTotalFromUnitPrice(t *testing.T) {
	o := NewOrder("ord-1", Customer{Name: "Ana", Email: "ana@example.com", Address: "Rua A, 1"}, "prod-1", 3, 5000)

	assert.Equal(t, int64(15000), o.TotalCents)
	assert.Equal(t, PaymentPending, o.PaymentStatus)
	assert.Equal(t, FulfillmentPending, o.FulfillmentStatus)
	assert.Equal(t, int64(1), o.Version)
	assert.Nil(t, o.PaymentEventAt)
}

func TestParseFulfillmentStatus(t *testing.T) {
	for _, s := range []string{"pending", "confirmed", "in_production", "shipped", "delivered", "cancelled"} {
		st, err := ParseFulfillmentStatus(s)
		require.NoError(t, err)
		assert.Equal(t, FulfillmentStatus(s), st)
	}

	_, err := ParseFulfillmentStatus("em_producao")
	assert.Error(t, err)

	_, err = ParseFulfillmentStatus("")
	assert.Error(t, err)
}
