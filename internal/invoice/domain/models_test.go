package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCustomerName(t *testing.T) {
	assert.Equal(t, "", Order{}.CustomerName())
	assert.Equal(t, "Jane Doe", Order{BillingAddress: &Address{FirstName: "Jane", LastName: "Doe"}}.CustomerName())
	assert.Equal(t, "Jane", Order{BillingAddress: &Address{FirstName: " Jane"}}.CustomerName())
}

func TestContainsPayment(t *testing.T) {
	order := Order{PaymentCollections: []PaymentCollection{
		{ID: "pc_1", PaymentIDs: []string{"pay_a"}},
		{ID: "pc_2", PaymentIDs: []string{"pay_b", "pay_c"}},
	}}

	assert.True(t, order.ContainsPayment("pay_c"))
	assert.False(t, order.ContainsPayment("pay_z"))
	assert.False(t, Order{}.ContainsPayment("pay_a"))
}
