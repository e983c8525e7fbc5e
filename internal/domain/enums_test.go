package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEnumValidation(t *testing.T) {
	assert.True(t, PaymentCash.Valid())
	assert.True(t, PaymentCard.Valid())
	assert.True(t, PaymentTransfer.Valid())
	assert.False(t, PaymentMethod("cheque").Valid())
	assert.False(t, PaymentMethod("").Valid())

	assert.True(t, OperationRefund.Valid())
	assert.True(t, OperationExchange.Valid())
	assert.False(t, OperationType("store_credit").Valid())

	assert.True(t, ReasonDefective.Valid())
	assert.True(t, ReasonWrongItem.Valid())
	assert.True(t, ReasonCustomerRequest.Valid())
	assert.True(t, ReasonOther.Valid())
	assert.False(t, ReturnReason("changed_mind").Valid())

	assert.True(t, GenderUnisex.Valid())
	assert.False(t, Gender("kids").Valid())
}

func TestVariantSetStock(t *testing.T) {
	v := Variant{LowStockThreshold: 5}

	v.SetStock(10, v.UpdatedAt)
	assert.True(t, v.IsInStock)
	assert.False(t, v.IsLowStock)

	v.SetStock(5, v.UpdatedAt)
	assert.True(t, v.IsInStock)
	assert.True(t, v.IsLowStock)

	v.SetStock(0, v.UpdatedAt)
	assert.False(t, v.IsInStock)
	assert.False(t, v.IsLowStock)
}
