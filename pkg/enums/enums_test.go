package enums

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePaymentStatus(t *testing.T) {
	t.Parallel()

	status, err := ParsePaymentStatus("SUCCESSFUL")
	require.NoError(t, err)
	assert.Equal(t, PaymentStatusSuccessful, status)

	_, err = ParsePaymentStatus("successful")
	assert.Error(t, err)
}

func TestPaymentStatusTerminal(t *testing.T) {
	t.Parallel()

	assert.False(t, PaymentStatusPending.IsTerminal())
	assert.True(t, PaymentStatusSuccessful.IsTerminal())
	assert.True(t, PaymentStatusFailed.IsTerminal())
}

func TestParsePaymentMethod(t *testing.T) {
	t.Parallel()

	method, err := ParsePaymentMethod("PAYSTACK")
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodPaystack, method)

	_, err = ParsePaymentMethod("STRIPE")
	assert.Error(t, err)
}

func TestDeliveryStatusValidity(t *testing.T) {
	t.Parallel()

	assert.True(t, DeliveryStatusPending.IsValid())
	assert.False(t, DeliveryStatus("LOST").IsValid())
}
