package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stripe/stripe-go/v78"
)

func signPayment(secret, orderID, paymentID string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	g := NewStripeGateway("sk_test_key", "shared_secret")

	sig := signPayment("shared_secret", "pi_123", "pay_456")
	assert.True(t, g.VerifySignature("pi_123", "pay_456", sig))

	// tampered payment id
	assert.False(t, g.VerifySignature("pi_123", "pay_999", sig))
	// wrong secret
	other := signPayment("other_secret", "pi_123", "pay_456")
	assert.False(t, g.VerifySignature("pi_123", "pay_456", other))
	assert.False(t, g.VerifySignature("pi_123", "pay_456", ""))
}

func TestGatewayErrorClassification(t *testing.T) {
	serverErr := gatewayError("refund failed", &stripe.Error{HTTPStatusCode: 503})
	assert.True(t, errors.Is(serverErr, ErrGatewayUnavailable))

	declined := gatewayError("refund failed", &stripe.Error{HTTPStatusCode: 402})
	assert.False(t, errors.Is(declined, ErrGatewayUnavailable))
}

func TestToMinorUnits(t *testing.T) {
	assert.Equal(t, int64(6000), toMinorUnits(60))
	assert.Equal(t, int64(7499), toMinorUnits(74.99))
	assert.Equal(t, int64(10), toMinorUnits(0.1))
}
