package service

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"math"

	"github.com/stripe/stripe-go/v78"
	"github.com/stripe/stripe-go/v78/paymentintent"
	"github.com/stripe/stripe-go/v78/refund"

	apperrors "urbpark/internal/errors"
)

// ErrGatewayUnavailable marks gateway failures worth retrying later, as
// opposed to ones that are final.
var ErrGatewayUnavailable = errors.New("payment gateway temporarily unavailable")

// PaymentGateway is the capability the reservation service needs from the
// payment provider: create a charge intent, verify a signed confirmation,
// issue a refund.
type PaymentGateway interface {
	CreateChargeIntent(ctx context.Context, amount float64, currency, reference string) (string, error)
	VerifySignature(orderID, paymentID, signature string) bool
	Refund(ctx context.Context, paymentID string, amount float64, notes map[string]string) (string, error)
}

// StripeGateway implements PaymentGateway on Stripe payment intents. Payment
// confirmations are authenticated with an HMAC-SHA256 signature over
// "orderID|paymentID" using a secret shared with the payment frontend.
type StripeGateway struct {
	signingSecret []byte
}

func NewStripeGateway(apiKey, signingSecret string) *StripeGateway {
	stripe.Key = apiKey
	return &StripeGateway{signingSecret: []byte(signingSecret)}
}

func (g *StripeGateway) CreateChargeIntent(ctx context.Context, amount float64, currency, reference string) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:      stripe.Int64(toMinorUnits(amount)),
		Currency:    stripe.String(currency),
		Description: stripe.String(reference),
	}
	params.Context = ctx

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", gatewayError("error creating charge intent", err)
	}
	return pi.ID, nil
}

func (g *StripeGateway) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, g.signingSecret)
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (g *StripeGateway) Refund(ctx context.Context, paymentID string, amount float64, notes map[string]string) (string, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(paymentID),
		Amount:        stripe.Int64(toMinorUnits(amount)),
	}
	params.Context = ctx
	params.Metadata = notes

	re, err := refund.New(params)
	if err != nil {
		return "", gatewayError(fmt.Sprintf("error refunding payment %s", paymentID), err)
	}
	return re.ID, nil
}

func gatewayError(message string, err error) error {
	var stripeErr *stripe.Error
	if errors.As(err, &stripeErr) && stripeErr.HTTPStatusCode >= 500 {
		return apperrors.Gateway(message, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err))
	}
	return apperrors.Gateway(message, err)
}

func toMinorUnits(amount float64) int64 {
	return int64(math.Round(amount * 100))
}
