package services

import (
	"bytes"
	"io"
	"net/http"

	"github.com/stripe/stripe-go/v80"
	"github.com/stripe/stripe-go/v80/paymentintent"
	"github.com/stripe/stripe-go/v80/refund"
	"github.com/stripe/stripe-go/v80/webhook"
)

// PaymentGateway abstracts the card processor so payment flows can be
// tested without network calls.
type PaymentGateway interface {
	CreatePaymentIntent(amountCents int64, currency, paymentToken string, metadata map[string]string) (*stripe.PaymentIntent, error)
	RefundPayment(transactionID, reason string) (*stripe.Refund, error)
	ParseWebhook(r *http.Request) (stripe.Event, error)
}

// StripeService is the Stripe-backed PaymentGateway.
type StripeService struct {
	SecretKey  string
	WebhookKey string
}

// NewStripeService configures the Stripe client with the account secret.
func NewStripeService(secretKey, webhookKey string) *StripeService {
	stripe.Key = secretKey
	return &StripeService{SecretKey: secretKey, WebhookKey: webhookKey}
}

// CreatePaymentIntent creates and confirms an intent in one call, charging
// the provided payment method token immediately.
func (s *StripeService) CreatePaymentIntent(amountCents int64, currency, paymentToken string, metadata map[string]string) (*stripe.PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:        stripe.Int64(amountCents),
		Currency:      stripe.String(currency),
		PaymentMethod: stripe.String(paymentToken),
		Confirm:       stripe.Bool(true),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled:        stripe.Bool(true),
			AllowRedirects: stripe.String("never"),
		},
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}
	return paymentintent.New(params)
}

// RefundPayment issues a full refund against the original intent.
func (s *StripeService) RefundPayment(transactionID, reason string) (*stripe.Refund, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(transactionID),
	}
	if reason != "" {
		params.AddMetadata("reason", reason)
	}
	return refund.New(params)
}

// ParseWebhook verifies the Stripe-Signature header over the raw body and
// decodes the event. The body is restored so later handlers may re-read it.
func (s *StripeService) ParseWebhook(r *http.Request) (stripe.Event, error) {
	var event stripe.Event
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		return event, err
	}
	r.Body = io.NopCloser(bytes.NewBuffer(payload))
	sigHeader := r.Header.Get("Stripe-Signature")
	return webhook.ConstructEvent(payload, sigHeader, s.WebhookKey)
}
