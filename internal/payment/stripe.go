package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

type StripeGateway struct {
	intents       *paymentintent.Client
	webhookSecret string
}

func NewStripeGateway(secretKey, webhookSecret string) *StripeGateway {
	return &StripeGateway{
		intents: &paymentintent.Client{
			B:   stripe.GetBackend(stripe.APIBackend),
			Key: secretKey,
		},
		webhookSecret: webhookSecret,
	}
}

func (g *StripeGateway) Name() string { return ProviderStripe }

func (g *StripeGateway) CreateCheckout(ctx context.Context, p Purchase) (*Checkout, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(int64(p.Amount)),
		Currency: stripe.String(strings.ToLower(p.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if p.UserEmail != "" {
		params.ReceiptEmail = stripe.String(p.UserEmail)
	}
	params.Context = ctx
	params.AddMetadata("courseId", strconv.FormatUint(uint64(p.CourseID), 10))
	params.AddMetadata("courseName", p.CourseName)
	params.AddMetadata("userEmail", p.UserEmail)

	pi, err := g.intents.New(params)
	if err != nil {
		return nil, fmt.Errorf("stripe: create payment intent: %w", err)
	}

	return &Checkout{
		Provider:     ProviderStripe,
		PaymentID:    pi.ID,
		ClientSecret: pi.ClientSecret,
	}, nil
}

// ParseWebhook refuses every event when no webhook secret is configured,
// since an empty key would accept anyone's signature.
func (g *StripeGateway) ParseWebhook(_ context.Context, payload []byte, header http.Header) (*Event, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}

	ev, err := webhook.ConstructEventWithOptions(
		payload,
		header.Get("Stripe-Signature"),
		g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true},
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	out := &Event{Provider: ProviderStripe}
	if ev.Type != stripe.EventTypePaymentIntentSucceeded {
		return out, nil
	}

	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("stripe: decode payment intent: %w", err)
	}

	courseID, err := strconv.ParseUint(pi.Metadata["courseId"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("stripe: payment intent %s has no courseId", pi.ID)
	}

	out.PaymentID = pi.ID
	out.Succeeded = true
	out.CourseID = uint(courseID)
	out.UserEmail = pi.Metadata["userEmail"]
	out.Amount = int(pi.Amount)
	out.Currency = string(pi.Currency)
	return out, nil
}
