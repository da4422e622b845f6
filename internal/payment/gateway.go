// Package payment sells courses through an external payment provider and
// records each confirmed sale exactly once.
package payment

import (
	"context"
	"errors"
	"net/http"
)

const (
	ProviderStripe      = "stripe"
	ProviderMercadoPago = "mercadopago"
)

var (
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrUnavailable      = errors.New("payment provider not configured")
)

// Purchase is what the buyer is about to pay for. Amount is in minor units.
type Purchase struct {
	CourseID   uint
	CourseName string
	UserEmail  string
	Amount     int
	Currency   string
}

type Checkout struct {
	Provider     string `json:"provider"`
	PaymentID    string `json:"paymentId,omitempty"`
	ClientSecret string `json:"clientSecret,omitempty"`
	CheckoutURL  string `json:"checkoutUrl,omitempty"`
}

// Event is a provider notification reduced to what the shop needs.
type Event struct {
	Provider  string
	PaymentID string
	Succeeded bool
	CourseID  uint
	UserEmail string
	Amount    int
	Currency  string
}

type Gateway interface {
	Name() string
	CreateCheckout(ctx context.Context, p Purchase) (*Checkout, error)
	ParseWebhook(ctx context.Context, payload []byte, header http.Header) (*Event, error)
}
