package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mercadopago/sdk-go/pkg/config"
	"github.com/mercadopago/sdk-go/pkg/payment"
	"github.com/mercadopago/sdk-go/pkg/preference"
)

// MercadoPagoGateway uses Checkout Pro: the buyer is redirected to a hosted
// page and the result arrives as a notification carrying only a payment id.
type MercadoPagoGateway struct {
	preferences preference.Client
	payments    payment.Client
	notifyURL   string
	returnURL   string
}

func NewMercadoPagoGateway(accessToken, baseURL, apiURL string) (*MercadoPagoGateway, error) {
	cfg, err := config.New(accessToken)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: config: %w", err)
	}

	return &MercadoPagoGateway{
		preferences: preference.NewClient(cfg),
		payments:    payment.NewClient(cfg),
		notifyURL:   strings.TrimRight(apiURL, "/") + "/api/webhook/mercadopago",
		returnURL:   strings.TrimRight(baseURL, "/") + "/courses",
	}, nil
}

func (g *MercadoPagoGateway) Name() string { return ProviderMercadoPago }

func (g *MercadoPagoGateway) CreateCheckout(ctx context.Context, p Purchase) (*Checkout, error) {
	req := preference.Request{
		Items: []preference.ItemRequest{{
			ID:         strconv.FormatUint(uint64(p.CourseID), 10),
			Title:      p.CourseName,
			Quantity:   1,
			UnitPrice:  float64(p.Amount) / 100,
			CurrencyID: strings.ToUpper(p.Currency),
		}},
		ExternalReference: externalReference(p.CourseID, p.UserEmail),
		NotificationURL:   g.notifyURL,
		BackURLs: &preference.BackURLsRequest{
			Success: g.returnURL,
			Pending: g.returnURL,
			Failure: g.returnURL,
		},
	}
	if p.UserEmail != "" {
		req.Payer = &preference.PayerRequest{Email: p.UserEmail}
	}

	pref, err := g.preferences.Create(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: create preference: %w", err)
	}

	return &Checkout{
		Provider:    ProviderMercadoPago,
		PaymentID:   pref.ID,
		CheckoutURL: pref.InitPoint,
	}, nil
}

type mpNotification struct {
	Type   string `json:"type"`
	Action string `json:"action"`
	Data   struct {
		ID string `json:"id"`
	} `json:"data"`
}

// ParseWebhook trusts nothing in the notification except the payment id,
// which is looked up again through the API.
func (g *MercadoPagoGateway) ParseWebhook(ctx context.Context, payload []byte, header http.Header) (*Event, error) {
	out := &Event{Provider: ProviderMercadoPago}

	id, ok := notificationPaymentID(payload, header)
	if !ok {
		return out, nil
	}

	pay, err := g.payments.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("mercadopago: get payment %d: %w", id, err)
	}
	if pay.Status != "approved" {
		return out, nil
	}

	courseID, email, err := parseExternalReference(pay.ExternalReference)
	if err != nil {
		return nil, err
	}

	out.PaymentID = "mp_" + strconv.Itoa(pay.ID)
	out.Succeeded = true
	out.CourseID = courseID
	out.UserEmail = email
	out.Amount = int(math.Round(pay.TransactionAmount * 100))
	out.Currency = strings.ToLower(pay.CurrencyID)
	return out, nil
}

// notificationPaymentID accepts both the JSON body and the legacy
// ?topic=payment&id=N query form, which is forwarded in X-Original-Query.
func notificationPaymentID(payload []byte, header http.Header) (int, bool) {
	var n mpNotification
	if err := json.Unmarshal(payload, &n); err == nil && n.Type == "payment" && n.Data.ID != "" {
		id, err := strconv.Atoi(n.Data.ID)
		return id, err == nil
	}

	q, err := url.ParseQuery(header.Get("X-Original-Query"))
	if err != nil {
		return 0, false
	}
	if q.Get("topic") != "payment" && q.Get("type") != "payment" {
		return 0, false
	}
	raw := q.Get("id")
	if raw == "" {
		raw = q.Get("data.id")
	}
	id, err := strconv.Atoi(raw)
	return id, err == nil
}

func externalReference(courseID uint, email string) string {
	return fmt.Sprintf("course:%d:%s", courseID, email)
}

func parseExternalReference(ref string) (uint, string, error) {
	parts := strings.SplitN(ref, ":", 3)
	if len(parts) != 3 || parts[0] != "course" {
		return 0, "", fmt.Errorf("mercadopago: unexpected external reference %q", ref)
	}
	id, err := strconv.ParseUint(parts[1], 10, 64)
	if err != nil {
		return 0, "", fmt.Errorf("mercadopago: unexpected external reference %q", ref)
	}
	return uint(id), parts[2], nil
}
