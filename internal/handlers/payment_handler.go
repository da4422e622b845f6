package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/httpresp"
	"github.com/BruksfildServices01/salon-booking/internal/middleware"
	"github.com/BruksfildServices01/salon-booking/internal/payment"
)

// Stripe never sends more than this.
const maxWebhookBody = 64 << 10

type PaymentHandler struct {
	payments *payment.Service
	// Webhooks carry no request language; purchase e-mails use this one.
	defaultLang string
}

func NewPaymentHandler(payments *payment.Service, defaultLang string) *PaymentHandler {
	return &PaymentHandler{payments: payments, defaultLang: defaultLang}
}

type CreatePaymentIntentRequest struct {
	CourseID uint `json:"courseId" binding:"required"`
}

// CreatePaymentIntent starts a checkout for the caller. The amount always
// comes from the stored course price.
func (h *PaymentHandler) CreatePaymentIntent(c *gin.Context) {
	var req CreatePaymentIntentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidRequest(c, err)
		return
	}

	checkout, err := h.payments.Checkout(c.Request.Context(), req.CourseID, middleware.Email(c), requestLang(c))
	if err != nil {
		if errors.Is(err, payment.ErrUnavailable) {
			httperr.Unavailable(c, "payments_unavailable", "Payments are not configured.")
			return
		}
		writeError(c, err, "failed_to_create_payment")
		return
	}
	httpresp.OK(c, checkout)
}

func (h *PaymentHandler) StripeWebhook(c *gin.Context) {
	h.webhook(c, payment.ProviderStripe)
}

func (h *PaymentHandler) MercadoPagoWebhook(c *gin.Context) {
	// Legacy notifications arrive as query parameters only.
	c.Request.Header.Set("X-Original-Query", c.Request.URL.RawQuery)
	h.webhook(c, payment.ProviderMercadoPago)
}

func (h *PaymentHandler) webhook(c *gin.Context, provider string) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody))
	if err != nil {
		httperr.BadRequest(c, "invalid_payload", "Could not read request body.")
		return
	}

	err = h.payments.HandleWebhook(c.Request.Context(), provider, payload, c.Request.Header, h.defaultLang)
	switch {
	case errors.Is(err, payment.ErrInvalidSignature):
		httperr.BadRequest(c, "invalid_signature", "Webhook signature verification failed.")
		return
	case errors.Is(err, payment.ErrUnavailable):
		httperr.Unavailable(c, "payments_unavailable", "Payments are not configured.")
		return
	}

	httpresp.OK(c, gin.H{"received": true})
}

func (h *PaymentHandler) ListPurchases(c *gin.Context) {
	purchases, err := h.payments.ListPurchases(c.Request.Context())
	if err != nil {
		httperr.Internal(c, "failed_to_list_purchases", "Could not list purchases.", err)
		return
	}
	httpresp.List(c, purchases)
}
