package payment

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v82/webhook"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/i18n"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/testutil"
)

type fakeGateway struct {
	event    *Event
	err      error
	lastBuy  Purchase
	checkout *Checkout
}

func (g *fakeGateway) Name() string { return ProviderStripe }

func (g *fakeGateway) CreateCheckout(_ context.Context, p Purchase) (*Checkout, error) {
	g.lastBuy = p
	return g.checkout, nil
}

func (g *fakeGateway) ParseWebhook(context.Context, []byte, http.Header) (*Event, error) {
	return g.event, g.err
}

type courseMails struct {
	mu   sync.Mutex
	sent []notify.CourseInfo
}

func (m *courseMails) AppointmentCreated(string, notify.AppointmentInfo)   {}
func (m *courseMails) AppointmentConfirmed(string, notify.AppointmentInfo) {}
func (m *courseMails) AppointmentCancelled(string, notify.AppointmentInfo) {}
func (m *courseMails) CoursePurchased(_ string, info notify.CourseInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, info)
}

func setup(t *testing.T, gw Gateway) (*gorm.DB, *Service, *courseMails, *models.Course) {
	t.Helper()

	db := testutil.NewDB(t)
	dispatcher := audit.NewDispatcher(audit.New(db), testutil.Logger())
	t.Cleanup(dispatcher.Close)

	course := &models.Course{
		Name:     datatypes.NewJSONType(i18n.Text{"ua": "Курс манікюру", "en": "Manicure course"}),
		Price:    150000,
		IsActive: true,
	}
	require.NoError(t, db.Create(course).Error)

	mails := &courseMails{}
	svc := NewService(db, ProviderStripe, "uah", mails, dispatcher, testutil.Logger(), gw)
	return db, svc, mails, course
}

func TestCheckout_PriceComesFromDatabase(t *testing.T) {
	gw := &fakeGateway{checkout: &Checkout{Provider: ProviderStripe, PaymentID: "pi_1", ClientSecret: "cs"}}
	db, svc, _, course := setup(t, gw)

	out, err := svc.Checkout(context.Background(), course.ID, "buyer@example.com", "en")
	require.NoError(t, err)
	assert.Equal(t, "cs", out.ClientSecret)
	assert.Equal(t, 150000, gw.lastBuy.Amount)
	assert.Equal(t, "Manicure course", gw.lastBuy.CourseName)
	assert.Equal(t, "uah", gw.lastBuy.Currency)

	require.NoError(t, db.Model(course).Update("is_active", false).Error)
	_, err = svc.Checkout(context.Background(), course.ID, "buyer@example.com", "en")
	assert.True(t, httperr.IsBusiness(err, "course_not_found"))

	_, err = svc.Checkout(context.Background(), 999, "buyer@example.com", "en")
	assert.True(t, httperr.IsBusiness(err, "course_not_found"))
}

func TestCheckout_NoGateway(t *testing.T) {
	_, svc, _, course := setup(t, nil)
	_, err := svc.Checkout(context.Background(), course.ID, "a@b.c", "ua")
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestHandleWebhook_RecordsPurchaseOnce(t *testing.T) {
	gw := &fakeGateway{}
	db, svc, mails, course := setup(t, gw)
	gw.event = &Event{
		Provider:  ProviderStripe,
		PaymentID: "pi_42",
		Succeeded: true,
		CourseID:  course.ID,
		UserEmail: "buyer@example.com",
		Amount:    150000,
		Currency:  "uah",
	}

	require.NoError(t, svc.HandleWebhook(context.Background(), ProviderStripe, nil, nil, "ua"))
	require.NoError(t, svc.HandleWebhook(context.Background(), ProviderStripe, nil, nil, "ua"))

	var purchases []models.CoursePurchase
	require.NoError(t, db.Find(&purchases).Error)
	require.Len(t, purchases, 1)
	assert.Equal(t, "buyer@example.com", purchases[0].UserEmail)
	assert.Equal(t, 150000, purchases[0].Amount)

	require.Len(t, mails.sent, 1)
	assert.Equal(t, "Курс манікюру", mails.sent[0].CourseName)

	listed, err := svc.ListPurchases(context.Background())
	require.NoError(t, err)
	require.Len(t, listed, 1)
	assert.Equal(t, course.ID, listed[0].Course.ID)
}

func TestHandleWebhook_ErrorsAfterVerificationAreSwallowed(t *testing.T) {
	gw := &fakeGateway{}
	_, svc, mails, _ := setup(t, gw)

	gw.err = errors.New("decode failed")
	assert.NoError(t, svc.HandleWebhook(context.Background(), ProviderStripe, nil, nil, "ua"))

	gw.err = nil
	gw.event = &Event{Provider: ProviderStripe, PaymentID: "pi_x", Succeeded: true, CourseID: 999}
	assert.NoError(t, svc.HandleWebhook(context.Background(), ProviderStripe, nil, nil, "ua"))
	assert.Empty(t, mails.sent)

	gw.err = ErrInvalidSignature
	assert.ErrorIs(t, svc.HandleWebhook(context.Background(), ProviderStripe, nil, nil, "ua"), ErrInvalidSignature)

	assert.ErrorIs(t, svc.HandleWebhook(context.Background(), ProviderMercadoPago, nil, nil, "ua"), ErrUnavailable)
}

func TestStripeGateway_ParseWebhook(t *testing.T) {
	g := NewStripeGateway("sk_test_x", "whsec_test")
	payload := []byte(`{
		"id": "evt_1",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_123",
			"object": "payment_intent",
			"amount": 150000,
			"currency": "uah",
			"metadata": {"courseId": "3", "userEmail": "buyer@example.com"}
		}}
	}`)

	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "whsec_test",
		Timestamp: time.Now(),
	})

	header := http.Header{}
	header.Set("Stripe-Signature", signed.Header)

	ev, err := g.ParseWebhook(context.Background(), payload, header)
	require.NoError(t, err)
	assert.True(t, ev.Succeeded)
	assert.Equal(t, "pi_123", ev.PaymentID)
	assert.Equal(t, uint(3), ev.CourseID)
	assert.Equal(t, "buyer@example.com", ev.UserEmail)
	assert.Equal(t, 150000, ev.Amount)

	header.Set("Stripe-Signature", "t=1,v1=deadbeef")
	_, err = g.ParseWebhook(context.Background(), payload, header)
	assert.ErrorIs(t, err, ErrInvalidSignature)
}

func TestStripeGateway_EmptyWebhookSecretRejectsEverything(t *testing.T) {
	g := NewStripeGateway("sk_test_x", "")
	db, svc, mails, course := setup(t, g)

	payload := []byte(`{
		"id": "evt_forged",
		"object": "event",
		"type": "payment_intent.succeeded",
		"data": {"object": {
			"id": "pi_forged",
			"object": "payment_intent",
			"amount": 1,
			"currency": "uah",
			"metadata": {"courseId": "` + strconv.FormatUint(uint64(course.ID), 10) + `", "userEmail": "x@example.com"}
		}}
	}`)
	signed := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   payload,
		Secret:    "",
		Timestamp: time.Now(),
	})
	header := http.Header{}
	header.Set("Stripe-Signature", signed.Header)

	err := svc.HandleWebhook(context.Background(), ProviderStripe, payload, header, "ua")
	assert.ErrorIs(t, err, ErrInvalidSignature)

	var count int64
	require.NoError(t, db.Model(&models.CoursePurchase{}).Count(&count).Error)
	assert.Zero(t, count)
	assert.Empty(t, mails.sent)
}

func TestMercadoPagoNotificationParsing(t *testing.T) {
	id, ok := notificationPaymentID([]byte(`{"type":"payment","data":{"id":"123"}}`), http.Header{})
	assert.True(t, ok)
	assert.Equal(t, 123, id)

	h := http.Header{}
	h.Set("X-Original-Query", "topic=payment&id=77")
	id, ok = notificationPaymentID(nil, h)
	assert.True(t, ok)
	assert.Equal(t, 77, id)

	_, ok = notificationPaymentID([]byte(`{"type":"merchant_order","data":{"id":"1"}}`), http.Header{})
	assert.False(t, ok)

	courseID, email, err := parseExternalReference(externalReference(9, "a:b@example.com"))
	require.NoError(t, err)
	assert.Equal(t, uint(9), courseID)
	assert.Equal(t, "a:b@example.com", email)

	_, _, err = parseExternalReference("order-1")
	assert.Error(t, err)
}
