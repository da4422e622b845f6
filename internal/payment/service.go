package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
)

type Service struct {
	db       *gorm.DB
	gateways map[string]Gateway
	primary  string
	currency string
	notifier notify.Notifier
	audit    *audit.Dispatcher
	log      logrus.FieldLogger
}

func NewService(
	db *gorm.DB,
	primary string,
	currency string,
	notifier notify.Notifier,
	auditDispatcher *audit.Dispatcher,
	log logrus.FieldLogger,
	gateways ...Gateway,
) *Service {
	s := &Service{
		db:       db,
		gateways: make(map[string]Gateway, len(gateways)),
		primary:  primary,
		currency: currency,
		notifier: notifier,
		audit:    auditDispatcher,
		log:      log,
	}
	for _, g := range gateways {
		if g != nil {
			s.gateways[g.Name()] = g
		}
	}
	return s
}

// Checkout prices the course from the database, never from the client.
func (s *Service) Checkout(ctx context.Context, courseID uint, userEmail, lang string) (*Checkout, error) {
	gw, ok := s.gateways[s.primary]
	if !ok {
		return nil, ErrUnavailable
	}

	var course models.Course
	if err := s.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", courseID, true).
		First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("course_not_found")
		}
		return nil, err
	}

	checkout, err := gw.CreateCheckout(ctx, Purchase{
		CourseID:   course.ID,
		CourseName: course.Name.Data().Get(lang),
		UserEmail:  userEmail,
		Amount:     course.Price,
		Currency:   s.currency,
	})
	if err != nil {
		metrics.Payments.WithLabelValues(gw.Name(), "checkout_failed").Inc()
		return nil, err
	}

	metrics.Payments.WithLabelValues(gw.Name(), "checkout_created").Inc()
	return checkout, nil
}

// HandleWebhook verifies a provider notification and records a successful
// purchase. Only an invalid signature is returned to the caller; anything
// that goes wrong afterwards is logged so the provider does not retry.
func (s *Service) HandleWebhook(ctx context.Context, provider string, payload []byte, header http.Header, lang string) error {
	gw, ok := s.gateways[provider]
	if !ok {
		return ErrUnavailable
	}

	ev, err := gw.ParseWebhook(ctx, payload, header)
	if err != nil {
		if errors.Is(err, ErrInvalidSignature) {
			metrics.Payments.WithLabelValues(provider, "bad_signature").Inc()
			return err
		}
		s.log.WithError(err).WithField("provider", provider).Error("payment webhook")
		return nil
	}
	if !ev.Succeeded {
		return nil
	}

	if err := s.recordPurchase(ctx, ev, lang); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"provider":  provider,
			"paymentId": ev.PaymentID,
		}).Error("record course purchase")
	}
	return nil
}

func (s *Service) recordPurchase(ctx context.Context, ev *Event, lang string) error {
	var course models.Course
	if err := s.db.WithContext(ctx).First(&course, ev.CourseID).Error; err != nil {
		return fmt.Errorf("load course %d: %w", ev.CourseID, err)
	}

	purchase := models.CoursePurchase{
		CourseID:  course.ID,
		UserEmail: ev.UserEmail,
		Provider:  ev.Provider,
		PaymentID: ev.PaymentID,
		Amount:    ev.Amount,
		Currency:  ev.Currency,
	}

	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "payment_id"}}, DoNothing: true}).
		Omit(clause.Associations).
		Create(&purchase)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		metrics.Payments.WithLabelValues(ev.Provider, "duplicate").Inc()
		return nil
	}

	metrics.Payments.WithLabelValues(ev.Provider, "succeeded").Inc()

	s.audit.Dispatch(audit.Event{
		Action:   "course_purchased",
		Entity:   "course",
		EntityID: &course.ID,
		Metadata: map[string]any{
			"paymentId": ev.PaymentID,
			"provider":  ev.Provider,
			"amount":    ev.Amount,
			"userEmail": ev.UserEmail,
		},
	})

	s.notifier.CoursePurchased(lang, notify.CourseInfo{
		Email:      ev.UserEmail,
		CourseName: course.Name.Data().Get(lang),
		Amount:     ev.Amount,
		Currency:   ev.Currency,
	})
	return nil
}

func (s *Service) ListPurchases(ctx context.Context) ([]models.CoursePurchase, error) {
	var out []models.CoursePurchase
	err := s.db.WithContext(ctx).
		Preload("Course").
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
