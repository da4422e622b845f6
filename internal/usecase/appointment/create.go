package appointment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/metrics"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// ======================================================
// INPUT
// ======================================================

type CreateAppointmentInput struct {
	UserID uint

	ServiceID       uint
	AppointmentDate string
	Notes           string

	Lang string
}

type CreateClientAppointmentInput struct {
	ActorID uint

	ServiceID       uint
	AppointmentDate string
	Status          string

	ClientName  string
	ClientPhone string
	ClientEmail string
	Notes       string

	Lang string
}

// ======================================================
// USE CASES
// ======================================================

// CreateAppointment books a slot for a signed-in user. The booking starts
// as pending and the client receives an acknowledgement e-mail.
type CreateAppointment struct {
	Deps
}

func NewCreateAppointment(deps Deps) *CreateAppointment {
	return &CreateAppointment{Deps: deps}
}

// CreateClientAppointment lets an admin book a walk-in client without an
// account. The booking is confirmed unless another status is given.
type CreateClientAppointment struct {
	Deps
}

func NewCreateClientAppointment(deps Deps) *CreateClientAppointment {
	return &CreateClientAppointment{Deps: deps}
}

// ======================================================
// EXECUTE
// ======================================================

func (uc *CreateAppointment) Execute(
	ctx context.Context,
	in CreateAppointmentInput,
) (*models.Appointment, error) {

	userID := in.UserID
	ap := &models.Appointment{
		UserID: &userID,
		Status: string(domain.InitialStatusForUser()),
		Notes:  in.Notes,
	}

	created, err := uc.book(ctx, ap, in.ServiceID, in.AppointmentDate, &userID, "user")
	if err != nil {
		return nil, err
	}

	uc.Notifier.AppointmentCreated(in.Lang, uc.notificationFor(created, in.Lang))
	return created, nil
}

func (uc *CreateClientAppointment) Execute(
	ctx context.Context,
	in CreateClientAppointmentInput,
) (*models.Appointment, error) {

	status := domain.InitialStatusForAdmin()
	if in.Status != "" {
		s, err := domain.ParseStatus(in.Status)
		if err != nil {
			return nil, err
		}
		status = s
	}

	ap := &models.Appointment{
		ClientName:  in.ClientName,
		ClientPhone: in.ClientPhone,
		ClientEmail: in.ClientEmail,
		Status:      string(status),
		Notes:       in.Notes,
	}

	actorID := in.ActorID
	created, err := uc.book(ctx, ap, in.ServiceID, in.AppointmentDate, &actorID, "admin")
	if err != nil {
		return nil, err
	}

	info := uc.notificationFor(created, in.Lang)
	if status == domain.StatusConfirmed {
		uc.Notifier.AppointmentConfirmed(in.Lang, info)
	} else {
		uc.Notifier.AppointmentCreated(in.Lang, info)
	}
	return created, nil
}

// book resolves the service and start, then hands the appointment to the
// repository, which re-checks availability inside the insert transaction.
func (d Deps) book(
	ctx context.Context,
	ap *models.Appointment,
	serviceID uint,
	rawDate string,
	actorID *uint,
	origin string,
) (*models.Appointment, error) {

	// --------------------------------------------------
	// 1. Date / time in the salon time zone
	// --------------------------------------------------
	start, err := timezone.ParseDateTime(d.Settings.Timezone, rawDate)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	if err := domain.EnsureFuture(start, d.Settings.now(), d.Settings.MinAdvance); err != nil {
		return nil, err
	}

	// --------------------------------------------------
	// 2. Service
	// --------------------------------------------------
	svc, err := d.Repo.GetActiveService(ctx, serviceID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("service_not_found")
		}
		return nil, err
	}

	w := domain.NewWindow(start, svc.Duration)
	ap.ServiceID = svc.ID
	ap.AppointmentDate = w.Start
	ap.EndTime = w.End

	// --------------------------------------------------
	// 3. Conflict-checked insert
	// --------------------------------------------------
	if err := d.Repo.CreateAppointment(ctx, ap); err != nil {
		if httperr.IsBusiness(err, "time_conflict") {
			metrics.BookingConflicts.Inc()
			d.Audit.Dispatch(audit.Event{
				UserID: actorID,
				Action: "appointment_conflict",
				Entity: "appointment",
				Metadata: map[string]any{
					"serviceId": svc.ID,
					"start":     w.Start,
					"end":       w.End,
				},
			})
		}
		return nil, err
	}

	metrics.AppointmentsCreated.WithLabelValues(origin).Inc()

	// --------------------------------------------------
	// 4. Audit
	// --------------------------------------------------
	d.Audit.Dispatch(audit.Event{
		UserID:   actorID,
		Action:   "appointment_created",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"origin": origin, "status": ap.Status},
	})

	return d.Repo.GetAppointment(ctx, ap.ID)
}
