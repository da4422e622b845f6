package appointment

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// CancelAppointment lets the owner withdraw an open booking.
type CancelAppointment struct {
	Deps
}

func NewCancelAppointment(deps Deps) *CancelAppointment {
	return &CancelAppointment{Deps: deps}
}

func (uc *CancelAppointment) Execute(
	ctx context.Context,
	userID uint,
	appointmentID uint,
	lang string,
) (*models.Appointment, error) {

	ap, err := loadVisible(ctx, uc.Repo, domain.Viewer{UserID: userID}, appointmentID)
	if err != nil {
		return nil, err
	}

	if err := domain.CanCancelByOwner(domain.Status(ap.Status)); err != nil {
		return nil, err
	}

	if err := uc.Repo.UpdateStatus(ctx, ap, domain.StatusCancelled); err != nil {
		return nil, err
	}

	uc.Audit.Dispatch(audit.Event{
		UserID:   &userID,
		Action:   "appointment_cancelled",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})

	uc.Notifier.AppointmentCancelled(lang, uc.notificationFor(ap, lang))
	return ap, nil
}

// loadVisible returns the appointment only when the viewer may see it;
// otherwise it is reported as not found.
func loadVisible(
	ctx context.Context,
	repo domain.Repository,
	viewer domain.Viewer,
	id uint,
) (*models.Appointment, error) {

	ap, err := repo.GetAppointment(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, httperr.ErrBusiness("appointment_not_found")
		}
		return nil, err
	}

	if !domain.VisibleTo(viewer, ap) {
		return nil, httperr.ErrBusiness("appointment_not_found")
	}
	return ap, nil
}
