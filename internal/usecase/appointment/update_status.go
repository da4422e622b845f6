package appointment

import (
	"context"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type UpdateStatusInput struct {
	ActorID       uint
	AppointmentID uint
	Status        string
	Lang          string
}

// UpdateAppointmentStatus is the admin status change. Entering a blocking
// status re-runs the conflict check against every other appointment.
type UpdateAppointmentStatus struct {
	Deps
}

func NewUpdateAppointmentStatus(deps Deps) *UpdateAppointmentStatus {
	return &UpdateAppointmentStatus{Deps: deps}
}

func (uc *UpdateAppointmentStatus) Execute(
	ctx context.Context,
	in UpdateStatusInput,
) (*models.Appointment, error) {

	status, err := domain.ParseStatus(in.Status)
	if err != nil {
		return nil, err
	}

	ap, err := loadVisible(ctx, uc.Repo, domain.Viewer{UserID: in.ActorID, IsAdmin: true}, in.AppointmentID)
	if err != nil {
		return nil, err
	}

	previous := domain.Status(ap.Status)
	if err := uc.Repo.UpdateStatus(ctx, ap, status); err != nil {
		return nil, err
	}

	actorID := in.ActorID
	uc.Audit.Dispatch(audit.Event{
		UserID:   &actorID,
		Action:   "appointment_status_changed",
		Entity:   "appointment",
		EntityID: &ap.ID,
		Metadata: map[string]any{"from": previous, "to": status},
	})

	if previous != status && status == domain.StatusConfirmed {
		uc.Notifier.AppointmentConfirmed(in.Lang, uc.notificationFor(ap, in.Lang))
	}

	return ap, nil
}
