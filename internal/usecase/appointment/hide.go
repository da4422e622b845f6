package appointment

import (
	"context"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
)

// HideAppointment is the admin delete: the row stays, keeps its status and
// remains visible to its owner.
type HideAppointment struct {
	Deps
}

func NewHideAppointment(deps Deps) *HideAppointment {
	return &HideAppointment{Deps: deps}
}

func (uc *HideAppointment) Execute(
	ctx context.Context,
	actorID uint,
	appointmentID uint,
) error {

	ap, err := loadVisible(ctx, uc.Repo, domain.Viewer{UserID: actorID, IsAdmin: true}, appointmentID)
	if err != nil {
		return err
	}

	if err := uc.Repo.HideFromAdmin(ctx, ap.ID); err != nil {
		return err
	}

	uc.Audit.Dispatch(audit.Event{
		UserID:   &actorID,
		Action:   "appointment_hidden",
		Entity:   "appointment",
		EntityID: &ap.ID,
	})
	return nil
}
