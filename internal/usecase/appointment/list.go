package appointment

import (
	"context"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/dto"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

type ListAppointments struct {
	repo domain.Repository
}

func NewListAppointments(repo domain.Repository) *ListAppointments {
	return &ListAppointments{repo: repo}
}

// Execute returns the admin view (everything not hidden) for admins and
// the caller's own bookings, hidden ones included, for everyone else.
func (uc *ListAppointments) Execute(
	ctx context.Context,
	viewer domain.Viewer,
) ([]models.Appointment, error) {

	var (
		apps []models.Appointment
		err  error
	)
	if viewer.IsAdmin {
		apps, err = uc.repo.ListForAdmin(ctx)
	} else {
		apps, err = uc.repo.ListForUser(ctx, viewer.UserID)
	}
	if err != nil {
		return nil, err
	}

	return domain.FilterVisible(viewer, apps), nil
}

type ListAppointmentsByDate struct {
	repo     domain.Repository
	settings Settings
}

func NewListAppointmentsByDate(
	repo domain.Repository,
	settings Settings,
) *ListAppointmentsByDate {
	return &ListAppointmentsByDate{
		repo:     repo,
		settings: settings,
	}
}

// Execute lists appointments on the salon-local day, without personal data.
func (uc *ListAppointmentsByDate) Execute(
	ctx context.Context,
	date string,
) ([]dto.AppointmentPublicDTO, error) {

	day, err := timezone.ParseDate(uc.settings.Timezone, date)
	if err != nil {
		return nil, httperr.ErrBusiness("invalid_date")
	}

	start, end := timezone.DayBounds(day)

	appointments, err := uc.repo.ListBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}

	loc := uc.settings.location()
	out := make([]dto.AppointmentPublicDTO, 0, len(appointments))
	for _, ap := range appointments {
		out = append(out, dto.AppointmentPublicDTO{
			ID:              ap.ID,
			AppointmentDate: ap.AppointmentDate.In(loc),
			EndTime:         ap.EndTime.In(loc),
			Status:          ap.Status,
			ServiceID:       ap.ServiceID,
		})
	}

	return out, nil
}
