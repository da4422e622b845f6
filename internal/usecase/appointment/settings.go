package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/audit"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
	"github.com/BruksfildServices01/salon-booking/internal/notify"
	"github.com/BruksfildServices01/salon-booking/internal/timezone"
)

// Settings carries the salon-wide booking rules shared by every use case.
type Settings struct {
	Timezone   string
	MinAdvance time.Duration
	Grid       domain.SlotGrid

	// Now is overridden in tests.
	Now func() time.Time
}

func (s Settings) now() time.Time {
	if s.Now != nil {
		return s.Now().In(s.location())
	}
	return timezone.NowIn(s.Timezone)
}

func (s Settings) location() *time.Location {
	return timezone.Location(s.Timezone)
}

// Deps groups the collaborators every appointment use case receives.
type Deps struct {
	Repo     domain.Repository
	Audit    *audit.Dispatcher
	Notifier notify.Notifier
	Settings Settings
}

func (d Deps) notificationFor(ap *models.Appointment, lang string) notify.AppointmentInfo {
	return notify.AppointmentInfo{
		Email:       ap.RecipientEmail(),
		Name:        ap.RecipientName(),
		ServiceName: ap.Service.Name.Data().Get(lang),
		Start:       ap.AppointmentDate.In(d.Settings.location()),
		Status:      ap.Status,
		Notes:       ap.Notes,
	}
}
