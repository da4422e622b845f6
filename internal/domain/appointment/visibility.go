package appointment

import "github.com/BruksfildServices01/salon-booking/internal/models"

type Viewer struct {
	UserID  uint
	IsAdmin bool
}

// VisibleTo is the single per-viewer projection of an appointment.
// Owners always see their own bookings; admins see everything they have
// not hidden from the admin view.
func VisibleTo(v Viewer, ap *models.Appointment) bool {
	if ap.UserID != nil && *ap.UserID == v.UserID {
		return true
	}
	return v.IsAdmin && !ap.IsDeletedFromAdmin
}

func FilterVisible(v Viewer, aps []models.Appointment) []models.Appointment {
	out := make([]models.Appointment, 0, len(aps))
	for i := range aps {
		if VisibleTo(v, &aps[i]) {
			out = append(out, aps[i])
		}
	}
	return out
}
