package appointment

import (
	"context"
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

type Repository interface {
	// -------- Service --------
	GetActiveService(ctx context.Context, id uint) (*models.Service, error)

	// UpdateService applies updates to the service. A duration change
	// re-times every appointment of the service not yet over at from.
	UpdateService(ctx context.Context, id uint, updates map[string]any, from time.Time) error

	// -------- Availability --------

	// Conflicts returns every blocking, non admin-deleted appointment whose
	// window overlaps w, skipping excludeID when set.
	Conflicts(ctx context.Context, w Window, excludeID *uint) ([]models.Appointment, error)

	// -------- Appointment (write, conflict-checked) --------
	CreateAppointment(ctx context.Context, ap *models.Appointment) error
	UpdateStatus(ctx context.Context, ap *models.Appointment, status Status) error

	// -------- Appointment (read / hide) --------
	GetAppointment(ctx context.Context, id uint) (*models.Appointment, error)
	ListForAdmin(ctx context.Context) ([]models.Appointment, error)
	ListForUser(ctx context.Context, userID uint) ([]models.Appointment, error)
	ListBetween(ctx context.Context, start, end time.Time) ([]models.Appointment, error)
	HideFromAdmin(ctx context.Context, id uint) error
}
