package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// bookingLockKey serialises every booking write on Postgres.
const bookingLockKey = 847_201_551

type AppointmentGormRepository struct {
	db     *gorm.DB
	policy domain.BlockingPolicy
}

func NewAppointmentGormRepository(db *gorm.DB, policy domain.BlockingPolicy) *AppointmentGormRepository {
	return &AppointmentGormRepository{db: db, policy: policy}
}

// --------------------------------------------------
// Service
// --------------------------------------------------

func (r *AppointmentGormRepository) GetActiveService(
	ctx context.Context,
	id uint,
) (*models.Service, error) {

	var svc models.Service
	if err := r.db.WithContext(ctx).
		Where("id = ? AND is_active = ?", id, true).
		First(&svc).Error; err != nil {
		return nil, err
	}
	return &svc, nil
}

// UpdateService runs under the booking lock: a longer duration fails with
// time_conflict when a re-timed appointment would overlap another.
func (r *AppointmentGormRepository) UpdateService(
	ctx context.Context,
	id uint,
	updates map[string]any,
	from time.Time,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBooking(tx); err != nil {
			return err
		}

		res := tx.Model(&models.Service{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		minutes, ok := updates["duration"].(int)
		if !ok {
			return nil
		}
		return r.retime(tx, id, minutes, from)
	})

	return mapOverlap(err)
}

// retime rewrites end_time for the service's remaining appointments, then
// checks each blocking one against the others.
func (r *AppointmentGormRepository) retime(
	tx *gorm.DB,
	serviceID uint,
	minutes int,
	from time.Time,
) error {

	var apps []models.Appointment
	if err := tx.
		Where("service_id = ? AND end_time > ?", serviceID, from.UTC()).
		Order("appointment_date ASC").
		Find(&apps).Error; err != nil {
		return err
	}

	for i := range apps {
		w := domain.NewWindow(apps[i].AppointmentDate, minutes)
		if err := tx.Model(&models.Appointment{}).
			Where("id = ?", apps[i].ID).
			Update("end_time", w.End).Error; err != nil {
			return err
		}
	}

	for i := range apps {
		ap := &apps[i]
		if ap.IsDeletedFromAdmin || !r.policy.Blocks(domain.Status(ap.Status)) {
			continue
		}
		if err := r.assertFree(tx, domain.NewWindow(ap.AppointmentDate, minutes), &ap.ID); err != nil {
			return err
		}
	}
	return nil
}

// --------------------------------------------------
// Availability
// --------------------------------------------------

func (r *AppointmentGormRepository) Conflicts(
	ctx context.Context,
	w domain.Window,
	excludeID *uint,
) ([]models.Appointment, error) {
	return r.conflicts(r.db.WithContext(ctx), w, excludeID)
}

func (r *AppointmentGormRepository) conflicts(
	tx *gorm.DB,
	w domain.Window,
	excludeID *uint,
) ([]models.Appointment, error) {

	q := tx.
		Where("status IN ?", r.policy.Statuses()).
		Where("is_deleted_from_admin = ?", false).
		Where("appointment_date < ? AND end_time > ?", w.End.UTC(), w.Start.UTC())

	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}

	var apps []models.Appointment
	if err := q.Order("appointment_date ASC").Find(&apps).Error; err != nil {
		return nil, err
	}
	return apps, nil
}

// lockBooking takes the transaction-scoped advisory lock on Postgres.
// SQLite serialises writers on its own.
func lockBooking(tx *gorm.DB) error {
	if tx.Dialector.Name() != "postgres" {
		return nil
	}
	return tx.Exec("SELECT pg_advisory_xact_lock(?)", bookingLockKey).Error
}

func (r *AppointmentGormRepository) assertFree(
	tx *gorm.DB,
	w domain.Window,
	excludeID *uint,
) error {

	apps, err := r.conflicts(tx, w, excludeID)
	if err != nil {
		return err
	}
	if len(apps) > 0 {
		return httperr.ErrBusiness("time_conflict")
	}
	return nil
}

// --------------------------------------------------
// Appointment (create / status change)
// --------------------------------------------------

// CreateAppointment re-checks availability and inserts in one transaction.
func (r *AppointmentGormRepository) CreateAppointment(
	ctx context.Context,
	ap *models.Appointment,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBooking(tx); err != nil {
			return err
		}

		if r.policy.Blocks(domain.Status(ap.Status)) {
			if err := r.assertFree(tx, domain.WindowOf(ap), nil); err != nil {
				return err
			}
		}

		return tx.Omit(clause.Associations).Create(ap).Error
	})

	return mapOverlap(err)
}

func (r *AppointmentGormRepository) UpdateStatus(
	ctx context.Context,
	ap *models.Appointment,
	status domain.Status,
) error {

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := lockBooking(tx); err != nil {
			return err
		}

		if r.policy.Blocks(status) && !ap.IsDeletedFromAdmin {
			if err := r.assertFree(tx, domain.WindowOf(ap), &ap.ID); err != nil {
				return err
			}
		}

		res := tx.Model(&models.Appointment{}).
			Where("id = ?", ap.ID).
			Update("status", string(status))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}

		ap.Status = string(status)
		return nil
	})

	return mapOverlap(err)
}

// mapOverlap turns the Postgres exclusion constraint into the same
// business error the re-check produces.
func mapOverlap(err error) error {
	if httperr.IsExclusionConflict(err) {
		return httperr.ErrBusiness("time_conflict")
	}
	return err
}

// --------------------------------------------------
// Appointment (read / hide)
// --------------------------------------------------

func (r *AppointmentGormRepository) withRelations(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Service").
		Preload("User")
}

func (r *AppointmentGormRepository) GetAppointment(
	ctx context.Context,
	id uint,
) (*models.Appointment, error) {

	var ap models.Appointment
	if err := r.withRelations(ctx).First(&ap, id).Error; err != nil {
		return nil, err
	}
	return &ap, nil
}

func (r *AppointmentGormRepository) ListForAdmin(
	ctx context.Context,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.withRelations(ctx).
		Where("is_deleted_from_admin = ?", false).
		Order("appointment_date DESC").
		Find(&apps).Error
	return apps, err
}

func (r *AppointmentGormRepository) ListForUser(
	ctx context.Context,
	userID uint,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.withRelations(ctx).
		Where("user_id = ?", userID).
		Order("appointment_date DESC").
		Find(&apps).Error
	return apps, err
}

func (r *AppointmentGormRepository) ListBetween(
	ctx context.Context,
	start time.Time,
	end time.Time,
) ([]models.Appointment, error) {

	var apps []models.Appointment
	err := r.db.WithContext(ctx).
		Where(
			"is_deleted_from_admin = ? AND appointment_date >= ? AND appointment_date < ?",
			false, start.UTC(), end.UTC(),
		).
		Order("appointment_date ASC").
		Find(&apps).Error
	return apps, err
}

func (r *AppointmentGormRepository) HideFromAdmin(
	ctx context.Context,
	id uint,
) error {

	res := r.db.WithContext(ctx).
		Model(&models.Appointment{}).
		Where("id = ?", id).
		Update("is_deleted_from_admin", true)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Compile-time check
var _ domain.Repository = (*AppointmentGormRepository)(nil)
