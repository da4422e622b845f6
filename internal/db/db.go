package db

import (
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/salon-booking/internal/config"
	domain "github.com/BruksfildServices01/salon-booking/internal/domain/appointment"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func NewDB(cfg *config.Config, log *logrus.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DBUrl), &gorm.Config{
		PrepareStmt: true,
		Logger: logger.New(log, logger.Config{
			SlowThreshold:             500 * time.Millisecond,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql.DB: %w", err)
	}

	sqlDB.SetMaxOpenConns(10)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)
	sqlDB.SetConnMaxIdleTime(10 * time.Minute)

	if err := Migrate(db, cfg.BlockingStatuses, log); err != nil {
		return nil, err
	}

	return db, nil
}

// Migrate creates the schema. On Postgres it also installs the overlap
// exclusion constraint; failing to do so is logged, not fatal, because the
// booking transaction re-checks conflicts anyway.
func Migrate(db *gorm.DB, blocking []string, log logrus.FieldLogger) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Service{},
		&models.Course{},
		&models.CoursePurchase{},
		&models.Appointment{},
		&models.Review{},
		&models.AuditLog{},
	); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	if db.Dialector.Name() != "postgres" {
		return nil
	}

	if err := installOverlapConstraint(db, blocking); err != nil {
		log.WithError(err).Warn("appointment overlap constraint not installed")
	}
	return nil
}

const overlapConstraint = "appointments_no_overlap"

// overlapStatuses is the quoted status list of the constraint's WHERE clause.
func overlapStatuses(blocking []string) string {
	policy := domain.NewBlockingPolicy(blocking)

	quoted := make([]string, 0, len(policy.Statuses()))
	for _, s := range policy.Statuses() {
		quoted = append(quoted, "'"+s+"'")
	}
	return strings.Join(quoted, ", ")
}

func installOverlapConstraint(db *gorm.DB, blocking []string) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
			return err
		}
		if err := tx.Exec(`ALTER TABLE appointments DROP CONSTRAINT IF EXISTS ` + overlapConstraint).Error; err != nil {
			return err
		}
		return tx.Exec(fmt.Sprintf(`
			ALTER TABLE appointments ADD CONSTRAINT %s
			EXCLUDE USING gist (tstzrange(appointment_date, end_time, '[)') WITH &&)
			WHERE (status IN (%s) AND NOT is_deleted_from_admin)`,
			overlapConstraint, overlapStatuses(blocking),
		)).Error
	})
}
