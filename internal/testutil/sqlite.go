// Package testutil builds the in-memory database the package tests share.
package testutil

import (
	"io"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/BruksfildServices01/salon-booking/internal/db"
	"github.com/BruksfildServices01/salon-booking/internal/i18n"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

// NewDB opens a fresh in-memory SQLite database with the full schema.
// A single connection keeps every query on the same in-memory database.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(gdb, []string{"pending", "confirmed"}, Logger()))
	return gdb
}

// Logger discards output.
func Logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func SeedService(t *testing.T, gdb *gorm.DB, name string, price, duration int) *models.Service {
	t.Helper()

	svc := &models.Service{
		Name:     datatypes.NewJSONType(i18n.Text{"ua": name, "en": name}),
		Price:    price,
		Duration: duration,
		IsActive: true,
	}
	require.NoError(t, gdb.Create(svc).Error)
	return svc
}

func SeedUser(t *testing.T, gdb *gorm.DB, email string, admin bool) *models.User {
	t.Helper()

	u := &models.User{Email: email, IsAdmin: admin}
	require.NoError(t, gdb.Create(u).Error)
	return u
}
