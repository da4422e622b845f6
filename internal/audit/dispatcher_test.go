package audit

import (
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func initTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.AuditLog{}))
	return db
}

func TestDispatcher_WritesQueuedEventsBeforeClose(t *testing.T) {
	db := initTestDB(t)
	d := NewDispatcher(New(db), logrus.New())

	userID := uint(7)
	entityID := uint(42)
	d.Dispatch(Event{
		UserID:   &userID,
		Action:   "service_created",
		Entity:   "service",
		EntityID: &entityID,
		Metadata: map[string]any{"price": 1000},
	})
	d.Close()

	var logs []models.AuditLog
	require.NoError(t, db.Find(&logs).Error)
	require.Len(t, logs, 1)
	assert.Equal(t, "service_created", logs[0].Action)
	assert.Equal(t, uint(42), *logs[0].EntityID)
	assert.JSONEq(t, `{"price":1000}`, logs[0].Metadata)
}

func TestDispatcher_DispatchAfterCloseIsIgnored(t *testing.T) {
	db := initTestDB(t)
	d := NewDispatcher(New(db), logrus.New())
	d.Close()
	d.Close()

	assert.NotPanics(t, func() {
		d.Dispatch(Event{Action: "late"})
	})
}
