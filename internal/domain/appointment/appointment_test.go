package appointment

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
	"github.com/BruksfildServices01/salon-booking/internal/models"
)

func at(h, m int) time.Time {
	return time.Date(2026, 11, 2, h, m, 0, 0, time.UTC)
}

func TestWindow_OverlapsIffIntervalsIntersect(t *testing.T) {
	existing := NewWindow(at(10, 0), 60)

	tests := []struct {
		name  string
		start time.Time
		dur   int
		want  bool
	}{
		{"same start", at(10, 0), 60, true},
		{"starts inside", at(10, 30), 60, true},
		{"ends inside", at(9, 30), 60, true},
		{"contains", at(9, 0), 180, true},
		{"touches end", at(11, 0), 30, false},
		{"touches start", at(9, 0), 60, false},
		{"far away", at(15, 0), 30, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			candidate := NewWindow(tt.start, tt.dur)
			assert.Equal(t, tt.want, candidate.Overlaps(existing))
			assert.Equal(t, tt.want, existing.Overlaps(candidate))
		})
	}
}

func TestBlockingPolicy_ConfirmedAlwaysBlocks(t *testing.T) {
	p := NewBlockingPolicy([]string{"pending", "bogus"})

	assert.True(t, p.Blocks(StatusConfirmed))
	assert.True(t, p.Blocks(StatusPending))
	assert.False(t, p.Blocks(StatusCancelled))
	assert.Equal(t, []string{"confirmed", "pending"}, p.Statuses())
}

func TestParseStatus(t *testing.T) {
	s, err := ParseStatus("completed")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, s)

	_, err = ParseStatus("done")
	assert.True(t, httperr.IsBusiness(err, "invalid_status"))
}

func TestCanCancelByOwner(t *testing.T) {
	assert.NoError(t, CanCancelByOwner(StatusPending))
	assert.NoError(t, CanCancelByOwner(StatusConfirmed))
	assert.True(t, httperr.IsBusiness(CanCancelByOwner(StatusCompleted), "invalid_state"))
	assert.True(t, httperr.IsBusiness(CanCancelByOwner(StatusCancelled), "invalid_state"))
}

func TestVisibleTo(t *testing.T) {
	owner := uint(5)
	hidden := &models.Appointment{UserID: &owner, IsDeletedFromAdmin: true}
	walkIn := &models.Appointment{}

	assert.True(t, VisibleTo(Viewer{UserID: 5}, hidden))
	assert.False(t, VisibleTo(Viewer{UserID: 1, IsAdmin: true}, hidden))
	assert.True(t, VisibleTo(Viewer{UserID: 1, IsAdmin: true}, walkIn))
	assert.False(t, VisibleTo(Viewer{UserID: 9}, walkIn))
}

func TestSlotGrid_BuildSlots(t *testing.T) {
	grid := SlotGrid{StartHour: 9, EndHour: 12}
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	now := at(9, 30)
	busy := []Window{NewWindow(at(10, 30), 30)}

	hourly := grid.BuildSlots(day, time.Hour, now, 0, busy)
	require.Len(t, hourly, 4)
	assert.Equal(t, "09:00", hourly[0].Time)
	assert.Equal(t, SlotPast, hourly[0].Status)
	assert.Equal(t, SlotBooked, hourly[1].Status)
	assert.Equal(t, SlotAvailable, hourly[2].Status)
	assert.Equal(t, SlotAvailable, hourly[3].Status)

	long := grid.BuildSlots(day, 150*time.Minute, now, 0, []Window{NewWindow(at(12, 0), 30)})
	assert.Equal(t, SlotBooked, long[1].Status, "10:00 + 150m runs into 12:00")
	assert.Equal(t, SlotBooked, long[2].Status)
	assert.Equal(t, SlotBooked, long[3].Status)
}

func TestSlotGrid_BuildSlotsHonoursMinAdvance(t *testing.T) {
	grid := SlotGrid{StartHour: 9, EndHour: 12}
	day := time.Date(2026, 11, 2, 0, 0, 0, 0, time.UTC)
	now := at(9, 30)

	slots := grid.BuildSlots(day, time.Hour, now, 90*time.Minute, nil)
	require.Len(t, slots, 4)
	assert.Equal(t, SlotPast, slots[0].Status)
	assert.Equal(t, SlotPast, slots[1].Status, "10:00 is within the advance window")
	assert.Equal(t, SlotPast, slots[2].Status, "11:00 is exactly now+90m")
	assert.Equal(t, SlotAvailable, slots[3].Status)

	for _, s := range slots {
		rejected := EnsureFuture(s.Start, now, 90*time.Minute) != nil
		assert.Equal(t, rejected, s.Status == SlotPast, s.Time)
	}
}

func TestEnsureFuture(t *testing.T) {
	now := at(10, 0)
	assert.NoError(t, EnsureFuture(at(11, 0), now, 0))
	assert.Error(t, EnsureFuture(at(10, 0), now, 0))
	assert.Error(t, EnsureFuture(at(10, 30), now, time.Hour))
}
