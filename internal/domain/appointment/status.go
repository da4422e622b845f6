package appointment

import (
	"time"

	"github.com/BruksfildServices01/salon-booking/internal/httperr"
)

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var AllStatuses = []Status{StatusPending, StatusConfirmed, StatusCompleted, StatusCancelled}

func (s Status) IsValid() bool {
	for _, v := range AllStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// ParseStatus accepts any of the four values. There is no transition
// graph: an admin may move an appointment from any status to any other.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.IsValid() {
		return "", httperr.ErrBusiness("invalid_status")
	}
	return s, nil
}

func InitialStatusForUser() Status {
	return StatusPending
}

func InitialStatusForAdmin() Status {
	return StatusConfirmed
}

// ===============================
// Domain Actions
// ===============================

// CanCancelByOwner: owners may only withdraw bookings that are still open.
func CanCancelByOwner(current Status) error {
	if current != StatusPending && current != StatusConfirmed {
		return httperr.ErrBusiness("invalid_state")
	}
	return nil
}

// EnsureFuture rejects starts that are not at least minAdvance after now.
func EnsureFuture(start, now time.Time, minAdvance time.Duration) error {
	if !start.After(now.Add(minAdvance)) {
		return httperr.ErrBusiness("in_the_past")
	}
	return nil
}
