package dto

import "time"

// AppointmentPublicDTO is what anonymous visitors may see of a booking.
type AppointmentPublicDTO struct {
	ID              uint      `json:"id"`
	AppointmentDate time.Time `json:"appointmentDate"`
	EndTime         time.Time `json:"endTime"`
	Status          string    `json:"status"`
	ServiceID       uint      `json:"serviceId"`
}
