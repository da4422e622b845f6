package models

import "time"

type Appointment struct {
	ID uint `gorm:"primaryKey" json:"id"`

	// UserID is nil for walk-in clients booked by an admin.
	UserID *uint `gorm:"index" json:"userId"`
	User   *User `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"user,omitempty"`

	ServiceID uint    `gorm:"index;not null" json:"serviceId"`
	Service   Service `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"service"`

	ClientName  string `gorm:"size:100" json:"clientName"`
	ClientPhone string `gorm:"size:32" json:"clientPhone"`
	ClientEmail string `gorm:"size:255" json:"clientEmail"`

	AppointmentDate time.Time `gorm:"index;not null" json:"appointmentDate"`
	EndTime         time.Time `gorm:"index;not null" json:"endTime"`

	Status string `gorm:"size:20;not null;default:'pending'" json:"status"`
	Notes  string `gorm:"size:1000" json:"notes"`

	IsDeletedFromAdmin bool `gorm:"not null;default:false" json:"isDeletedFromAdmin"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// RecipientEmail is where lifecycle notifications go.
func (a *Appointment) RecipientEmail() string {
	if a.User != nil && a.User.Email != "" {
		return a.User.Email
	}
	return a.ClientEmail
}

func (a *Appointment) RecipientName() string {
	if a.User != nil {
		return a.User.DisplayName()
	}
	return a.ClientName
}
