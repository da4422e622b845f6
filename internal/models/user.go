package models

import (
	"strings"
	"time"
)

type User struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Email        string  `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash *string `gorm:"size:255" json:"-"`
	GoogleID     *string `gorm:"size:64;uniqueIndex" json:"googleId,omitempty"`

	FirstName *string `gorm:"size:100" json:"firstName"`
	LastName  *string `gorm:"size:100" json:"lastName"`
	Phone     string  `gorm:"size:32" json:"phone"`
	IsAdmin   bool    `gorm:"not null;default:false" json:"isAdmin"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// DisplayName is used in e-mails and review listings.
func (u *User) DisplayName() string {
	var parts []string
	if u.FirstName != nil && *u.FirstName != "" {
		parts = append(parts, *u.FirstName)
	}
	if u.LastName != nil && *u.LastName != "" {
		parts = append(parts, *u.LastName)
	}
	if len(parts) == 0 {
		return u.Email
	}
	return strings.Join(parts, " ")
}
