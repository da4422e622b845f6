package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/BruksfildServices01/salon-booking/internal/i18n"
)

type Course struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        datatypes.JSONType[i18n.Text] `json:"name"`
	Description datatypes.JSONType[i18n.Text] `json:"description"`
	Price       int                           `gorm:"not null" json:"price"`
	Duration    int                           `json:"duration"`
	ImageURL    string                        `gorm:"size:512" json:"imageUrl"`
	IsActive    bool                          `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// CoursePurchase records a payment confirmed by the provider webhook.
type CoursePurchase struct {
	ID uint `gorm:"primaryKey" json:"id"`

	CourseID  uint   `gorm:"index;not null" json:"courseId"`
	Course    Course `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"course"`
	UserEmail string `gorm:"size:255;index" json:"userEmail"`

	Provider  string `gorm:"size:20;not null" json:"provider"`
	PaymentID string `gorm:"size:128;uniqueIndex;not null" json:"paymentId"`
	Amount    int    `json:"amount"`
	Currency  string `gorm:"size:8" json:"currency"`

	CreatedAt time.Time `json:"createdAt"`
}
