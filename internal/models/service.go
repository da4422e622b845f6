package models

import (
	"time"

	"gorm.io/datatypes"

	"github.com/BruksfildServices01/salon-booking/internal/i18n"
)

type Service struct {
	ID uint `gorm:"primaryKey" json:"id"`

	Name        datatypes.JSONType[i18n.Text] `json:"name"`
	Description datatypes.JSONType[i18n.Text] `json:"description"`
	Price       int                           `gorm:"not null" json:"price"`
	Duration    int                           `gorm:"not null" json:"duration"`
	IsActive    bool                          `gorm:"not null;default:true" json:"isActive"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
