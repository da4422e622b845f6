package models

import "time"

type Review struct {
	ID uint `gorm:"primaryKey" json:"id"`

	UserID *uint  `gorm:"index" json:"userId"`
	User   *User  `gorm:"constraint:OnUpdate:CASCADE,OnDelete:SET NULL;" json:"-"`
	Name   string `gorm:"size:100" json:"name"`

	Rating  int    `gorm:"not null" json:"rating"`
	Comment string `gorm:"size:2000" json:"comment"`
	Status  string `gorm:"size:20;not null;default:'pending';index" json:"status"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
