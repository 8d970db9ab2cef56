package models

import "gorm.io/gorm"

// Room represents a chat room joinable by a short code.
type Room struct {
	gorm.Model
	Name      string `gorm:"size:40"`
	Code      string `gorm:"size:6;unique;not null"` // immutable once assigned
	IsDM      bool   `gorm:"not null;default:false"`
	CreatedBy uint   `gorm:"not null"`

	Creator User `gorm:"foreignKey:CreatedBy"`
}
