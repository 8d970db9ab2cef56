package models

import "time"

// Membership associates a user with a room and carries their read watermark.
// The primary key is a composite of (RoomID, UserID) to ensure uniqueness.
type Membership struct {
	RoomID     uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"primaryKey"`
	LastReadAt time.Time `gorm:"not null"` // advanced forward only, never regresses
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Room Room `gorm:"foreignKey:RoomID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}
