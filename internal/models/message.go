package models

import "gorm.io/gorm"

// MaxContentLength is the rune limit for message content. Longer input is
// silently truncated, not rejected.
const MaxContentLength = 2000

// DeletedPlaceholder replaces the content of a deleted message.
const DeletedPlaceholder = "Message deleted"

// Message represents a chat message within a room.
type Message struct {
	gorm.Model
	RoomID  uint   `gorm:"not null;index"`
	UserID  uint   `gorm:"not null"`
	Content string `gorm:"not null"`
	Edited  bool   `gorm:"not null;default:false"`
	Deleted bool   `gorm:"not null;default:false"` // one-way flag

	User      User       `gorm:"foreignKey:UserID"`
	Reactions []Reaction `gorm:"foreignKey:MessageID"`
}
