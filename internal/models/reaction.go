package models

import "gorm.io/gorm"

type ReactionType string

const (
	ReactionTypeHeart ReactionType = "heart"
)

// Reaction marks that a user reacted to a message with a given type.
// Existence of the row is the reaction; toggling deletes or recreates it.
type Reaction struct {
	gorm.Model
	MessageID uint         `gorm:"not null;uniqueIndex:idx_reaction_once"`
	UserID    uint         `gorm:"not null;uniqueIndex:idx_reaction_once"`
	Type      ReactionType `gorm:"size:50;not null;default:'heart';uniqueIndex:idx_reaction_once"`
}
