// Package store is the data-access layer for the chat core. The Store
// interface is the only way the services touch persistence, which keeps the
// core testable against any gorm dialect.
package store

import (
	"errors"
	"time"

	"roomchat/backend/internal/models"
)

// ErrNotFound is returned when a referenced room, message or membership
// does not exist.
var ErrNotFound = errors.New("record not found")

// Store abstracts durable storage of rooms, memberships, messages and
// reactions. Uniqueness constraints (one membership per room/user, one
// reaction per message/user/type, unique room code) are enforced by the
// underlying schema.
type Store interface {
	// CreateRoom persists a room together with the creator's membership.
	CreateRoom(room *models.Room, creatorID uint, now time.Time) error
	RoomByID(id uint) (*models.Room, error)
	RoomByCode(code string) (*models.Room, error)
	RoomsForUser(userID uint) ([]models.Room, error)

	// UpsertMembership creates the membership if absent; joining twice is
	// a no-op.
	UpsertMembership(roomID, userID uint, now time.Time) error
	Membership(roomID, userID uint) (*models.Membership, error)
	MembershipsForRoom(roomID uint) ([]models.Membership, error)
	// AdvanceLastRead moves the watermark forward. A value at or behind the
	// current watermark leaves the row untouched.
	AdvanceLastRead(roomID, userID uint, at time.Time) error

	CreateMessage(msg *models.Message) error
	MessageByID(id uint) (*models.Message, error)
	SaveMessage(msg *models.Message) error
	// MessagesPage returns up to limit messages of a room ordered by
	// creation time descending, starting strictly after the cursor message
	// when one is given.
	MessagesPage(roomID uint, cursor *uint, limit int) ([]models.Message, error)

	Reaction(messageID, userID uint, typ models.ReactionType) (*models.Reaction, error)
	CreateReaction(r *models.Reaction) error
	DeleteReaction(id uint) error
	ReactionsForMessage(messageID uint) ([]models.Reaction, error)
}
