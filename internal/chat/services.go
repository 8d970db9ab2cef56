// Package chat implements the room messaging and synchronization engine:
// message lifecycle, reaction toggles, read-state derivation and room
// membership. It talks to persistence through store.Store and notifies
// subscribers through hub.Bus; it holds no mutable state of its own between
// requests.
package chat

import (
	"roomchat/backend/internal/hub"
	"roomchat/backend/internal/store"
)

type Services struct {
	Rooms     *RoomService
	Messages  *MessageService
	Reactions *ReactionService
}

func NewServices(st store.Store, bus hub.Bus) *Services {
	return &Services{
		Rooms:     NewRoomService(st, bus),
		Messages:  NewMessageService(st, bus),
		Reactions: NewReactionService(st, bus),
	}
}
