package chat

import (
	"errors"
	"time"

	"roomchat/backend/internal/hub"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/store"
)

// ReactionService owns the at-most-one-reaction-per-user-per-type toggle.
// Membership is deliberately not re-validated here: any authenticated
// caller may toggle a reaction.
type ReactionService struct {
	store store.Store
	bus   hub.Bus
	now   func() time.Time
}

func NewReactionService(st store.Store, bus hub.Bus) *ReactionService {
	return &ReactionService{store: st, bus: bus, now: time.Now}
}

func validReactionType(typ models.ReactionType) bool {
	return typ == models.ReactionTypeHeart
}

// Toggle creates the reaction if absent and removes it if present, then
// broadcasts the message's complete current reaction list. Snapshot, not
// delta: clients replace their copy wholesale.
func (s *ReactionService) Toggle(roomID, messageID, userID uint, typ models.ReactionType) ([]ReactionView, error) {
	if typ == "" {
		typ = models.ReactionTypeHeart
	}
	if !validReactionType(typ) {
		return nil, ErrInvalidInput
	}

	existing, err := s.store.Reaction(messageID, userID, typ)
	switch {
	case err == nil:
		if err := s.store.DeleteReaction(existing.ID); err != nil {
			return nil, err
		}
	case errors.Is(err, store.ErrNotFound):
		reaction := &models.Reaction{
			MessageID: messageID,
			UserID:    userID,
			Type:      typ,
		}
		if err := s.store.CreateReaction(reaction); err != nil {
			return nil, err
		}
	default:
		return nil, err
	}

	reactions, err := s.store.ReactionsForMessage(messageID)
	if err != nil {
		return nil, err
	}

	views := NewReactionViews(reactions)
	s.bus.Publish(roomID, hub.Event{
		Type: hub.EventReactionUpdate,
		Payload: map[string]interface{}{
			"message_id": messageID,
			"reactions":  views,
		},
	})
	return views, nil
}
