package chat

import (
	"errors"
	"log"
	"strings"
	"time"

	"roomchat/backend/internal/hub"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/policy"
	"roomchat/backend/internal/store"
)

// MessageService owns the message lifecycle: create, edit and delete, with
// ownership and time-window enforcement. Every successful mutation is
// broadcast to the room's subscribers after it has been persisted.
type MessageService struct {
	store store.Store
	bus   hub.Bus
	now   func() time.Time
}

func NewMessageService(st store.Store, bus hub.Bus) *MessageService {
	return &MessageService{store: st, bus: bus, now: time.Now}
}

// Create persists a new message for a room member. Content is silently
// truncated to the length limit and rejected if blank after trimming.
// Sending also counts as reading: the author's watermark is advanced
// best-effort.
func (s *MessageService) Create(roomID, userID uint, content string) (*MessageView, error) {
	if _, err := s.store.Membership(roomID, userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	if strings.TrimSpace(content) == "" {
		return nil, ErrInvalidInput
	}

	msg := &models.Message{
		RoomID:  roomID,
		UserID:  userID,
		Content: truncateRunes(content, models.MaxContentLength),
	}
	if err := s.store.CreateMessage(msg); err != nil {
		return nil, err
	}

	if err := s.store.AdvanceLastRead(roomID, userID, s.now()); err != nil {
		log.Printf("chat: advancing author watermark failed in %s: %v", hub.RoomChannel(roomID), err)
	}

	view := NewMessageView(*msg)
	s.bus.Publish(roomID, hub.Event{
		Type:    hub.EventMessageNew,
		Payload: map[string]interface{}{"message": view},
	})
	return &view, nil
}

// Edit overwrites a message's content. Only the author may edit, deleted
// messages are never editable, and the edit window is measured from
// creation, not from the last update.
func (s *MessageService) Edit(messageID, userID uint, content string) (*MessageView, error) {
	msg, err := s.store.MessageByID(messageID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if msg.UserID != userID {
		return nil, ErrForbidden
	}
	// Deleted is checked before the window: a deleted message is rejected
	// even inside the five minutes.
	if msg.Deleted {
		return nil, policyViolation("message already deleted")
	}
	if !policy.WithinEditWindow(msg.CreatedAt, s.now()) {
		return nil, policyViolation("edit window exceeded")
	}

	msg.Content = truncateRunes(content, models.MaxContentLength)
	msg.Edited = true
	if err := s.store.SaveMessage(msg); err != nil {
		return nil, err
	}

	view := NewMessageView(*msg)
	s.bus.Publish(msg.RoomID, hub.Event{
		Type:    hub.EventMessageUpdate,
		Payload: map[string]interface{}{"message": view},
	})
	return &view, nil
}

// Delete marks a message deleted and replaces its content with the fixed
// placeholder. The flag is one-way; deleting an already-deleted message is
// a no-op that returns the message as stored.
func (s *MessageService) Delete(messageID, userID uint) (*MessageView, error) {
	msg, err := s.store.MessageByID(messageID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if msg.UserID != userID {
		return nil, ErrForbidden
	}
	if msg.Deleted {
		view := NewMessageView(*msg)
		return &view, nil
	}
	if !policy.WithinDeleteWindow(msg.CreatedAt, s.now()) {
		return nil, policyViolation("delete window exceeded")
	}

	msg.Deleted = true
	msg.Content = models.DeletedPlaceholder
	if err := s.store.SaveMessage(msg); err != nil {
		return nil, err
	}

	view := NewMessageView(*msg)
	// Clients replace the message locally by id; the payload does not
	// repeat content.
	s.bus.Publish(msg.RoomID, hub.Event{
		Type:    hub.EventMessageDelete,
		Payload: map[string]interface{}{"id": msg.ID},
	})
	return &view, nil
}
