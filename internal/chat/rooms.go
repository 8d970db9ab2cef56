package chat

import (
	"errors"
	"log"
	"math/rand/v2"
	"time"

	"roomchat/backend/internal/hub"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/store"
)

const (
	// codeAlphabet excludes visually ambiguous characters (0/O, 1/I).
	codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	codeLength   = 6
	codeRetries  = 5

	maxRoomNameLength = 40

	// MaxPageSize caps a message page regardless of the requested limit.
	MaxPageSize = 30
)

// MessagePage is one page of a room's history, newest first.
type MessagePage struct {
	Items []PagedMessage `json:"items"`
	// NextCursor is the last item's id when the page is full, nil at
	// end-of-history. It points further into the past; callers reverse the
	// page for chronological display.
	NextCursor *uint `json:"next_cursor"`
}

// RoomService owns room creation and join via short codes, message page
// retrieval, and read-watermark advancement.
type RoomService struct {
	store store.Store
	bus   hub.Bus
	now   func() time.Time
}

func NewRoomService(st store.Store, bus hub.Bus) *RoomService {
	return &RoomService{store: st, bus: bus, now: time.Now}
}

func generateCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		code[i] = codeAlphabet[rand.IntN(len(codeAlphabet))]
	}
	return string(code)
}

// CreateRoom creates a room with a fresh join code and the creator as its
// first member. On a code collision the code is regenerated up to five
// times; after that the last value is kept and the unique index is the
// final guard.
func (s *RoomService) CreateRoom(name string, isDM bool, creatorID uint) (*RoomView, error) {
	code := generateCode()
	for i := 0; i < codeRetries; i++ {
		_, err := s.store.RoomByCode(code)
		if errors.Is(err, store.ErrNotFound) {
			break
		}
		if err != nil {
			return nil, err
		}
		code = generateCode()
	}

	room := &models.Room{
		Name:      truncateRunes(name, maxRoomNameLength),
		Code:      code,
		IsDM:      isDM,
		CreatedBy: creatorID,
	}
	if err := s.store.CreateRoom(room, creatorID, s.now()); err != nil {
		return nil, err
	}

	view := NewRoomView(*room)
	return &view, nil
}

// JoinRoom adds the user to the room matching the code. Joining a room the
// user is already in is a no-op.
func (s *RoomService) JoinRoom(code string, userID uint) (*RoomView, error) {
	room, err := s.store.RoomByCode(code)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	if err := s.store.UpsertMembership(room.ID, userID, s.now()); err != nil {
		return nil, err
	}

	view := NewRoomView(*room)
	return &view, nil
}

// ListRooms returns the rooms the user is a member of, newest first.
func (s *RoomService) ListRooms(userID uint) ([]RoomView, error) {
	rooms, err := s.store.RoomsForUser(userID)
	if err != nil {
		return nil, err
	}
	views := make([]RoomView, len(rooms))
	for i, room := range rooms {
		views[i] = NewRoomView(room)
	}
	return views, nil
}

// GetRoom returns a room together with its member list.
func (s *RoomService) GetRoom(roomID uint) (*RoomView, []MemberView, error) {
	room, err := s.store.RoomByID(roomID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil, ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	memberships, err := s.store.MembershipsForRoom(roomID)
	if err != nil {
		return nil, nil, err
	}
	members := make([]MemberView, len(memberships))
	for i, m := range memberships {
		members[i] = NewMemberView(m)
	}

	view := NewRoomView(*room)
	return &view, members, nil
}

// ListMessages returns a page of the room's messages ordered by creation
// time descending, each enriched with derived read state. When cursor is
// given the page starts strictly after that message in the same ordering.
func (s *RoomService) ListMessages(roomID uint, cursor *uint, limit int) (*MessagePage, error) {
	if limit <= 0 || limit > MaxPageSize {
		limit = MaxPageSize
	}

	messages, err := s.store.MessagesPage(roomID, cursor, limit)
	if err != nil {
		return nil, err
	}
	memberships, err := s.store.MembershipsForRoom(roomID)
	if err != nil {
		return nil, err
	}

	items := make([]PagedMessage, len(messages))
	for i, msg := range messages {
		readCount, memberCount := ReadState(msg.CreatedAt, memberships)
		items[i] = PagedMessage{
			MessageView: NewMessageView(msg),
			ReadCount:   readCount,
			MemberCount: memberCount,
		}
	}

	page := &MessagePage{Items: items}
	if len(messages) == limit {
		last := messages[len(messages)-1].ID
		page.NextCursor = &last
	}
	return page, nil
}

// MarkRead advances the caller's read watermark to now. Best-effort: a
// storage failure is logged and absorbed, never surfaced.
func (s *RoomService) MarkRead(roomID, userID uint) {
	if err := s.store.AdvanceLastRead(roomID, userID, s.now()); err != nil {
		log.Printf("chat: mark read failed for user %d in %s: %v", userID, hub.RoomChannel(roomID), err)
	}
}

// Typing broadcasts a typing indicator to the room. Nothing is persisted.
func (s *RoomService) Typing(roomID, userID uint, nickname string, isTyping bool) error {
	if roomID == 0 {
		return ErrInvalidInput
	}
	s.bus.Publish(roomID, hub.Event{
		Type: hub.EventTyping,
		Payload: map[string]interface{}{
			"user_id":   userID,
			"nickname":  nickname,
			"is_typing": isTyping,
		},
	})
	return nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
