package chat

import (
	"time"

	"roomchat/backend/internal/models"
)

// View types are the wire shape shared by REST responses and hub events.
// Clients reconcile events and page fetches by message id, so both paths
// must serialize messages identically.

// region --- Views ---

type UserView struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
}

type ReactionView struct {
	ID        uint   `json:"id"`
	MessageID uint   `json:"message_id"`
	UserID    uint   `json:"user_id"`
	Type      string `json:"type"`
}

type MessageView struct {
	ID        uint           `json:"id"`
	RoomID    uint           `json:"room_id"`
	UserID    uint           `json:"user_id"`
	Content   string         `json:"content"`
	Edited    bool           `json:"edited"`
	Deleted   bool           `json:"deleted"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	User      UserView       `json:"user"`
	Reactions []ReactionView `json:"reactions"`
}

// PagedMessage is a message enriched with derived read state for list
// responses.
type PagedMessage struct {
	MessageView
	ReadCount   int `json:"read_count"`
	MemberCount int `json:"member_count"`
}

type RoomView struct {
	ID        uint      `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	IsDM      bool      `json:"is_dm"`
	CreatedBy uint      `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

type MemberView struct {
	UserID     uint      `json:"user_id"`
	Nickname   string    `json:"nickname"`
	LastReadAt time.Time `json:"last_read_at"`
	JoinedAt   time.Time `json:"joined_at"`
}

// endregion

func NewUserView(user models.User) UserView {
	return UserView{
		ID:       user.ID,
		Nickname: user.Nickname,
	}
}

func NewReactionView(r models.Reaction) ReactionView {
	return ReactionView{
		ID:        r.ID,
		MessageID: r.MessageID,
		UserID:    r.UserID,
		Type:      string(r.Type),
	}
}

func NewReactionViews(reactions []models.Reaction) []ReactionView {
	views := make([]ReactionView, len(reactions))
	for i, r := range reactions {
		views[i] = NewReactionView(r)
	}
	return views
}

func NewMessageView(msg models.Message) MessageView {
	return MessageView{
		ID:        msg.ID,
		RoomID:    msg.RoomID,
		UserID:    msg.UserID,
		Content:   msg.Content,
		Edited:    msg.Edited,
		Deleted:   msg.Deleted,
		CreatedAt: msg.CreatedAt,
		UpdatedAt: msg.UpdatedAt,
		User:      NewUserView(msg.User),
		Reactions: NewReactionViews(msg.Reactions),
	}
}

func NewRoomView(room models.Room) RoomView {
	return RoomView{
		ID:        room.ID,
		Name:      room.Name,
		Code:      room.Code,
		IsDM:      room.IsDM,
		CreatedBy: room.CreatedBy,
		CreatedAt: room.CreatedAt,
	}
}

func NewMemberView(m models.Membership) MemberView {
	return MemberView{
		UserID:     m.UserID,
		Nickname:   m.User.Nickname,
		LastReadAt: m.LastReadAt,
		JoinedAt:   m.CreatedAt,
	}
}
