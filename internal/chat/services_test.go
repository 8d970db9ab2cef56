package chat

import (
	"fmt"
	"testing"
	"time"

	"roomchat/backend/internal/hub"
	"roomchat/backend/internal/models"
	"roomchat/backend/internal/store"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type publishedEvent struct {
	RoomID uint
	Event  hub.Event
}

// fakeBus records published events instead of delivering them.
type fakeBus struct {
	events []publishedEvent
}

func (b *fakeBus) Publish(roomID uint, event hub.Event) {
	b.events = append(b.events, publishedEvent{RoomID: roomID, Event: event})
}

func (b *fakeBus) eventTypes() []string {
	types := make([]string, len(b.events))
	for i, e := range b.events {
		types[i] = e.Event.Type
	}
	return types
}

type testEnv struct {
	db       *gorm.DB
	store    store.Store
	bus      *fakeBus
	services *Services
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	// A named in-memory database with shared cache keeps all pooled
	// connections on the same data; the test name isolates tests from each
	// other.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.User{}, &models.Room{}, &models.Membership{}, &models.Message{}, &models.Reaction{})
	require.NoError(t, err)

	st := store.New(db)
	bus := &fakeBus{}
	return &testEnv{
		db:       db,
		store:    st,
		bus:      bus,
		services: NewServices(st, bus),
	}
}

func (e *testEnv) createUser(t *testing.T, nickname string) models.User {
	t.Helper()
	user := models.User{
		Nickname:     nickname,
		Email:        nickname + "@example.com",
		PasswordHash: "x",
	}
	require.NoError(t, e.db.Create(&user).Error)
	return user
}

// setCreatedAt pins a message's creation time so window checks are
// deterministic.
func (e *testEnv) setCreatedAt(t *testing.T, messageID uint, at time.Time) {
	t.Helper()
	err := e.db.Model(&models.Message{}).Where("id = ?", messageID).Update("created_at", at).Error
	require.NoError(t, err)
}

func (e *testEnv) setLastReadAt(t *testing.T, roomID, userID uint, at time.Time) {
	t.Helper()
	err := e.db.Model(&models.Membership{}).
		Where("room_id = ? AND user_id = ?", roomID, userID).
		Update("last_read_at", at).Error
	require.NoError(t, err)
}

// region --- Rooms ---

func TestCreateRoomAssignsCodeAndMembership(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	req.Equal("Team", room.Name)
	req.Len(room.Code, 6)
	for _, r := range room.Code {
		req.Contains(codeAlphabet, string(r))
	}

	// The creator is a member from the start.
	membership, err := env.store.Membership(room.ID, alice.ID)
	req.NoError(err)
	req.Equal(alice.ID, membership.UserID)
}

func TestCreateRoomTruncatesName(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	long := ""
	for i := 0; i < 50; i++ {
		long += "x"
	}
	room, err := env.services.Rooms.CreateRoom(long, false, alice.ID)
	req.NoError(err)
	req.Len(room.Name, maxRoomNameLength)
}

func TestJoinRoomScenario(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	joined, err := env.services.Rooms.JoinRoom(room.Code, bob.ID)
	req.NoError(err)
	req.Equal(room.ID, joined.ID)

	rooms, err := env.services.Rooms.ListRooms(bob.ID)
	req.NoError(err)
	req.Len(rooms, 1)
	req.Equal("Team", rooms[0].Name)
}

func TestJoinRoomIsIdempotent(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	_, err = env.services.Rooms.JoinRoom(room.Code, bob.ID)
	req.NoError(err)
	_, err = env.services.Rooms.JoinRoom(room.Code, bob.ID)
	req.NoError(err)

	var count int64
	env.db.Model(&models.Membership{}).Where("room_id = ? AND user_id = ?", room.ID, bob.ID).Count(&count)
	req.EqualValues(1, count)
}

func TestJoinRoomUnknownCode(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	bob := env.createUser(t, "bob")

	_, err := env.services.Rooms.JoinRoom("ZZZZZZ", bob.ID)
	req.ErrorIs(err, ErrNotFound)
}

func TestGetRoomListsMembers(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	created, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	_, err = env.services.Rooms.JoinRoom(created.Code, bob.ID)
	req.NoError(err)

	room, members, err := env.services.Rooms.GetRoom(created.ID)
	req.NoError(err)
	req.Equal(created.Code, room.Code)
	req.Len(members, 2)

	_, _, err = env.services.Rooms.GetRoom(9999)
	req.ErrorIs(err, ErrNotFound)
}

// endregion

// region --- Messages ---

func TestCreateMessageRequiresMembership(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	stranger := env.createUser(t, "stranger")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	_, err = env.services.Messages.Create(room.ID, stranger.ID, "hi")
	req.ErrorIs(err, ErrForbidden)
	req.Empty(env.bus.events)
}

func TestCreateMessageRejectsBlankContent(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	_, err = env.services.Messages.Create(room.ID, alice.ID, "   \n\t ")
	req.ErrorIs(err, ErrInvalidInput)
}

func TestCreateMessageTruncatesAndBroadcasts(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	long := make([]rune, models.MaxContentLength+500)
	for i := range long {
		long[i] = 'h'
	}
	msg, err := env.services.Messages.Create(room.ID, alice.ID, string(long))
	req.NoError(err)
	req.Len([]rune(msg.Content), models.MaxContentLength)
	req.Equal("alice", msg.User.Nickname)
	req.Empty(msg.Reactions)

	req.Len(env.bus.events, 1)
	req.Equal(hub.EventMessageNew, env.bus.events[0].Event.Type)
	req.Equal(room.ID, env.bus.events[0].RoomID)
}

func TestSendingAdvancesAuthorWatermark(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	env.setLastReadAt(t, room.ID, alice.ID, time.Now().Add(-time.Hour))

	msg, err := env.services.Messages.Create(room.ID, alice.ID, "hello")
	req.NoError(err)

	membership, err := env.store.Membership(room.ID, alice.ID)
	req.NoError(err)
	req.False(membership.LastReadAt.Before(msg.CreatedAt))
}

func TestEditMessage(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	_, err = env.services.Rooms.JoinRoom(room.Code, bob.ID)
	req.NoError(err)

	msg, err := env.services.Messages.Create(room.ID, alice.ID, "hello")
	req.NoError(err)

	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	env.setCreatedAt(t, msg.ID, createdAt)

	// Two minutes in: allowed.
	env.services.Messages.now = func() time.Time { return createdAt.Add(2 * time.Minute) }
	edited, err := env.services.Messages.Edit(msg.ID, alice.ID, "hello, world")
	req.NoError(err)
	req.True(edited.Edited)
	req.Equal("hello, world", edited.Content)
	req.Equal(hub.EventMessageUpdate, env.bus.events[len(env.bus.events)-1].Event.Type)

	// The window is measured from creation, not the last update: minute
	// six is out even though the edit above just happened.
	env.services.Messages.now = func() time.Time { return createdAt.Add(6 * time.Minute) }
	_, err = env.services.Messages.Edit(msg.ID, alice.ID, "again")
	var policyErr *PolicyError
	req.ErrorAs(err, &policyErr)
	req.Equal("edit window exceeded", policyErr.Reason)

	// Not the author.
	env.services.Messages.now = func() time.Time { return createdAt.Add(time.Minute) }
	_, err = env.services.Messages.Edit(msg.ID, bob.ID, "hijack")
	req.ErrorIs(err, ErrForbidden)

	// Unknown message.
	_, err = env.services.Messages.Edit(9999, alice.ID, "ghost")
	req.ErrorIs(err, ErrNotFound)
}

func TestEditWindowBoundary(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	msg, err := env.services.Messages.Create(room.ID, alice.ID, "hello")
	req.NoError(err)

	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	env.setCreatedAt(t, msg.ID, createdAt)

	// Just under five minutes: allowed.
	env.services.Messages.now = func() time.Time { return createdAt.Add(5*time.Minute - 60*time.Millisecond) }
	_, err = env.services.Messages.Edit(msg.ID, alice.ID, "in time")
	req.NoError(err)

	// Exactly five minutes: rejected.
	env.services.Messages.now = func() time.Time { return createdAt.Add(5 * time.Minute) }
	_, err = env.services.Messages.Edit(msg.ID, alice.ID, "too late")
	var policyErr *PolicyError
	req.ErrorAs(err, &policyErr)
}

func TestDeleteMessage(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	msg, err := env.services.Messages.Create(room.ID, alice.ID, "oops")
	req.NoError(err)

	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	env.setCreatedAt(t, msg.ID, createdAt)

	// Thirty seconds in: allowed, content replaced.
	env.services.Messages.now = func() time.Time { return createdAt.Add(30 * time.Second) }
	deleted, err := env.services.Messages.Delete(msg.ID, alice.ID)
	req.NoError(err)
	req.True(deleted.Deleted)
	req.Equal(models.DeletedPlaceholder, deleted.Content)

	last := env.bus.events[len(env.bus.events)-1]
	req.Equal(hub.EventMessageDelete, last.Event.Type)
	payload, ok := last.Event.Payload.(map[string]interface{})
	req.True(ok)
	req.Equal(msg.ID, payload["id"])
	req.NotContains(payload, "message") // identity only, clients patch locally

	// Deleting again is a no-op success, with no further broadcast.
	eventCount := len(env.bus.events)
	again, err := env.services.Messages.Delete(msg.ID, alice.ID)
	req.NoError(err)
	req.True(again.Deleted)
	req.Equal(models.DeletedPlaceholder, again.Content)
	req.Len(env.bus.events, eventCount)
}

func TestDeleteWindowBoundary(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	msg, err := env.services.Messages.Create(room.ID, alice.ID, "oops")
	req.NoError(err)

	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	env.setCreatedAt(t, msg.ID, createdAt)

	// Exactly one minute: rejected.
	env.services.Messages.now = func() time.Time { return createdAt.Add(time.Minute) }
	_, err = env.services.Messages.Delete(msg.ID, alice.ID)
	var policyErr *PolicyError
	req.ErrorAs(err, &policyErr)
	req.Equal("delete window exceeded", policyErr.Reason)

	// Just under: allowed.
	env.services.Messages.now = func() time.Time { return createdAt.Add(time.Minute - 60*time.Millisecond) }
	_, err = env.services.Messages.Delete(msg.ID, alice.ID)
	req.NoError(err)
}

func TestEditDeletedMessageRejectedInsideWindow(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	msg, err := env.services.Messages.Create(room.ID, alice.ID, "oops")
	req.NoError(err)

	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	env.setCreatedAt(t, msg.ID, createdAt)
	env.services.Messages.now = func() time.Time { return createdAt.Add(10 * time.Second) }

	_, err = env.services.Messages.Delete(msg.ID, alice.ID)
	req.NoError(err)

	// Still well inside the edit window, but the deleted flag wins.
	_, err = env.services.Messages.Edit(msg.ID, alice.ID, "resurrect")
	var policyErr *PolicyError
	req.ErrorAs(err, &policyErr)
	req.Equal("message already deleted", policyErr.Reason)
}

// endregion

// region --- Read state ---

func TestReadStateDerivation(t *testing.T) {
	req := require.New(t)
	createdAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	memberships := []models.Membership{
		{UserID: 1, LastReadAt: createdAt.Add(time.Minute)},  // read
		{UserID: 2, LastReadAt: createdAt},                   // watermark at creation counts as read
		{UserID: 3, LastReadAt: createdAt.Add(-time.Minute)}, // unread
	}

	readCount, memberCount := ReadState(createdAt, memberships)
	req.Equal(2, readCount)
	req.Equal(3, memberCount)

	// Advancing any watermark never decreases the count.
	memberships[2].LastReadAt = createdAt.Add(time.Hour)
	readCount, _ = ReadState(createdAt, memberships)
	req.Equal(3, readCount)
}

func TestReadCountScenario(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	bob := env.createUser(t, "bob")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	_, err = env.services.Rooms.JoinRoom(room.Code, bob.ID)
	req.NoError(err)

	msg, err := env.services.Messages.Create(room.ID, alice.ID, "hello")
	req.NoError(err)

	// Pin bob's watermark behind the message.
	env.setLastReadAt(t, room.ID, bob.ID, msg.CreatedAt.Add(-time.Hour))

	page, err := env.services.Rooms.ListMessages(room.ID, nil, 30)
	req.NoError(err)
	req.Len(page.Items, 1)
	req.Equal(1, page.Items[0].ReadCount) // only alice has read
	req.Equal(2, page.Items[0].MemberCount)

	env.services.Rooms.MarkRead(room.ID, bob.ID)

	page, err = env.services.Rooms.ListMessages(room.ID, nil, 30)
	req.NoError(err)
	req.Equal(2, page.Items[0].ReadCount)
}

func TestMarkReadNeverRegresses(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	future := time.Now().Add(time.Hour)
	env.setLastReadAt(t, room.ID, alice.ID, future)

	env.services.Rooms.MarkRead(room.ID, alice.ID)

	membership, err := env.store.Membership(room.ID, alice.ID)
	req.NoError(err)
	req.False(membership.LastReadAt.Before(future))
}

// endregion

// region --- Reactions ---

func TestToggleReactionLaw(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	msg, err := env.services.Messages.Create(room.ID, alice.ID, "hello")
	req.NoError(err)

	// First toggle creates.
	reactions, err := env.services.Reactions.Toggle(room.ID, msg.ID, alice.ID, models.ReactionTypeHeart)
	req.NoError(err)
	req.Len(reactions, 1)
	req.Equal("heart", reactions[0].Type)

	// Second toggle removes: back to the original state.
	reactions, err = env.services.Reactions.Toggle(room.ID, msg.ID, alice.ID, models.ReactionTypeHeart)
	req.NoError(err)
	req.Empty(reactions)

	// Odd number of toggles leaves exactly one reaction.
	reactions, err = env.services.Reactions.Toggle(room.ID, msg.ID, alice.ID, models.ReactionTypeHeart)
	req.NoError(err)
	req.Len(reactions, 1)

	// Every toggle broadcast the full snapshot.
	req.Equal([]string{
		hub.EventMessageNew,
		hub.EventReactionUpdate,
		hub.EventReactionUpdate,
		hub.EventReactionUpdate,
	}, env.bus.eventTypes())

	last := env.bus.events[len(env.bus.events)-1]
	payload, ok := last.Event.Payload.(map[string]interface{})
	req.True(ok)
	req.Equal(msg.ID, payload["message_id"])
}

func TestToggleReactionWithoutMembership(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")
	stranger := env.createUser(t, "stranger")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	msg, err := env.services.Messages.Create(room.ID, alice.ID, "hello")
	req.NoError(err)

	// Membership is not re-validated on reactions: any authenticated user
	// may toggle.
	reactions, err := env.services.Reactions.Toggle(room.ID, msg.ID, stranger.ID, models.ReactionTypeHeart)
	req.NoError(err)
	req.Len(reactions, 1)
	req.Equal(stranger.ID, reactions[0].UserID)
}

func TestToggleReactionTypeValidation(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)
	msg, err := env.services.Messages.Create(room.ID, alice.ID, "hello")
	req.NoError(err)

	// Empty type defaults to heart.
	reactions, err := env.services.Reactions.Toggle(room.ID, msg.ID, alice.ID, "")
	req.NoError(err)
	req.Len(reactions, 1)

	_, err = env.services.Reactions.Toggle(room.ID, msg.ID, alice.ID, "thumbsup")
	req.ErrorIs(err, ErrInvalidInput)
}

// endregion

// region --- Pagination ---

func TestPaginationAcrossPages(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	for i := 1; i <= 45; i++ {
		_, err := env.services.Messages.Create(room.ID, alice.ID, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	// Full first page with a cursor into the past.
	page, err := env.services.Rooms.ListMessages(room.ID, nil, 30)
	req.NoError(err)
	req.Len(page.Items, 30)
	req.NotNil(page.NextCursor)
	req.Equal("message 45", page.Items[0].Content) // newest first
	req.Equal(page.Items[29].ID, *page.NextCursor)

	// Remainder, then end-of-history.
	page2, err := env.services.Rooms.ListMessages(room.ID, page.NextCursor, 30)
	req.NoError(err)
	req.Len(page2.Items, 15)
	req.Nil(page2.NextCursor)
	req.Equal("message 15", page2.Items[0].Content)
	req.Equal("message 1", page2.Items[14].Content)

	// No overlap between the pages.
	seen := make(map[uint]bool)
	for _, item := range page.Items {
		seen[item.ID] = true
	}
	for _, item := range page2.Items {
		req.False(seen[item.ID])
	}
}

func TestPaginationCapsLimit(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	for i := 1; i <= 35; i++ {
		_, err := env.services.Messages.Create(room.ID, alice.ID, fmt.Sprintf("message %d", i))
		req.NoError(err)
	}

	page, err := env.services.Rooms.ListMessages(room.ID, nil, 100)
	req.NoError(err)
	req.Len(page.Items, MaxPageSize)
}

func TestPaginationStableUnderConcurrentInserts(t *testing.T) {
	req := require.New(t)
	env := newTestEnv(t)
	alice := env.createUser(t, "alice")

	room, err := env.services.Rooms.CreateRoom("Team", false, alice.ID)
	req.NoError(err)

	for i := 1; i <= 10; i++ {
		_, err := env.services.Messages.Create(room.ID, alice.ID, fmt.Sprintf("old %d", i))
		req.NoError(err)
	}

	page, err := env.services.Rooms.ListMessages(room.ID, nil, 5)
	req.NoError(err)
	req.Len(page.Items, 5)

	// New messages arriving between fetches must not shift the next page.
	_, err = env.services.Messages.Create(room.ID, alice.ID, "new arrival")
	req.NoError(err)

	page2, err := env.services.Rooms.ListMessages(room.ID, page.NextCursor, 5)
	req.NoError(err)
	req.Len(page2.Items, 5)
	req.Equal("old 5", page2.Items[0].Content)
	req.Equal("old 1", page2.Items[4].Content)
}

// endregion
