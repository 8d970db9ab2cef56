package store

import (
	"errors"
	"time"

	"roomchat/backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type gormStore struct {
	db *gorm.DB
}

// New wraps a gorm connection in the Store interface.
func New(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// region --- Rooms ---

func (s *gormStore) CreateRoom(room *models.Room, creatorID uint, now time.Time) error {
	// Use a transaction so the room never exists without its creator's
	// membership.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(room).Error; err != nil {
			return err
		}
		membership := models.Membership{
			RoomID:     room.ID,
			UserID:     creatorID,
			LastReadAt: now,
		}
		return tx.Create(&membership).Error
	})
}

func (s *gormStore) RoomByID(id uint) (*models.Room, error) {
	var room models.Room
	if err := s.db.First(&room, id).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *gormStore) RoomByCode(code string) (*models.Room, error) {
	var room models.Room
	if err := s.db.Where("code = ?", code).First(&room).Error; err != nil {
		return nil, translate(err)
	}
	return &room, nil
}

func (s *gormStore) RoomsForUser(userID uint) ([]models.Room, error) {
	var rooms []models.Room
	err := s.db.
		Joins("JOIN memberships ON memberships.room_id = rooms.id").
		Where("memberships.user_id = ?", userID).
		Order("rooms.created_at DESC").
		Find(&rooms).Error
	return rooms, err
}

// endregion

// region --- Memberships ---

func (s *gormStore) UpsertMembership(roomID, userID uint, now time.Time) error {
	membership := models.Membership{
		RoomID:     roomID,
		UserID:     userID,
		LastReadAt: now,
	}
	return s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&membership).Error
}

func (s *gormStore) Membership(roomID, userID uint) (*models.Membership, error) {
	var membership models.Membership
	err := s.db.Where("room_id = ? AND user_id = ?", roomID, userID).First(&membership).Error
	if err != nil {
		return nil, translate(err)
	}
	return &membership, nil
}

func (s *gormStore) MembershipsForRoom(roomID uint) ([]models.Membership, error) {
	var memberships []models.Membership
	err := s.db.Where("room_id = ?", roomID).Preload("User").Find(&memberships).Error
	return memberships, err
}

func (s *gormStore) AdvanceLastRead(roomID, userID uint, at time.Time) error {
	// The guard keeps the watermark monotonic under concurrent updates.
	return s.db.Model(&models.Membership{}).
		Where("room_id = ? AND user_id = ? AND last_read_at < ?", roomID, userID, at).
		Update("last_read_at", at).Error
}

// endregion

// region --- Messages ---

func (s *gormStore) CreateMessage(msg *models.Message) error {
	if err := s.db.Create(msg).Error; err != nil {
		return err
	}
	// Reload with the author so broadcast payloads carry profile fields.
	return s.db.Preload("User").Preload("Reactions").First(msg, msg.ID).Error
}

func (s *gormStore) MessageByID(id uint) (*models.Message, error) {
	var msg models.Message
	if err := s.db.Preload("User").Preload("Reactions").First(&msg, id).Error; err != nil {
		return nil, translate(err)
	}
	return &msg, nil
}

func (s *gormStore) SaveMessage(msg *models.Message) error {
	// Associations are read-only here; only the message row changes.
	return s.db.Omit(clause.Associations).Save(msg).Error
}

func (s *gormStore) MessagesPage(roomID uint, cursor *uint, limit int) ([]models.Message, error) {
	query := s.db.Where("room_id = ?", roomID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Preload("User").
		Preload("Reactions")

	if cursor != nil {
		var pivot models.Message
		if err := s.db.Select("id", "created_at").First(&pivot, *cursor).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				// Cursor message no longer exists; nothing anchors the page.
				return []models.Message{}, nil
			}
			return nil, err
		}
		query = query.Where("created_at < ? OR (created_at = ? AND id < ?)",
			pivot.CreatedAt, pivot.CreatedAt, pivot.ID)
	}

	var messages []models.Message
	if err := query.Find(&messages).Error; err != nil {
		return nil, err
	}
	return messages, nil
}

// endregion

// region --- Reactions ---

func (s *gormStore) Reaction(messageID, userID uint, typ models.ReactionType) (*models.Reaction, error) {
	var reaction models.Reaction
	err := s.db.Where("message_id = ? AND user_id = ? AND type = ?", messageID, userID, typ).
		First(&reaction).Error
	if err != nil {
		return nil, translate(err)
	}
	return &reaction, nil
}

func (s *gormStore) CreateReaction(r *models.Reaction) error {
	return s.db.Create(r).Error
}

func (s *gormStore) DeleteReaction(id uint) error {
	return s.db.Unscoped().Delete(&models.Reaction{}, id).Error
}

func (s *gormStore) ReactionsForMessage(messageID uint) ([]models.Reaction, error) {
	var reactions []models.Reaction
	err := s.db.Where("message_id = ?", messageID).Order("id ASC").Find(&reactions).Error
	return reactions, err
}

// endregion
