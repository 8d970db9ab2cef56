package chat

import (
	"time"

	"roomchat/backend/internal/models"
)

// ReadState derives how many room members have read a message created at
// createdAt: those whose watermark is at or after that instant. Counts are
// raw; subtracting the author for display is a presentation concern.
//
// Read state is computed on the read path from O(1)-per-member watermarks
// instead of storing a row per message per member.
func ReadState(createdAt time.Time, memberships []models.Membership) (readCount, memberCount int) {
	for _, m := range memberships {
		if !m.LastReadAt.Before(createdAt) {
			readCount++
		}
	}
	return readCount, len(memberships)
}
