package handler

import (
	"net/http"

	"roomchat/backend/internal/chat"
	"roomchat/backend/internal/database"
	"roomchat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// TypingInput defines the structure for a typing indicator.
type TypingInput struct {
	RoomID   uint `json:"room_id" binding:"required" example:"1"`
	IsTyping bool `json:"is_typing"`
}

// TypingHandler broadcasts typing indicators. Nothing is persisted.
type TypingHandler struct {
	services *chat.Services
}

func NewTypingHandler(services *chat.Services) *TypingHandler {
	return &TypingHandler{services: services}
}

// SendTyping godoc
// @Summary      Broadcast a typing indicator
// @Description  Notifies the room's subscribers that the caller started or stopped typing.
// @Tags         typing
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body TypingInput true "Typing state"
// @Success      200 {object} map[string]bool "{"ok": true}"
// @Failure      400 {object} ErrorResponse "Missing room id"
// @Failure      401 {object} ErrorResponse
// @Router       /typing [post]
func (h *TypingHandler) SendTyping(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input TypingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := database.DB.First(&user, userID.(uint)).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}

	if err := h.services.Rooms.Typing(input.RoomID, user.ID, user.Nickname, input.IsTyping); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
