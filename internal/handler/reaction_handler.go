package handler

import (
	"net/http"
	"strconv"

	"roomchat/backend/internal/chat"
	"roomchat/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ToggleReactionInput defines the structure for toggling a reaction.
type ToggleReactionInput struct {
	MessageID uint   `json:"message_id" binding:"required" example:"1"`
	Type      string `json:"type" example:"heart"`
}

// ReactionHandler exposes the reaction toggle.
type ReactionHandler struct {
	services *chat.Services
}

func NewReactionHandler(services *chat.Services) *ReactionHandler {
	return &ReactionHandler{services: services}
}

// ToggleReaction godoc
// @Summary      Toggle a reaction on a message
// @Description  Adds the reaction if absent, removes it if present, and returns the message's full reaction list.
// @Tags         reactions
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int                 true "Room ID"
// @Param        input body ToggleReactionInput true "Reaction"
// @Success      200  {array}   chat.ReactionView
// @Failure      400  {object}  ErrorResponse "Unknown reaction type"
// @Failure      401  {object}  ErrorResponse
// @Router       /rooms/{id}/reactions [post]
func (h *ReactionHandler) ToggleReaction(c *gin.Context) {
	userID, _ := c.Get("userID")
	roomID, _ := strconv.Atoi(c.Param("id"))

	var input ToggleReactionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	reactions, err := h.services.Reactions.Toggle(uint(roomID), input.MessageID, userID.(uint), models.ReactionType(input.Type))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, reactions)
}
