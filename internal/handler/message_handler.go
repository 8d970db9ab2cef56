package handler

import (
	"net/http"
	"strconv"

	"roomchat/backend/internal/chat"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// MessageInput defines the structure for creating or editing a message.
type MessageInput struct {
	Content string `json:"content" binding:"required" example:"hello"`
}

// endregion

// MessageHandler exposes the message lifecycle operations.
type MessageHandler struct {
	services *chat.Services
}

func NewMessageHandler(services *chat.Services) *MessageHandler {
	return &MessageHandler{services: services}
}

// ListMessages godoc
// @Summary      List messages in a room
// @Description  Returns a page of messages ordered newest first, each with derived read counts. Follow next_cursor to load older history.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id     path  int true  "Room ID"
// @Param        cursor query int false "Message ID to continue after"
// @Param        limit  query int false "Page size, capped at 30" default(30)
// @Success      200  {object}  chat.MessagePage
// @Failure      401  {object}  ErrorResponse
// @Router       /rooms/{id}/messages [get]
func (h *MessageHandler) ListMessages(c *gin.Context) {
	roomID, _ := strconv.Atoi(c.Param("id"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "30"))

	var cursor *uint
	if raw := c.Query("cursor"); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid cursor"})
			return
		}
		value := uint(parsed)
		cursor = &value
	}

	page, err := h.services.Rooms.ListMessages(uint(roomID), cursor, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, page)
}

// CreateMessage godoc
// @Summary      Send a message
// @Description  Persists a message and broadcasts it to the room. Content over 2000 characters is truncated.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path int          true "Room ID"
// @Param        input body MessageInput true "Message content"
// @Success      201  {object}  chat.MessageView
// @Failure      400  {object}  ErrorResponse "Empty content"
// @Failure      403  {object}  ErrorResponse "Caller is not a room member"
// @Router       /rooms/{id}/messages [post]
func (h *MessageHandler) CreateMessage(c *gin.Context) {
	userID, _ := c.Get("userID")
	roomID, _ := strconv.Atoi(c.Param("id"))

	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.services.Messages.Create(uint(roomID), userID.(uint), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, msg)
}

// EditMessage godoc
// @Summary      Edit a message
// @Description  Overwrites a message's content. Author-only, within five minutes of creation.
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path int          true "Room ID"
// @Param        messageID path int          true "Message ID"
// @Param        input     body MessageInput true "New content"
// @Success      200  {object}  chat.MessageView
// @Failure      400  {object}  ErrorResponse "Edit window exceeded or message deleted"
// @Failure      403  {object}  ErrorResponse "Caller is not the author"
// @Failure      404  {object}  ErrorResponse "Message not found"
// @Router       /rooms/{id}/messages/{messageID} [patch]
func (h *MessageHandler) EditMessage(c *gin.Context) {
	userID, _ := c.Get("userID")
	messageID, _ := strconv.Atoi(c.Param("messageID"))

	var input MessageInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	msg, err := h.services.Messages.Edit(uint(messageID), userID.(uint), input.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}

// DeleteMessage godoc
// @Summary      Delete a message
// @Description  Marks a message deleted and replaces its content with a placeholder. Author-only, within one minute of creation.
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        id        path int true "Room ID"
// @Param        messageID path int true "Message ID"
// @Success      200  {object}  chat.MessageView
// @Failure      400  {object}  ErrorResponse "Delete window exceeded"
// @Failure      403  {object}  ErrorResponse "Caller is not the author"
// @Failure      404  {object}  ErrorResponse "Message not found"
// @Router       /rooms/{id}/messages/{messageID} [delete]
func (h *MessageHandler) DeleteMessage(c *gin.Context) {
	userID, _ := c.Get("userID")
	messageID, _ := strconv.Atoi(c.Param("messageID"))

	msg, err := h.services.Messages.Delete(uint(messageID), userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, msg)
}
