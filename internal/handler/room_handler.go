package handler

import (
	"net/http"
	"strconv"

	"roomchat/backend/internal/chat"

	"github.com/gin-gonic/gin"
)

// region --- DTOs ---

// CreateRoomInput defines the structure for room creation.
type CreateRoomInput struct {
	Name string `json:"name" example:"Team"`
	IsDM bool   `json:"is_dm"`
}

// JoinRoomInput defines the structure for joining a room by code.
type JoinRoomInput struct {
	Code string `json:"code" binding:"required" example:"AB3KX9"`
}

// RoomDetailResponse is a room together with its member list.
type RoomDetailResponse struct {
	Room    chat.RoomView     `json:"room"`
	Members []chat.MemberView `json:"members"`
}

// endregion

// RoomHandler exposes room membership and pagination operations.
type RoomHandler struct {
	services *chat.Services
}

func NewRoomHandler(services *chat.Services) *RoomHandler {
	return &RoomHandler{services: services}
}

// ListRooms godoc
// @Summary      List the caller's rooms
// @Description  Returns every room the authenticated user is a member of.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}   chat.RoomView
// @Failure      401  {object}  ErrorResponse
// @Router       /rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	userID, _ := c.Get("userID")

	rooms, err := h.services.Rooms.ListRooms(userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rooms)
}

// CreateRoom godoc
// @Summary      Create a room
// @Description  Creates a room with a fresh six-character join code and the caller as its first member.
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body CreateRoomInput true "Room Info"
// @Success      201  {object}  chat.RoomView
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Router       /rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input CreateRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.services.Rooms.CreateRoom(input.Name, input.IsDM, userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, room)
}

// JoinRoom godoc
// @Summary      Join a room by code
// @Description  Adds the caller to the room matching the join code. Joining twice is a no-op.
// @Tags         rooms
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body JoinRoomInput true "Join code"
// @Success      200  {object}  chat.RoomView
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse "No room matches the code"
// @Router       /rooms/join [post]
func (h *RoomHandler) JoinRoom(c *gin.Context) {
	userID, _ := c.Get("userID")

	var input JoinRoomInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	room, err := h.services.Rooms.JoinRoom(input.Code, userID.(uint))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, room)
}

// GetRoom godoc
// @Summary      Get a room by ID
// @Description  Returns the room and its member list.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Room ID"
// @Success      200  {object}  RoomDetailResponse
// @Failure      404  {object}  ErrorResponse "Room not found"
// @Router       /rooms/{id} [get]
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID, _ := strconv.Atoi(c.Param("id"))

	room, members, err := h.services.Rooms.GetRoom(uint(roomID))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, RoomDetailResponse{Room: *room, Members: members})
}

// MarkRead godoc
// @Summary      Advance the caller's read watermark
// @Description  Marks everything in the room up to now as read. Best-effort; always acknowledges.
// @Tags         rooms
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Room ID"
// @Success      200 {object} map[string]bool "{"ok": true}"
// @Failure      401 {object} ErrorResponse
// @Router       /rooms/{id}/read [post]
func (h *RoomHandler) MarkRead(c *gin.Context) {
	userID, _ := c.Get("userID")
	roomID, _ := strconv.Atoi(c.Param("id"))

	h.services.Rooms.MarkRead(uint(roomID), userID.(uint))

	c.JSON(http.StatusOK, gin.H{"ok": true})
}
