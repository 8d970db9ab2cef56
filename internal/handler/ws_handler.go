package handler

import (
	"log"
	"net/http"
	"strconv"

	"roomchat/backend/internal/hub"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Configure properly for production
	},
}

// WSHandler upgrades connections and relays a room's event stream.
type WSHandler struct {
	hub *hub.Hub
}

func NewWSHandler(h *hub.Hub) *WSHandler {
	return &WSHandler{hub: h}
}

// SubscribeRoom godoc
// @Summary      Subscribe to a room's event stream
// @Description  Upgrades to a WebSocket and pushes every event published on the room channel (message:new, message:update, message:delete, reaction:update, typing).
// @Tags         rooms
// @Security     BearerAuth
// @Param        id    path  int    true  "Room ID"
// @Param        token query string false "Bearer token for browser clients"
// @Success      101 {string} string "Switching Protocols"
// @Failure      401 {object} ErrorResponse
// @Router       /rooms/{id}/ws [get]
func (h *WSHandler) SubscribeRoom(c *gin.Context) {
	roomID, _ := strconv.Atoi(c.Param("id"))

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws: upgrade failed for %s: %v", hub.RoomChannel(uint(roomID)), err)
		return
	}

	client := make(hub.Client, 256)
	h.hub.Subscribe(uint(roomID), client)

	// Reader only watches for the client going away.
	go func() {
		defer h.hub.Unsubscribe(uint(roomID), client)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for raw := range client {
		if err := conn.WriteMessage(websocket.TextMessage, raw); err != nil {
			break
		}
	}
	conn.Close()
}
