package hub

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
)

// Event names delivered on a room channel.
const (
	EventMessageNew     = "message:new"
	EventMessageUpdate  = "message:update"
	EventMessageDelete  = "message:delete"
	EventReactionUpdate = "reaction:update"
	EventTyping         = "typing"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Bus is the fan-out contract the chat services publish on. Delivery is
// best-effort: a failed or dropped publish never fails the mutation that
// triggered it.
type Bus interface {
	Publish(roomID uint, event Event)
}

// RoomChannel returns the wire name of a room's event channel.
func RoomChannel(roomID uint) string {
	return fmt.Sprintf("room-%d", roomID)
}

// Client represents a single subscriber connection to a room channel.
// It's essentially a channel the delivery handler listens to.
type Client chan []byte

// Hub manages all active room channels and their clients.
type Hub struct {
	rooms map[uint]map[Client]bool
	mu    sync.RWMutex
}

// GlobalHub is the singleton instance of our Hub.
var GlobalHub = NewHub()

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		rooms: make(map[uint]map[Client]bool),
	}
}

// Subscribe adds a new client to a specific room channel.
func (h *Hub) Subscribe(roomID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.rooms[roomID]; !ok {
		h.rooms[roomID] = make(map[Client]bool)
	}
	h.rooms[roomID][client] = true
}

// Unsubscribe removes a client from a room channel.
func (h *Hub) Unsubscribe(roomID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.rooms[roomID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the delivery handler to stop.
			if len(clients) == 0 {
				delete(h.rooms, roomID)
			}
		}
	}
}

// Publish sends an event to all clients subscribed to a room.
func (h *Hub) Publish(roomID uint, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.rooms[roomID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(event)
	if err != nil {
		log.Printf("hub: dropping %s event for %s: %v", event.Type, RoomChannel(roomID), err)
		return
	}

	for client := range clients {
		// Use a non-blocking send to prevent a slow client from blocking the hub.
		select {
		case client <- messageBytes:
		default:
			// Client channel is full, maybe they are disconnected or slow.
			// The unsubscribe logic will handle cleaning this up eventually.
		}
	}
}
