package hub

import (
	"encoding/json"
	"sync"

	"cookbook/backend/internal/logging"
)

// Event represents a real-time event to be sent to clients.
type Event struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}

// Client is one open event stream of a user. The SSE handler reads from it.
type Client chan []byte

// Hub fans events out to the open streams of each user.
type Hub struct {
	users map[uint]map[Client]bool
	mu    sync.RWMutex
}

// NewHub creates a new Hub.
func NewHub() *Hub {
	return &Hub{
		users: make(map[uint]map[Client]bool),
	}
}

// Subscribe registers a client for userID.
func (h *Hub) Subscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.users[userID]; !ok {
		h.users[userID] = make(map[Client]bool)
	}
	h.users[userID][client] = true
}

// Unsubscribe removes a client and closes it.
func (h *Hub) Unsubscribe(userID uint, client Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if clients, ok := h.users[userID]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			close(client) // Close the channel to signal the SSE handler to stop.
			if len(clients) == 0 {
				delete(h.users, userID)
			}
		}
	}
}

// UnsubscribeAll closes every stream of userID. Later Unsubscribe calls for
// those clients are no-ops.
func (h *Hub) UnsubscribeAll(userID uint) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := h.users[userID]
	for client := range clients {
		close(client)
	}
	delete(h.users, userID)
	return len(clients)
}

// Subscribers returns the number of open streams for userID.
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID])
}

// Publish sends an event to every stream of userID without blocking.
func (h *Hub) Publish(userID uint, eventType string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients, ok := h.users[userID]
	if !ok {
		return
	}

	messageBytes, err := json.Marshal(Event{Type: eventType, Payload: payload})
	if err != nil {
		logging.Error().Err(err).Str("event", eventType).Msg("Failed to encode event.")
		return
	}

	for client := range clients {
		// A slow client drops events instead of blocking the publisher.
		select {
		case client <- messageBytes:
		default:
			logging.Debug().Uint("user_id", userID).Str("event", eventType).Msg("Dropped event for slow client.")
		}
	}
}
