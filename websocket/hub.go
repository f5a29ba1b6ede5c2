package websocket

import (
	"log"
	"sync"

	"github.com/gorilla/websocket"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/zakariaaboussaad/maintenance-app2-sub003/models"
)

// Message is the envelope sent over the wire.
type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data,omitempty"`
}

// Client represents a connected WebSocket client
type Client struct {
	UserID primitive.ObjectID
	Conn   *websocket.Conn

	// Serializes writes; a gorilla connection allows only one concurrent
	// writer, and pushes arrive from many request goroutines.
	writeMu sync.Mutex
}

func (c *Client) writeJSON(v interface{}) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.Conn.WriteJSON(v)
}

// Hub maintains the set of connected clients, one connection per user.
type Hub struct {
	clients    map[primitive.ObjectID]*Client
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

// NewHub creates a new Hub instance
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[primitive.ObjectID]*Client),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			// A new connection for the same user replaces the old one
			if old, ok := h.clients[client.UserID]; ok {
				old.Conn.Close()
			}
			h.clients[client.UserID] = client
			h.mu.Unlock()
		case client := <-h.unregister:
			h.mu.Lock()
			if current, ok := h.clients[client.UserID]; ok && current == client {
				delete(h.clients, client.UserID)
			}
			client.Conn.Close()
			h.mu.Unlock()
		}
	}
}

// Push implements the dispatcher's live-push hook: it nudges the recipient's
// open connection, if any. Delivery is best-effort; the persisted row is the
// source of truth.
func (h *Hub) Push(userID primitive.ObjectID, n models.Notification) {
	h.mu.RLock()
	client, ok := h.clients[userID]
	h.mu.RUnlock()

	if !ok {
		return
	}

	if err := client.writeJSON(Message{Type: "notification", Data: n}); err != nil {
		log.Printf("WebSocket push to %s failed: %v", userID.Hex(), err)
	}
}
