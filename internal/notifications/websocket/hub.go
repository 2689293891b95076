package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 64
)

// Message is a JSON payload pushed to connected portal clients.
type Message struct {
	Type      string    `json:"type"`
	ProjectID string    `json:"project_id,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Connection is one connected client.
type Connection struct {
	conn *websocket.Conn
	send chan Message
}

// Hub fans messages out to all connected clients.
type Hub struct {
	mu          sync.RWMutex
	connections map[*Connection]struct{}
	upgrader    websocket.Upgrader
	logger      *zap.Logger
}

// NewHub creates a hub ready to accept connections.
func NewHub(logger *zap.Logger) *Hub {
	return &Hub{
		connections: make(map[*Connection]struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		logger: logger,
	}
}

// HandleConnection upgrades an HTTP request and serves it until the client
// disconnects.
func (h *Hub) HandleConnection(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &Connection{
		conn: conn,
		send: make(chan Message, sendBufferSize),
	}

	h.mu.Lock()
	h.connections[c] = struct{}{}
	h.mu.Unlock()

	go h.writePump(c)
	go h.readPump(c)
}

// Broadcast queues a message for every connected client. Slow clients are
// skipped rather than blocking the caller.
func (h *Hub) Broadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.connections {
		select {
		case c.send <- msg:
		default:
			h.logger.Warn("dropping message for slow websocket client")
		}
	}
}

// ConnectionCount returns the number of connected clients.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.connections)
}

func (h *Hub) drop(c *Connection) {
	h.mu.Lock()
	if _, ok := h.connections[c]; ok {
		delete(h.connections, c)
		close(c.send)
	}
	h.mu.Unlock()
	c.conn.Close()
}

func (h *Hub) writePump(c *Connection) {
	for msg := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		data, err := json.Marshal(msg)
		if err != nil {
			h.logger.Warn("failed to marshal websocket message", zap.Error(err))
			continue
		}
		if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.drop(c)
			return
		}
	}
}

func (h *Hub) readPump(c *Connection) {
	defer h.drop(c)
	for {
		// Clients only listen; reads exist to detect disconnects.
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
