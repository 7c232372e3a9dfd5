// Package ws pushes notifications to connected browser sessions over
// websockets. Each user may hold several connections (multiple tabs);
// the hub fans a message out to all of them.
package ws

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/verdanthq/verdant/internal/domain"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = (pongWait * 9) / 10
)

// Message is the envelope pushed to clients.
type Message struct {
	Event   string `json:"event"`
	Payload any    `json:"payload"`
}

type client struct {
	hub    *Hub
	userID int64
	conn   *websocket.Conn
	send   chan []byte
	done   chan struct{}
}

// Hub tracks live connections keyed by user ID.
type Hub struct {
	mu      sync.RWMutex
	clients map[int64]map[*client]struct{}
	logger  *slog.Logger
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients: make(map[int64]map[*client]struct{}),
		logger:  logger,
	}
}

// Register adopts a websocket connection for the given user and starts
// its read/write pumps. The connection is owned by the hub from here
// on; the caller must not use it afterwards.
func (h *Hub) Register(userID int64, conn *websocket.Conn) {
	c := &client{
		hub:    h,
		userID: userID,
		conn:   conn,
		send:   make(chan []byte, 16),
		done:   make(chan struct{}),
	}

	h.mu.Lock()
	if h.clients[userID] == nil {
		h.clients[userID] = make(map[*client]struct{})
	}
	h.clients[userID][c] = struct{}{}
	h.mu.Unlock()

	go c.writePump()
	go c.readPump()
}

// Notify pushes a notification to every live connection of a user.
// Satisfies the alert pipeline's push hook; no-op when the user has no
// open sessions.
func (h *Hub) Notify(userID int64, n *domain.Notification) {
	h.Broadcast(userID, Message{Event: "notification", Payload: n})
}

// Broadcast sends a message to all of a user's connections. Slow
// consumers are dropped rather than blocking the sender.
func (h *Hub) Broadcast(userID int64, msg Message) {
	raw, err := json.Marshal(msg)
	if err != nil {
		h.logger.Error("marshal ws message", "event", msg.Event, "error", err)
		return
	}

	h.mu.RLock()
	conns := make([]*client, 0, len(h.clients[userID]))
	for c := range h.clients[userID] {
		conns = append(conns, c)
	}
	h.mu.RUnlock()

	for _, c := range conns {
		select {
		case <-c.done:
		case c.send <- raw:
		default:
			h.remove(c)
		}
	}
}

// Connections reports the number of open connections for a user.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[userID])
}

// remove drops a client from the hub and signals its pumps to exit.
// Idempotent; the send channel is never closed so concurrent Broadcast
// calls holding a stale snapshot can still send into its buffer safely.
func (h *Hub) remove(c *client) {
	h.mu.Lock()
	conns, ok := h.clients[c.userID]
	if ok {
		if _, present := conns[c]; present {
			delete(conns, c)
			close(c.done)
			if len(conns) == 0 {
				delete(h.clients, c.userID)
			}
		}
	}
	h.mu.Unlock()
	c.conn.Close()
}

// readPump drains inbound frames so pong handlers run, and tears the
// client down when the peer goes away.
func (c *client) readPump() {
	defer c.hub.remove(c)

	c.conn.SetReadLimit(512)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.hub.remove(c)
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		case raw := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
