package service

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait = 5 * time.Second
	// snapshots queued per client before it is considered stalled
	clientBuffer = 8
)

type client struct {
	conn *websocket.Conn
	send chan []byte
}

// Hub fans snapshots out to every connected websocket client. Each client
// has its own writer; a client that falls behind is dropped.
type Hub struct {
	mu      sync.Mutex
	clients map[*websocket.Conn]*client
	logger  *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*websocket.Conn]*client),
		logger:  logger,
	}
}

func (h *Hub) add(conn *websocket.Conn) {
	c := &client{conn: conn, send: make(chan []byte, clientBuffer)}

	h.mu.Lock()
	h.clients[conn] = c
	h.logger.Info("Client connected", "remote", conn.RemoteAddr().String(), "clients", len(h.clients))
	h.mu.Unlock()

	go h.write(c)
}

func (h *Hub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.drop(conn)
}

// drop expects h.mu to be held.
func (h *Hub) drop(conn *websocket.Conn) {
	c, ok := h.clients[conn]
	if !ok {
		return
	}
	delete(h.clients, conn)
	close(c.send)
	conn.Close()
	h.logger.Info("Client disconnected", "remote", conn.RemoteAddr().String(), "clients", len(h.clients))
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Broadcast queues payload for every client and returns how many accepted
// it. It never waits on the network; clients whose queue is full are dropped.
func (h *Hub) Broadcast(payload []byte) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	queued := 0
	for conn, c := range h.clients {
		select {
		case c.send <- payload:
			queued++
		default:
			h.logger.Warn("Dropping stalled client", "remote", conn.RemoteAddr().String())
			h.drop(conn)
		}
	}
	return queued
}

// Close disconnects every client with a going-away close frame.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	msg := websocket.FormatCloseMessage(websocket.CloseGoingAway, "generator stopping")
	for conn := range h.clients {
		_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
		h.drop(conn)
	}
}

// write is the only goroutine writing data frames to c.
func (h *Hub) write(c *client) {
	for payload := range c.send {
		_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			h.logger.Warn("Dropping client", "remote", c.conn.RemoteAddr().String(), "error", err)
			h.remove(c.conn)
			return
		}
	}
}

// serve keeps reading from conn so control frames are handled and a
// disconnect is noticed; client payloads are ignored.
func (h *Hub) serve(conn *websocket.Conn) {
	defer h.remove(conn)
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
