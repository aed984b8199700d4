package notifyhub

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/moyoez/upconfig/tool"
)

const writeWait = 5 * time.Second

// Hub holds WebSocket connections and broadcasts notifications to all clients.
// Implements notify.Hub.
type Hub struct {
	mu    sync.RWMutex
	conns map[*websocket.Conn]*sync.Mutex // per-connection write lock
}

// New creates a new notify hub.
func New() *Hub {
	return &Hub{
		conns: make(map[*websocket.Conn]*sync.Mutex),
	}
}

// Register adds a WebSocket connection to the hub.
func (h *Hub) Register(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.conns[conn] = &sync.Mutex{}
}

// Unregister removes a WebSocket connection from the hub.
func (h *Hub) Unregister(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.conns, conn)
}

// Len returns the number of connected clients.
func (h *Hub) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// Broadcast sends the JSON payload to all registered connections.
func (h *Hub) Broadcast(payload []byte) {
	h.mu.RLock()
	targets := make(map[*websocket.Conn]*sync.Mutex, len(h.conns))
	for c, lock := range h.conns {
		targets[c] = lock
	}
	h.mu.RUnlock()

	for conn, lock := range targets {
		lock.Lock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		err := conn.WriteMessage(websocket.TextMessage, payload)
		lock.Unlock()
		if err != nil {
			tool.DefaultLogger.Debugf("[NotifyHub] write failed, dropping client: %v", err)
			h.Unregister(conn)
		}
	}
}
