package websocket

import (
	"log"
	"sync"

	"online-chat/internal/config"
)

// Hub tracks live connections and their room grouping. Rooms here are
// pure transport-level delivery sets; who is in which room is decided
// by the layer above.
type Hub struct {
	config       *config.ServerConfig
	metrics      *config.ServerMetrics
	conns        map[string]*Conn            // connID -> conn
	rooms        map[string]map[string]*Conn // room -> connID -> conn
	mutex        sync.RWMutex
	onDisconnect func(connID string)
}

// NewHub creates a new hub
func NewHub(cfg *config.ServerConfig, metrics *config.ServerMetrics) *Hub {
	return &Hub{
		config:  cfg,
		metrics: metrics,
		conns:   make(map[string]*Conn),
		rooms:   make(map[string]map[string]*Conn),
	}
}

// SetDisconnectHandler registers the callback invoked after a
// connection has been removed. Must be set before the hub is used.
func (h *Hub) SetDisconnectHandler(fn func(connID string)) {
	h.onDisconnect = fn
}

// Add registers a connection. It reports false when the server is at
// its connection limit; the caller should close the socket.
func (h *Hub) Add(conn *Conn) bool {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	if len(h.conns) >= h.config.MaxConnections {
		log.Printf("❌ Connection limit reached, rejecting: %s", conn.ID())
		return false
	}

	h.conns[conn.ID()] = conn
	h.metrics.IncrementConnections()
	log.Printf("📝 Connection registered: %s (Total: %d/%d)", conn.ID(), len(h.conns), h.config.MaxConnections)
	return true
}

// Remove unregisters a connection, drops it from every room and
// closes it. Idempotent; the disconnect handler runs once.
func (h *Hub) Remove(connID string) {
	h.mutex.Lock()
	conn, exists := h.conns[connID]
	if exists {
		delete(h.conns, connID)
		for room, members := range h.rooms {
			delete(members, connID)
			if len(members) == 0 {
				delete(h.rooms, room)
			}
		}
		h.metrics.DecrementConnections()
		log.Printf("🗑️ Connection unregistered: %s (Total: %d/%d)", connID, len(h.conns), h.config.MaxConnections)
	}
	h.mutex.Unlock()

	if !exists {
		return
	}

	conn.Close()
	if h.onDisconnect != nil {
		h.onDisconnect(connID)
	}
}

// Conn returns a connection by ID
func (h *Hub) Conn(connID string) (*Conn, bool) {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	conn, exists := h.conns[connID]
	return conn, exists
}

// Count returns the number of active connections
func (h *Hub) Count() int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.conns)
}

// JoinRoom adds a connection to a room's delivery set
func (h *Hub) JoinRoom(connID, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	conn, exists := h.conns[connID]
	if !exists {
		return
	}

	members, exists := h.rooms[room]
	if !exists {
		members = make(map[string]*Conn)
		h.rooms[room] = members
	}
	members[connID] = conn
}

// LeaveRoom removes a connection from a room's delivery set
func (h *Hub) LeaveRoom(connID, room string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	members, exists := h.rooms[room]
	if !exists {
		return
	}
	delete(members, connID)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

// RoomSize returns how many connections a room currently holds
func (h *Hub) RoomSize(room string) int {
	h.mutex.RLock()
	defer h.mutex.RUnlock()
	return len(h.rooms[room])
}

// EmitTo delivers a payload to one connection
func (h *Hub) EmitTo(connID string, payload []byte) {
	h.mutex.RLock()
	conn, exists := h.conns[connID]
	h.mutex.RUnlock()

	if !exists {
		return
	}
	if !conn.Enqueue(payload) {
		log.Printf("🔌 Removing unresponsive connection: %s", connID)
		h.Remove(connID)
	}
}

// EmitToRoom delivers a payload to every connection in a room.
// excludeConnID may be empty to include everyone.
func (h *Hub) EmitToRoom(room string, payload []byte, excludeConnID string) {
	h.mutex.RLock()
	var dead []string
	sentCount := 0
	for connID, conn := range h.rooms[room] {
		if connID == excludeConnID {
			continue
		}
		if conn.Enqueue(payload) {
			sentCount++
		} else {
			dead = append(dead, connID)
		}
	}
	h.mutex.RUnlock()

	for _, connID := range dead {
		log.Printf("🔌 Removing unresponsive connection: %s", connID)
		h.Remove(connID)
	}

	log.Printf("📡 Broadcasted to %d connections in room '%s'", sentCount, room)
}

// EmitAll delivers a payload to every connection on the server
func (h *Hub) EmitAll(payload []byte) {
	h.mutex.RLock()
	var dead []string
	for connID, conn := range h.conns {
		if !conn.Enqueue(payload) {
			dead = append(dead, connID)
		}
	}
	h.mutex.RUnlock()

	for _, connID := range dead {
		log.Printf("🔌 Removing unresponsive connection: %s", connID)
		h.Remove(connID)
	}
}
