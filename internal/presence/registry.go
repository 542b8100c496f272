package presence

import (
	"sort"
	"sync"
)

// Registry tracks which users are connected and where. It keeps a
// bidirectional index between usernames and connection IDs so that
// disconnects (which only carry the connection ID) clean up in O(1),
// plus each user's current room.
//
// All state is process-local and vanishes on restart; the registry is
// the single source of truth for "who is online".
type Registry struct {
	byUser map[string]string // username -> connID
	byConn map[string]string // connID -> username
	rooms  map[string]string // username -> current room
	mutex  sync.RWMutex
}

// NewRegistry creates an empty presence registry
func NewRegistry() *Registry {
	return &Registry{
		byUser: make(map[string]string),
		byConn: make(map[string]string),
		rooms:  make(map[string]string),
	}
}

// Register records the active connection for a username. A reconnect
// under the same username wins over the previous connection, whose
// entry is silently dropped; the old connection gets no notification.
func (r *Registry) Register(username, connID string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if oldConn, exists := r.byUser[username]; exists && oldConn != connID {
		delete(r.byConn, oldConn)
	}
	// connID ที่เคยผูกกับ user อื่น ต้องลบ mapping เก่าด้วย
	if oldUser, exists := r.byConn[connID]; exists && oldUser != username {
		delete(r.byUser, oldUser)
		delete(r.rooms, oldUser)
	}

	r.byUser[username] = connID
	r.byConn[connID] = username
}

// UnregisterConn removes the presence entry for a connection and
// returns the username it belonged to, if any. The user's room
// record is cleared as well.
func (r *Registry) UnregisterConn(connID string) (string, bool) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	username, exists := r.byConn[connID]
	if !exists {
		return "", false
	}

	delete(r.byConn, connID)
	// เช็คก่อนลบ เผื่อ user reconnect ด้วย connection ใหม่ไปแล้ว
	if r.byUser[username] == connID {
		delete(r.byUser, username)
		delete(r.rooms, username)
	}

	return username, true
}

// Lookup resolves a username to its active connection ID
func (r *Registry) Lookup(username string) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	connID, exists := r.byUser[username]
	return connID, exists
}

// Username resolves a connection ID to its username
func (r *Registry) Username(connID string) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	username, exists := r.byConn[connID]
	return username, exists
}

// SetRoom records the user's current room
func (r *Registry) SetRoom(username, room string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	if _, online := r.byUser[username]; online {
		r.rooms[username] = room
	}
}

// Room returns the user's current room, if one is recorded
func (r *Registry) Room(username string) (string, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	room, exists := r.rooms[username]
	return room, exists
}

// Usernames returns all currently connected usernames, sorted
func (r *Registry) Usernames() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.byUser))
	for name := range r.byUser {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of connected users
func (r *Registry) Count() int {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	return len(r.byUser)
}
