package room

import (
	"log"
	"sort"
	"sync"

	"online-chat/internal/config"
	"online-chat/internal/presence"
)

// DefaultRoom is the room every server knows from the start
const DefaultRoom = "general"

// Transport is the delivery layer the router fans out over. Implemented
// by the WebSocket hub.
type Transport interface {
	JoinRoom(connID, room string)
	LeaveRoom(connID, room string)
	EmitTo(connID string, payload []byte)
	EmitToRoom(room string, payload []byte, excludeConnID string)
	EmitAll(payload []byte)
}

// Router routes chat events to rooms and individual recipients.
//
// Room membership is single-room: joining a room leaves the previously
// recorded one first, so a user's connection is never in two delivery
// sets at once. Room names are never validated; any name is accepted
// on join, and the known-room set only feeds the room listing.
type Router struct {
	transport Transport
	presence  *presence.Registry
	metrics   *config.ServerMetrics
	known     map[string]struct{}
	mutex     sync.RWMutex
}

// NewRouter creates a router seeded with the default room
func NewRouter(transport Transport, registry *presence.Registry, metrics *config.ServerMetrics) *Router {
	return &Router{
		transport: transport,
		presence:  registry,
		metrics:   metrics,
		known:     map[string]struct{}{DefaultRoom: {}},
	}
}

// Join moves a user's connection into a room. Presence is refreshed
// (last write wins on reconnect), the previously recorded room is left
// first, and the joiner gets a room_joined confirmation.
func (r *Router) Join(username, room, connID string) {
	r.presence.Register(username, connID)

	if prev, ok := r.presence.Room(username); ok && prev != room {
		r.transport.LeaveRoom(connID, prev)
		log.Printf("🚪 %s left room '%s'", username, prev)
	}

	r.transport.JoinRoom(connID, room)
	r.presence.SetRoom(username, room)
	log.Printf("🚪 %s joined room '%s'", username, room)

	r.transport.EmitTo(connID, encode("room_joined", RoomJoined{Room: room}))
}

// BroadcastRoomMessage fans a message out to every connection in the
// room, the sender included.
func (r *Router) BroadcastRoomMessage(from, msg, room string) {
	r.transport.EmitToRoom(room, encode("room_message", RoomMessage{From: from, Msg: msg, Room: room}), "")
	r.metrics.IncrementMessages()
}

// SendPrivate delivers a message to the recipient's connection when the
// recipient is online, and always echoes the same payload back to the
// sender. An offline recipient is not an error; the sender still sees
// their own message.
func (r *Router) SendPrivate(senderConnID, from, to, msg string) {
	payload := encode("private_message", PrivateMessage{From: from, To: to, Msg: msg})

	if recipientConnID, online := r.presence.Lookup(to); online {
		r.transport.EmitTo(recipientConnID, payload)
	}

	r.transport.EmitTo(senderConnID, payload)
	r.metrics.IncrementPrivateMessages()
}

// NotifyTyping mirrors a typing or stop_typing event to everyone in the
// room except the originating connection.
func (r *Router) NotifyTyping(event, room, username, senderConnID string) {
	r.transport.EmitToRoom(room, encode(event, Typing{Room: room, Username: username}), senderConnID)
}

// CreateRoom adds a room to the known-room set and announces it to all
// connected clients. Creating an existing room is an idempotent no-op.
func (r *Router) CreateRoom(name string) {
	r.mutex.Lock()
	if _, exists := r.known[name]; exists {
		r.mutex.Unlock()
		return
	}
	r.known[name] = struct{}{}
	r.mutex.Unlock()

	log.Printf("🏠 Room created: '%s'", name)
	r.metrics.IncrementRooms()
	r.transport.EmitAll(encode("room_created", RoomCreated{Room: name}))
}

// Rooms returns all known room names, sorted
func (r *Router) Rooms() []string {
	r.mutex.RLock()
	defer r.mutex.RUnlock()

	names := make([]string, 0, len(r.known))
	for name := range r.known {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
