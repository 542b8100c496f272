package chat

import (
	"encoding/json"
)

// ClientEnvelope is the wire format for client-to-server events
type ClientEnvelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// JoinEvent asks to move the caller into a room. The username field is
// accepted for compatibility but the session username is authoritative.
type JoinEvent struct {
	Username string `json:"username"`
	Room     string `json:"room"`
}

// CreateRoomEvent announces a new room name
type CreateRoomEvent struct {
	Room string `json:"room"`
}

// RoomMessageEvent carries a message for a room
type RoomMessageEvent struct {
	From string `json:"from"`
	Msg  string `json:"msg"`
	Room string `json:"room"`
}

// PrivateMessageEvent carries a direct message
type PrivateMessageEvent struct {
	From string `json:"from"`
	To   string `json:"to"`
	Msg  string `json:"msg"`
}

// TypingEvent carries a typing indicator for a room
type TypingEvent struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}
