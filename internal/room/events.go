package room

import (
	"encoding/json"
	"log"
)

// Envelope is the wire format for server-to-client events
type Envelope struct {
	Event string `json:"event"`
	Data  any    `json:"data"`
}

// RoomJoined confirms a join to the joining client
type RoomJoined struct {
	Room string `json:"room"`
}

// RoomCreated announces a new room to every client
type RoomCreated struct {
	Room string `json:"room"`
}

// RoomMessage is a message fanned out to a room
type RoomMessage struct {
	From string `json:"from"`
	Msg  string `json:"msg"`
	Room string `json:"room"`
}

// PrivateMessage is a direct message; the sender receives the same
// payload as an echo, To field included.
type PrivateMessage struct {
	From string `json:"from"`
	To   string `json:"to"`
	Msg  string `json:"msg"`
}

// Typing mirrors a typing indicator to a room
type Typing struct {
	Room     string `json:"room"`
	Username string `json:"username"`
}

// encode marshals an event envelope for the wire
func encode(event string, data any) []byte {
	payload, err := json.Marshal(Envelope{Event: event, Data: data})
	if err != nil {
		// Marshal of the types above cannot fail; keep the router total anyway.
		log.Printf("❌ Failed to encode event %s: %v", event, err)
		return nil
	}
	return payload
}
