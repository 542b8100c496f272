package room

import (
	"encoding/json"
	"reflect"
	"testing"

	"online-chat/internal/config"
	"online-chat/internal/presence"
)

// fakeTransport records every delivery the router asks for
type fakeTransport struct {
	joined   map[string][]string // connID -> rooms joined, in order
	left     map[string][]string
	direct   map[string][][]byte // connID -> payloads
	roomSend []roomDelivery
	all      [][]byte
}

type roomDelivery struct {
	room    string
	payload []byte
	exclude string
}

func newFakeTransport() *fakeTransport {
	return &fakeTransport{
		joined: make(map[string][]string),
		left:   make(map[string][]string),
		direct: make(map[string][][]byte),
	}
}

func (f *fakeTransport) JoinRoom(connID, room string)  { f.joined[connID] = append(f.joined[connID], room) }
func (f *fakeTransport) LeaveRoom(connID, room string) { f.left[connID] = append(f.left[connID], room) }
func (f *fakeTransport) EmitTo(connID string, payload []byte) {
	f.direct[connID] = append(f.direct[connID], payload)
}
func (f *fakeTransport) EmitToRoom(room string, payload []byte, excludeConnID string) {
	f.roomSend = append(f.roomSend, roomDelivery{room: room, payload: payload, exclude: excludeConnID})
}
func (f *fakeTransport) EmitAll(payload []byte) { f.all = append(f.all, payload) }

func decodeEnvelope(t *testing.T, payload []byte) (string, map[string]any) {
	t.Helper()
	var env struct {
		Event string         `json:"event"`
		Data  map[string]any `json:"data"`
	}
	if err := json.Unmarshal(payload, &env); err != nil {
		t.Fatalf("unmarshal envelope: %v", err)
	}
	return env.Event, env.Data
}

func newTestRouter() (*Router, *fakeTransport, *presence.Registry) {
	transport := newFakeTransport()
	registry := presence.NewRegistry()
	router := NewRouter(transport, registry, config.NewServerMetrics())
	return router, transport, registry
}

func TestRouter_JoinRegistersPresenceAndConfirms(t *testing.T) {
	router, transport, registry := newTestRouter()

	router.Join("alice", "general", "conn-1")

	if connID, ok := registry.Lookup("alice"); !ok || connID != "conn-1" {
		t.Errorf("Lookup(alice) = %q, %v, want conn-1, true", connID, ok)
	}
	if room, ok := registry.Room("alice"); !ok || room != "general" {
		t.Errorf("Room(alice) = %q, %v, want general, true", room, ok)
	}
	if !reflect.DeepEqual(transport.joined["conn-1"], []string{"general"}) {
		t.Errorf("joined rooms = %v, want [general]", transport.joined["conn-1"])
	}

	payloads := transport.direct["conn-1"]
	if len(payloads) != 1 {
		t.Fatalf("joiner received %d direct payloads, want 1", len(payloads))
	}
	event, data := decodeEnvelope(t, payloads[0])
	if event != "room_joined" || data["room"] != "general" {
		t.Errorf("got %s %v, want room_joined {room: general}", event, data)
	}
}

func TestRouter_JoinLeavesPreviousRoom(t *testing.T) {
	router, transport, registry := newTestRouter()

	router.Join("alice", "general", "conn-1")
	router.Join("alice", "random", "conn-1")

	if !reflect.DeepEqual(transport.left["conn-1"], []string{"general"}) {
		t.Errorf("left rooms = %v, want [general]", transport.left["conn-1"])
	}
	if !reflect.DeepEqual(transport.joined["conn-1"], []string{"general", "random"}) {
		t.Errorf("joined rooms = %v, want [general random]", transport.joined["conn-1"])
	}
	if room, _ := registry.Room("alice"); room != "random" {
		t.Errorf("Room(alice) = %q, want random", room)
	}
}

func TestRouter_JoinSameRoomDoesNotLeave(t *testing.T) {
	router, transport, _ := newTestRouter()

	router.Join("alice", "general", "conn-1")
	router.Join("alice", "general", "conn-1")

	if len(transport.left["conn-1"]) != 0 {
		t.Errorf("left rooms = %v, want none", transport.left["conn-1"])
	}
}

func TestRouter_BroadcastRoomMessage(t *testing.T) {
	router, transport, _ := newTestRouter()

	router.BroadcastRoomMessage("alice", "hi", "general")

	if len(transport.roomSend) != 1 {
		t.Fatalf("room deliveries = %d, want 1", len(transport.roomSend))
	}
	delivery := transport.roomSend[0]
	if delivery.room != "general" || delivery.exclude != "" {
		t.Errorf("delivery = %+v, want room general with no exclusion", delivery)
	}
	event, data := decodeEnvelope(t, delivery.payload)
	if event != "room_message" || data["from"] != "alice" || data["msg"] != "hi" || data["room"] != "general" {
		t.Errorf("got %s %v, want room_message from alice", event, data)
	}
}

func TestRouter_SendPrivateOnlineRecipient(t *testing.T) {
	router, transport, registry := newTestRouter()
	registry.Register("bob", "conn-2")

	router.SendPrivate("conn-1", "alice", "bob", "hey")

	if len(transport.direct["conn-2"]) != 1 {
		t.Fatalf("recipient payloads = %d, want 1", len(transport.direct["conn-2"]))
	}
	if len(transport.direct["conn-1"]) != 1 {
		t.Fatalf("sender echo payloads = %d, want 1", len(transport.direct["conn-1"]))
	}

	event, data := decodeEnvelope(t, transport.direct["conn-1"][0])
	if event != "private_message" {
		t.Fatalf("echo event = %s, want private_message", event)
	}
	if data["from"] != "alice" || data["to"] != "bob" || data["msg"] != "hey" {
		t.Errorf("echo data = %v, want from alice to bob msg hey", data)
	}
}

func TestRouter_SendPrivateOfflineRecipientStillEchoes(t *testing.T) {
	router, transport, _ := newTestRouter()

	router.SendPrivate("conn-1", "alice", "bob", "hey")

	if len(transport.direct["conn-1"]) != 1 {
		t.Errorf("sender echo payloads = %d, want 1", len(transport.direct["conn-1"]))
	}
	if len(transport.direct["conn-2"]) != 0 {
		t.Errorf("offline recipient received %d payloads, want 0", len(transport.direct["conn-2"]))
	}
}

func TestRouter_NotifyTypingExcludesSender(t *testing.T) {
	router, transport, _ := newTestRouter()

	router.NotifyTyping("typing", "general", "alice", "conn-1")
	router.NotifyTyping("stop_typing", "general", "alice", "conn-1")

	if len(transport.roomSend) != 2 {
		t.Fatalf("room deliveries = %d, want 2", len(transport.roomSend))
	}
	for i, wantEvent := range []string{"typing", "stop_typing"} {
		delivery := transport.roomSend[i]
		if delivery.exclude != "conn-1" {
			t.Errorf("delivery %d exclude = %q, want conn-1", i, delivery.exclude)
		}
		event, data := decodeEnvelope(t, delivery.payload)
		if event != wantEvent || data["username"] != "alice" || data["room"] != "general" {
			t.Errorf("got %s %v, want %s for alice in general", event, data, wantEvent)
		}
	}
}

func TestRouter_CreateRoom(t *testing.T) {
	router, transport, _ := newTestRouter()

	router.CreateRoom("random")

	if len(transport.all) != 1 {
		t.Fatalf("broadcasts = %d, want 1", len(transport.all))
	}
	event, data := decodeEnvelope(t, transport.all[0])
	if event != "room_created" || data["room"] != "random" {
		t.Errorf("got %s %v, want room_created {room: random}", event, data)
	}

	want := []string{DefaultRoom, "random"}
	if !reflect.DeepEqual(router.Rooms(), want) {
		t.Errorf("Rooms() = %v, want %v", router.Rooms(), want)
	}
}

func TestRouter_CreateRoomIdempotent(t *testing.T) {
	router, transport, _ := newTestRouter()

	router.CreateRoom("random")
	router.CreateRoom("random")
	router.CreateRoom(DefaultRoom)

	if len(transport.all) != 1 {
		t.Errorf("broadcasts = %d, want 1 (duplicates are silent no-ops)", len(transport.all))
	}
	if len(router.Rooms()) != 2 {
		t.Errorf("Rooms() = %v, want 2 entries", router.Rooms())
	}
}
