package presence

import (
	"reflect"
	"testing"
)

func TestRegistry_RegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	reg.Register("alice", "conn-1")

	connID, ok := reg.Lookup("alice")
	if !ok || connID != "conn-1" {
		t.Errorf("Lookup(alice) = %q, %v, want conn-1, true", connID, ok)
	}

	username, ok := reg.Username("conn-1")
	if !ok || username != "alice" {
		t.Errorf("Username(conn-1) = %q, %v, want alice, true", username, ok)
	}
}

func TestRegistry_ReconnectLastWriteWins(t *testing.T) {
	reg := NewRegistry()

	reg.Register("alice", "conn-1")
	reg.Register("alice", "conn-2")

	connID, ok := reg.Lookup("alice")
	if !ok || connID != "conn-2" {
		t.Errorf("Lookup(alice) = %q, %v, want conn-2, true", connID, ok)
	}

	// connection เก่าต้องไม่ map กลับไปหา user แล้ว
	if _, ok := reg.Username("conn-1"); ok {
		t.Error("Username(conn-1) still resolves after reconnect")
	}
}

func TestRegistry_UnregisterConn(t *testing.T) {
	reg := NewRegistry()

	reg.Register("alice", "conn-1")
	reg.SetRoom("alice", "general")

	username, ok := reg.UnregisterConn("conn-1")
	if !ok || username != "alice" {
		t.Fatalf("UnregisterConn(conn-1) = %q, %v, want alice, true", username, ok)
	}

	if _, ok := reg.Lookup("alice"); ok {
		t.Error("Lookup(alice) still resolves after unregister")
	}
	if _, ok := reg.Room("alice"); ok {
		t.Error("Room(alice) still recorded after unregister")
	}
}

func TestRegistry_UnregisterUnknownConn(t *testing.T) {
	reg := NewRegistry()

	if _, ok := reg.UnregisterConn("missing"); ok {
		t.Error("UnregisterConn(missing) = true, want false")
	}
}

func TestRegistry_StaleConnUnregisterKeepsReconnectedUser(t *testing.T) {
	reg := NewRegistry()

	// alice reconnects ก่อนที่ disconnect ของ connection เก่าจะมาถึง
	reg.Register("alice", "conn-1")
	reg.Register("alice", "conn-2")

	if _, ok := reg.UnregisterConn("conn-1"); ok {
		t.Error("UnregisterConn(conn-1) = true for already replaced connection")
	}

	connID, ok := reg.Lookup("alice")
	if !ok || connID != "conn-2" {
		t.Errorf("Lookup(alice) = %q, %v, want conn-2, true", connID, ok)
	}
}

func TestRegistry_Rooms(t *testing.T) {
	reg := NewRegistry()

	reg.Register("alice", "conn-1")
	reg.SetRoom("alice", "general")

	room, ok := reg.Room("alice")
	if !ok || room != "general" {
		t.Errorf("Room(alice) = %q, %v, want general, true", room, ok)
	}

	reg.SetRoom("alice", "random")
	room, _ = reg.Room("alice")
	if room != "random" {
		t.Errorf("Room(alice) = %q after move, want random", room)
	}

	// SetRoom สำหรับ user ที่ไม่ online ต้องไม่สร้าง record
	reg.SetRoom("ghost", "general")
	if _, ok := reg.Room("ghost"); ok {
		t.Error("Room(ghost) recorded for offline user")
	}
}

func TestRegistry_Usernames(t *testing.T) {
	reg := NewRegistry()

	reg.Register("carol", "conn-3")
	reg.Register("alice", "conn-1")
	reg.Register("bob", "conn-2")

	got := reg.Usernames()
	want := []string{"alice", "bob", "carol"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Usernames() = %v, want %v", got, want)
	}

	if reg.Count() != 3 {
		t.Errorf("Count() = %d, want 3", reg.Count())
	}
}
