package hub

import (
	"testing"

	"stream-service/internal/room"
)

func newTestDirectory(t *testing.T, connIDs ...string) (*Registry, *Directory) {
	t.Helper()
	reg := NewRegistry()
	dir := NewDirectory(reg)
	for i, id := range connIDs {
		if err := reg.Register(newFakeSender(id), uint(i+1)); err != nil {
			t.Fatalf("Register(%s) error = %v", id, err)
		}
	}
	return reg, dir
}

func TestDirectoryJoinUpdatesBothSides(t *testing.T) {
	reg, dir := newTestDirectory(t, "c1")
	id := room.Symbol("TSLA")

	dir.Join(id, "c1")

	if !dir.Contains(id, "c1") {
		t.Error("Contains() = false after Join")
	}
	rooms := reg.Rooms("c1")
	if len(rooms) != 1 || rooms[0] != id {
		t.Errorf("Rooms() = %v, want [%v]", rooms, id)
	}
}

func TestDirectoryJoinIdempotent(t *testing.T) {
	reg, dir := newTestDirectory(t, "c1")
	id := room.Symbol("AAPL")

	dir.Join(id, "c1")
	dir.Join(id, "c1")

	if got := len(dir.MembersOf(id)); got != 1 {
		t.Errorf("MembersOf() has %d entries, want 1", got)
	}
	if got := len(reg.Rooms("c1")); got != 1 {
		t.Errorf("Rooms() has %d entries, want 1", got)
	}
}

func TestDirectoryLeaveUpdatesBothSides(t *testing.T) {
	reg, dir := newTestDirectory(t, "c1", "c2")
	id := room.Thread("th-9")

	dir.Join(id, "c1")
	dir.Join(id, "c2")
	dir.Leave(id, "c1")

	if dir.Contains(id, "c1") {
		t.Error("Contains(c1) = true after Leave")
	}
	if !dir.Contains(id, "c2") {
		t.Error("Contains(c2) = false, other member affected by Leave")
	}
	if got := len(reg.Rooms("c1")); got != 0 {
		t.Errorf("Rooms(c1) has %d entries, want 0", got)
	}
}

func TestDirectoryLeaveNotMemberNoop(t *testing.T) {
	_, dir := newTestDirectory(t, "c1")
	id := room.Portfolio(3)

	// Leaving a room never joined, and a room that does not exist.
	dir.Leave(id, "c1")
	dir.Leave(room.Symbol("GOOG"), "c1")

	if got := len(dir.MembersOf(id)); got != 0 {
		t.Errorf("MembersOf() has %d entries, want 0", got)
	}
}

func TestDirectoryEmptyRoomDisappears(t *testing.T) {
	_, dir := newTestDirectory(t, "c1")
	id := room.Symbol("MSFT")

	dir.Join(id, "c1")
	dir.Leave(id, "c1")

	if members := dir.MembersOf(id); members != nil {
		t.Errorf("MembersOf() = %v, want nil for empty room", members)
	}
}

func TestDirectoryMembersOfSnapshot(t *testing.T) {
	_, dir := newTestDirectory(t, "c1", "c2")
	id := room.Symbol("BTC")

	dir.Join(id, "c1")
	snapshot := dir.MembersOf(id)
	dir.Join(id, "c2")

	if len(snapshot) != 1 {
		t.Errorf("snapshot has %d entries after later join, want 1", len(snapshot))
	}
}
