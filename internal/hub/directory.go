package hub

import (
	"sync"

	"stream-service/internal/room"
)

// Directory maps rooms to member connections. It is the single writer
// of the membership edge: Join and Leave update the room-side set here
// and the connection-side set in the registry together, so the two
// views never diverge.
//
// A room with no members has no map entry; absence and emptiness are
// the same state, so rooms need no explicit create or delete.
type Directory struct {
	mu      sync.RWMutex
	members map[room.ID]map[string]struct{}
	reg     *Registry
}

func NewDirectory(reg *Registry) *Directory {
	return &Directory{
		members: make(map[room.ID]map[string]struct{}),
		reg:     reg,
	}
}

// Join adds the membership edge on both sides. Joining a room the
// connection is already in is a no-op.
func (d *Directory) Join(id room.ID, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.members[id]
	if !ok {
		set = make(map[string]struct{})
		d.members[id] = set
	}
	if _, ok := set[connID]; ok {
		return
	}
	set[connID] = struct{}{}
	d.reg.addRoom(connID, id)
}

// Leave removes the membership edge on both sides. Leaving a room the
// connection is not in is a no-op.
func (d *Directory) Leave(id room.ID, connID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	set, ok := d.members[id]
	if !ok {
		return
	}
	if _, ok := set[connID]; !ok {
		return
	}
	delete(set, connID)
	if len(set) == 0 {
		delete(d.members, id)
	}
	d.reg.removeRoom(connID, id)
}

// MembersOf returns a snapshot of the room's members at call time.
// Callers must not assume it reflects later joins or leaves.
func (d *Directory) MembersOf(id room.ID) []string {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set, ok := d.members[id]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(set))
	for connID := range set {
		out = append(out, connID)
	}
	return out
}

// Contains reports whether the connection is a member of the room.
func (d *Directory) Contains(id room.ID, connID string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	set, ok := d.members[id]
	if !ok {
		return false
	}
	_, ok = set[connID]
	return ok
}
