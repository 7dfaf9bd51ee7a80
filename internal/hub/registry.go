package hub

import (
	"sync"

	"stream-service/internal/room"
)

// Sender is the transport-facing side of a live connection. The
// registry owns the connection record; the transport keeps only the id.
type Sender interface {
	ID() string
	Send(data []byte) error
}

// record is one live connection: its resolved identity, its transport,
// and the set of rooms it belongs to. The rooms set is written only by
// the Directory, which keeps both sides of the membership edge in step.
type record struct {
	userID uint
	sender Sender
	rooms  map[room.ID]struct{}
}

// Registry tracks live connections and their identities. It never
// mutates room membership itself; the Directory is the single writer of
// the edge set.
type Registry struct {
	mu      sync.RWMutex
	records map[string]*record
}

func NewRegistry() *Registry {
	return &Registry{records: make(map[string]*record)}
}

// Register creates the connection record. Registering an id twice is a
// fatal logic error and returns ErrDuplicateConnection.
func (r *Registry) Register(s Sender, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.records[s.ID()]; ok {
		return ErrDuplicateConnection
	}
	r.records[s.ID()] = &record{
		userID: userID,
		sender: s,
		rooms:  make(map[room.ID]struct{}),
	}
	return nil
}

// Unregister removes the connection record and returns the rooms it was
// a member of, so the caller can unwind them from the Directory.
func (r *Registry) Unregister(connID string) ([]room.ID, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rec, ok := r.records[connID]
	if !ok {
		return nil, false
	}
	delete(r.records, connID)

	rooms := make([]room.ID, 0, len(rec.rooms))
	for id := range rec.rooms {
		rooms = append(rooms, id)
	}
	return rooms, true
}

// Lookup resolves a connection id to its identity.
func (r *Registry) Lookup(connID string) (uint, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[connID]
	if !ok {
		return 0, ErrConnectionNotFound
	}
	return rec.userID, nil
}

// Sender returns the transport for a live connection.
func (r *Registry) Sender(connID string) (Sender, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[connID]
	if !ok {
		return nil, false
	}
	return rec.sender, true
}

// Rooms returns a snapshot of the rooms a connection belongs to.
func (r *Registry) Rooms(connID string) []room.ID {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rec, ok := r.records[connID]
	if !ok {
		return nil
	}
	rooms := make([]room.ID, 0, len(rec.rooms))
	for id := range rec.rooms {
		rooms = append(rooms, id)
	}
	return rooms
}

// Len returns the number of live connections.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

// addRoom and removeRoom maintain the connection-side view of the
// membership edge. Only the Directory calls them.

func (r *Registry) addRoom(connID string, id room.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[connID]; ok {
		rec.rooms[id] = struct{}{}
	}
}

func (r *Registry) removeRoom(connID string, id room.ID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rec, ok := r.records[connID]; ok {
		delete(rec.rooms, id)
	}
}
