package hub

import (
	"errors"
	"sort"
	"sync"
	"testing"

	"stream-service/internal/room"
)

// fakeSender records everything sent to it. Safe for concurrent use.
type fakeSender struct {
	id string

	mu     sync.Mutex
	sent   [][]byte
	failed bool
}

func newFakeSender(id string) *fakeSender {
	return &fakeSender{id: id}
}

func (f *fakeSender) ID() string { return f.id }

func (f *fakeSender) Send(data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failed {
		return ErrClientDisconnected
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	f.sent = append(f.sent, cp)
	return nil
}

func (f *fakeSender) fail() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failed = true
}

func (f *fakeSender) messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

func TestRegistryRegisterAndLookup(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(newFakeSender("c1"), 42); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	userID, err := reg.Lookup("c1")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if userID != 42 {
		t.Errorf("Lookup() = %d, want 42", userID)
	}
	if reg.Len() != 1 {
		t.Errorf("Len() = %d, want 1", reg.Len())
	}
}

func TestRegistryDuplicateRegister(t *testing.T) {
	reg := NewRegistry()

	if err := reg.Register(newFakeSender("c1"), 1); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}
	err := reg.Register(newFakeSender("c1"), 2)
	if !errors.Is(err, ErrDuplicateConnection) {
		t.Errorf("second Register() error = %v, want ErrDuplicateConnection", err)
	}

	// The original record must be untouched.
	userID, err := reg.Lookup("c1")
	if err != nil || userID != 1 {
		t.Errorf("Lookup() = (%d, %v), want (1, nil)", userID, err)
	}
}

func TestRegistryLookupUnknown(t *testing.T) {
	reg := NewRegistry()

	if _, err := reg.Lookup("ghost"); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("Lookup() error = %v, want ErrConnectionNotFound", err)
	}
	if _, ok := reg.Sender("ghost"); ok {
		t.Error("Sender() for unknown connection returned ok")
	}
}

func TestRegistryUnregisterReturnsRooms(t *testing.T) {
	reg := NewRegistry()
	dir := NewDirectory(reg)

	s := newFakeSender("c1")
	if err := reg.Register(s, 7); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	dir.Join(room.Symbol("AAPL"), "c1")
	dir.Join(room.User(7), "c1")

	rooms, ok := reg.Unregister("c1")
	if !ok {
		t.Fatal("Unregister() returned ok = false")
	}

	got := make([]string, 0, len(rooms))
	for _, id := range rooms {
		got = append(got, id.String())
	}
	sort.Strings(got)
	want := []string{"symbol:AAPL", "user:7"}
	if len(got) != len(want) {
		t.Fatalf("Unregister() rooms = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Unregister() rooms = %v, want %v", got, want)
			break
		}
	}

	if _, err := reg.Lookup("c1"); !errors.Is(err, ErrConnectionNotFound) {
		t.Errorf("Lookup() after Unregister error = %v, want ErrConnectionNotFound", err)
	}
	if _, ok := reg.Unregister("c1"); ok {
		t.Error("second Unregister() returned ok = true")
	}
}
