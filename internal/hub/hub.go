// Package hub implements the real-time distribution core: the
// connection registry, the room directory, the event dispatcher and the
// join/leave protocol that ties them together.
package hub

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"stream-service/internal/room"
)

// Authorizer decides whether an identity may join a room. The decision
// logic lives in an external collaborator; the hub only obeys the
// boolean. An error from the collaborator is treated as a denial —
// never fail open.
type Authorizer interface {
	CanJoin(ctx context.Context, userID uint, r room.ID) (bool, error)
}

const defaultAuthTimeout = 3 * time.Second

// Hub coordinates connection lifecycle and room membership. All
// mutating operations on the registry and directory are serialized
// through one mutex so read-then-write sequences cannot interleave and
// split the membership edge. Dispatch never runs under that mutex.
type Hub struct {
	mu sync.Mutex

	registry   *Registry
	directory  *Directory
	dispatcher *Dispatcher
	authorizer Authorizer

	authTimeout time.Duration
	logger      *slog.Logger
}

func New(authorizer Authorizer, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	registry := NewRegistry()
	directory := NewDirectory(registry)

	return &Hub{
		registry:    registry,
		directory:   directory,
		dispatcher:  NewDispatcher(directory, registry, logger),
		authorizer:  authorizer,
		authTimeout: defaultAuthTimeout,
		logger:      logger,
	}
}

// Registry exposes the connection registry for identity lookups.
func (h *Hub) Registry() *Registry { return h.registry }

// Directory exposes the room directory for membership reads.
func (h *Hub) Directory() *Directory { return h.directory }

// Publish fans an event out to the room's current members and returns
// the attempted delivery count. Safe for concurrent producers.
func (h *Hub) Publish(id room.ID, event string, payload any) int {
	return h.dispatcher.Publish(id, event, payload)
}

// Connect registers an authenticated connection and places it into its
// own user room. No explicit join is needed for that one room.
func (h *Hub) Connect(s Sender, userID uint) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if err := h.registry.Register(s, userID); err != nil {
		return err
	}
	h.directory.Join(room.User(userID), s.ID())

	h.logger.Info("connection registered", "connID", s.ID(), "userID", userID)
	return nil
}

// Disconnect unwinds a connection: the record is removed first, then
// every room it was in is left. Both steps run under the hub mutex so
// no join or leave can interleave with the unwind.
func (h *Hub) Disconnect(connID string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	rooms, ok := h.registry.Unregister(connID)
	if !ok {
		return
	}
	for _, id := range rooms {
		h.directory.Leave(id, connID)
	}

	h.logger.Info("connection unwound", "connID", connID, "rooms", len(rooms))
}

// HandleRequest processes one join or leave command from a connection.
// Requests from the same connection are handled in the order its read
// loop delivers them.
func (h *Hub) HandleRequest(s Sender, req Request) {
	switch req.Op {
	case OpJoin:
		h.handleJoin(s, req)
	case OpLeave:
		h.handleLeave(s, req)
	default:
		h.notify(s, Notice{Op: OpError, Reason: "unknown op"})
	}
}

// handleJoin runs the join protocol: resolve the room, ask the
// authorizer, then add the edge. The requester is not a member until
// authorization succeeds, so no event for the room can reach it while
// the check is in flight.
func (h *Hub) handleJoin(s Sender, req Request) {
	id, err := room.New(room.Kind(req.RoomKind), req.RoomKey)
	if err != nil {
		h.notify(s, newRejectedNotice(req.RoomKind+":"+req.RoomKey, ReasonInvalidRoom))
		return
	}

	userID, err := h.registry.Lookup(s.ID())
	if err != nil {
		// Disconnected while the request was in flight.
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.authTimeout)
	defer cancel()

	allowed, err := h.authorizer.CanJoin(ctx, userID, id)
	if err != nil {
		// Collaborator failure or timeout: fail closed, but make the
		// rejection distinguishable from a plain denial.
		h.logger.Warn("access check failed", "connID", s.ID(), "room", id.String(), "error", err)
		h.notify(s, newRejectedNotice(id.String(), ReasonAccessCheckFailed))
		return
	}
	if !allowed {
		// Expected and benign; surfaced to the requester only.
		h.notify(s, newRejectedNotice(id.String(), ReasonAccessDenied))
		return
	}

	h.mu.Lock()
	h.directory.Join(id, s.ID())
	h.mu.Unlock()

	h.notify(s, newJoinedNotice(id.String()))
	h.logger.Debug("room joined", "connID", s.ID(), "room", id.String())
}

// handleLeave removes the edge. Leaving is always permitted, including
// for rooms the connection never successfully joined.
func (h *Hub) handleLeave(s Sender, req Request) {
	id, err := room.New(room.Kind(req.RoomKind), req.RoomKey)
	if err != nil {
		h.notify(s, Notice{Op: OpError, Reason: ReasonInvalidRoom})
		return
	}

	h.mu.Lock()
	h.directory.Leave(id, s.ID())
	h.mu.Unlock()

	h.notify(s, newLeftNotice(id.String()))
}

// notify sends a protocol notice to one connection.
func (h *Hub) notify(s Sender, n Notice) {
	data, err := json.Marshal(n)
	if err != nil {
		h.logger.Error("failed to marshal notice", "op", string(n.Op), "error", err)
		return
	}
	if err := s.Send(data); err != nil {
		h.logger.Debug("notice delivery failed", "connID", s.ID(), "op", string(n.Op), "error", err)
	}
}
