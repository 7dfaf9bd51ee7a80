package hub

import (
	"log/slog"

	"stream-service/internal/room"
)

// Dispatcher fans an event out to the current members of a room. It is
// the one component that touches transport I/O: the membership snapshot
// is taken under the directory lock, the sends happen outside it, so a
// slow client cannot stall joins and leaves for everyone else.
type Dispatcher struct {
	dir    *Directory
	reg    *Registry
	logger *slog.Logger
}

func NewDispatcher(dir *Directory, reg *Registry, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{dir: dir, reg: reg, logger: logger}
}

// Publish delivers the event to every current member of the room and
// returns the number of delivery attempts. Delivery is at-most-once,
// fire-and-forget: a failed send to one member never blocks or fails
// delivery to the others, and no acknowledgement exists.
func (d *Dispatcher) Publish(id room.ID, event string, payload any) int {
	data, err := EncodeEvent(event, payload)
	if err != nil {
		d.logger.Error("failed to encode event", "room", id.String(), "event", event, "error", err)
		return 0
	}
	return d.PublishRaw(id, event, data)
}

// PublishRaw delivers pre-encoded bytes to every current member.
func (d *Dispatcher) PublishRaw(id room.ID, event string, data []byte) int {
	snapshot := d.dir.MembersOf(id)
	if len(snapshot) == 0 {
		return 0
	}

	attempted := 0
	for _, connID := range snapshot {
		sender, ok := d.reg.Sender(connID)
		if !ok {
			// Disconnected between snapshot and send; the unwind
			// removes the directory entry momentarily.
			continue
		}
		attempted++
		if err := sender.Send(data); err != nil {
			d.logger.Warn("event delivery failed",
				"room", id.String(), "event", event, "connID", connID, "error", err)
		}
	}

	d.logger.Debug("event dispatched",
		"room", id.String(), "event", event, "members", attempted)
	return attempted
}
