// Package feed produces market updates and hands them to the event
// dispatcher. The scheduling contract lives here; where the numbers
// come from is a pluggable source, so the synthetic generator can be
// swapped for a real upstream subscription without touching the loop.
package feed

import (
	"stream-service/internal/hub"
	"stream-service/internal/room"
)

// Publisher is the slice of the hub the feed needs: room-scoped
// fan-out, nothing else.
type Publisher interface {
	Publish(id room.ID, event string, payload any) int
}

// Source produces the next update for one tracked symbol.
type Source interface {
	NextUpdate(symbol string) hub.MarketUpdate
}
