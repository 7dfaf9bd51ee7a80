package hub

import (
	"encoding/json"
	"fmt"
)

// Op identifies a client request or server notice on the wire.
type Op string

const (
	// Client requests
	OpJoin  Op = "join"
	OpLeave Op = "leave"

	// Server notices, addressed to the requesting connection only
	OpJoined       Op = "joined"
	OpJoinRejected Op = "join-rejected"
	OpLeft         Op = "left"
	OpError        Op = "error"
)

// IsValid reports whether op is a request the server accepts.
func (op Op) IsValid() bool {
	return op == OpJoin || op == OpLeave
}

// Server-pushed event names.
const (
	EventMarketUpdate      = "market-update"
	EventTradeConfirmation = "trade-confirmation"
	EventSocialNotice      = "social-notice"
)

// Rejection reason categories surfaced to the client. Human-readable,
// never raw error text.
const (
	ReasonAccessDenied      = "access-denied"
	ReasonAccessCheckFailed = "access-check-failed"
	ReasonInvalidRoom       = "invalid-room"
)

// Request is a join or leave command from a client.
type Request struct {
	Op       Op     `json:"op"`
	RoomKind string `json:"roomKind"`
	RoomKey  string `json:"roomKey"`
}

// Notice is a server reply scoped to one connection.
type Notice struct {
	Op     Op     `json:"op"`
	RoomID string `json:"roomId,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func newJoinedNotice(roomID string) Notice {
	return Notice{Op: OpJoined, RoomID: roomID}
}

func newRejectedNotice(roomID, reason string) Notice {
	return Notice{Op: OpJoinRejected, RoomID: roomID, Reason: reason}
}

func newLeftNotice(roomID string) Notice {
	return Notice{Op: OpLeft, RoomID: roomID}
}

// EncodeEvent flattens an event payload into the wire shape
// {"event": <name>, ...payload fields}. The payload must marshal to a
// JSON object.
func EncodeEvent(event string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}

	flat := make(map[string]any)
	if err := json.Unmarshal(raw, &flat); err != nil {
		return nil, fmt.Errorf("event payload must be an object: %w", err)
	}
	flat["event"] = event

	return json.Marshal(flat)
}

// MarketUpdate is the payload broadcast to symbol rooms.
type MarketUpdate struct {
	Symbol        string  `json:"symbol"`
	Price         float64 `json:"price"`
	Change        float64 `json:"change"`
	ChangePercent float64 `json:"changePercent"`
	Timestamp     int64   `json:"timestamp"`
}

// TradeConfirmation is delivered to the trading user's private room.
type TradeConfirmation struct {
	TradeID   string  `json:"tradeId"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Quantity  float64 `json:"quantity"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"`
}

// SocialNotice is delivered to user or portfolio rooms for social
// activity (new follower, comment, portfolio update).
type SocialNotice struct {
	NoticeID  string `json:"noticeId"`
	Kind      string `json:"kind"`
	ActorID   uint   `json:"actorId"`
	Text      string `json:"text"`
	Timestamp int64  `json:"timestamp"`
}
