package models

// TradeConfirmationRequest is the ingest payload for a completed trade.
type TradeConfirmationRequest struct {
	UserID   uint    `json:"userId" binding:"required"`
	TradeID  string  `json:"tradeId" binding:"required"`
	Symbol   string  `json:"symbol" binding:"required"`
	Side     string  `json:"side" binding:"required,oneof=buy sell"`
	Quantity float64 `json:"quantity" binding:"required,gt=0"`
	Price    float64 `json:"price" binding:"required,gt=0"`
}

// SocialNoticeRequest is the ingest payload for a social activity event.
// Exactly one of UserID or PortfolioID selects the destination.
type SocialNoticeRequest struct {
	UserID      uint   `json:"userId,omitempty"`
	PortfolioID uint   `json:"portfolioId,omitempty"`
	NoticeID    string `json:"noticeId" binding:"required"`
	Kind        string `json:"kind" binding:"required"`
	ActorID     uint   `json:"actorId"`
	Text        string `json:"text"`
}

// PublishResponse reports how many connections an event was sent to.
type PublishResponse struct {
	Room      string `json:"room"`
	Attempted int    `json:"attempted"`
}
