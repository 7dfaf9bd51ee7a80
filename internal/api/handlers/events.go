package handlers

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"stream-service/internal/adapters/kafka"
	"stream-service/internal/hub"
	"stream-service/internal/models"
	"stream-service/internal/room"

	"github.com/gin-gonic/gin"
)

// EventHandler ingests platform events over HTTP and fans them out to
// the rooms they belong to. The backend services that execute trades
// and record social activity call these endpoints.
type EventHandler struct {
	hub      *hub.Hub
	producer *kafka.EventProducer
}

func NewEventHandler(h *hub.Hub, producer *kafka.EventProducer) *EventHandler {
	return &EventHandler{hub: h, producer: producer}
}

// PublishTrade godoc
// @Summary Publish a trade confirmation
// @Description Deliver a trade confirmation to the trading user's private room
// @Tags events
// @Accept json
// @Produce json
// @Param request body models.TradeConfirmationRequest true "Trade confirmation data"
// @Success 200 {object} models.PublishResponse "Event dispatched"
// @Failure 400 {object} models.ErrorResponse "Bad request - invalid input data"
// @Router /events/trades [post]
func (h *EventHandler) PublishTrade(c *gin.Context) {
	var req models.TradeConfirmationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid input data",
		})
		return
	}

	payload := hub.TradeConfirmation{
		TradeID:   req.TradeID,
		Symbol:    req.Symbol,
		Side:      req.Side,
		Quantity:  req.Quantity,
		Price:     req.Price,
		Timestamp: time.Now().Unix(),
	}

	target := room.User(req.UserID)
	attempted := h.hub.Publish(target, hub.EventTradeConfirmation, payload)

	h.mirror(fmt.Sprintf("%d", req.UserID), payload)

	c.JSON(http.StatusOK, models.PublishResponse{
		Room:      target.String(),
		Attempted: attempted,
	})
}

// PublishNotice godoc
// @Summary Publish a social notice
// @Description Deliver a social activity notice to a user or portfolio room
// @Tags events
// @Accept json
// @Produce json
// @Param request body models.SocialNoticeRequest true "Social notice data"
// @Success 200 {object} models.PublishResponse "Event dispatched"
// @Failure 400 {object} models.ErrorResponse "Bad request - invalid input data"
// @Router /events/notices [post]
func (h *EventHandler) PublishNotice(c *gin.Context) {
	var req models.SocialNoticeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Invalid input data",
		})
		return
	}

	var target room.ID
	switch {
	case req.UserID != 0 && req.PortfolioID == 0:
		target = room.User(req.UserID)
	case req.PortfolioID != 0 && req.UserID == 0:
		target = room.Portfolio(req.PortfolioID)
	default:
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Exactly one of userId or portfolioId is required",
		})
		return
	}

	payload := hub.SocialNotice{
		NoticeID:  req.NoticeID,
		Kind:      req.Kind,
		ActorID:   req.ActorID,
		Text:      req.Text,
		Timestamp: time.Now().Unix(),
	}

	attempted := h.hub.Publish(target, hub.EventSocialNotice, payload)

	h.mirror(target.String(), payload)

	c.JSON(http.StatusOK, models.PublishResponse{
		Room:      target.String(),
		Attempted: attempted,
	})
}

// mirror copies the event to the platform topic for offline consumers.
// Delivery to connected clients already happened; a broker hiccup must
// not fail the request.
func (h *EventHandler) mirror(key string, payload any) {
	if h.producer == nil {
		return
	}
	if err := h.producer.Emit(key, payload); err != nil {
		slog.Warn("Failed to mirror event to broker", "key", key, "error", err)
	}
}
