package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"stream-service/internal/auth"
	"stream-service/internal/hub"
	"stream-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browsers cannot set custom headers on WebSocket dials, so the
	// token travels in the query string and CORS is enforced by the
	// HTTP middleware instead of the origin check here.
	CheckOrigin: func(r *http.Request) bool { return true },
}

type WSHandler struct {
	hub      *hub.Hub
	gate     *auth.Gate
	presence *services.PresenceService
}

func NewWSHandler(h *hub.Hub, gate *auth.Gate, presence *services.PresenceService) *WSHandler {
	return &WSHandler{hub: h, gate: gate, presence: presence}
}

// HandleWebSocket godoc
// @Summary WebSocket stream
// @Description Establish a WebSocket connection for real-time market data and platform events
// @Tags websocket
// @Param token query string false "JWT bearer token (alternative to Authorization header)"
// @Success 101 "Switching Protocols - WebSocket connection established"
// @Failure 401 {object} map[string]interface{} "Unauthorized - missing or invalid credential"
// @Router /ws [get]
func (h *WSHandler) HandleWebSocket(c *gin.Context) {
	credential := auth.ExtractCredential(c.Query("token"), c.GetHeader("Authorization"))
	if credential == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "credential is required"})
		return
	}

	userID, err := h.gate.Authenticate(c.Request.Context(), credential)
	if err != nil {
		slog.Warn("WebSocket authentication failed", "error", err)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credential"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.Error("WebSocket upgrade failed", "userID", userID, "error", err)
		return
	}

	client, err := hub.ServeWS(h.hub, conn, userID, h.markOffline)
	if err != nil {
		slog.Error("Failed to attach client", "userID", userID, "error", err)
		conn.Close()
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.presence.SetUserOnline(ctx, userID); err != nil {
		slog.Warn("Failed to record presence", "userID", userID, "error", err)
	}

	slog.Info("Client connected", "userID", userID, "connID", client.ID())
}

func (h *WSHandler) markOffline(userID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := h.presence.SetUserOffline(ctx, userID); err != nil {
		slog.Warn("Failed to clear presence", "userID", userID, "error", err)
	}
}
