package handlers

import (
	"net/http"
	"strings"

	"stream-service/internal/models"
	"stream-service/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type UserHandler struct {
	userService *services.UserService
	presence    *services.PresenceService
}

func NewUserHandler(userService *services.UserService, presence *services.PresenceService) *UserHandler {
	return &UserHandler{userService: userService, presence: presence}
}

// GetProfile godoc
// @Summary Get current user profile
// @Description Return the profile of the authenticated user
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse "User profile"
// @Failure 401 {object} models.ErrorResponse "Unauthorized"
// @Failure 404 {object} models.ErrorResponse "User not found"
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Code:    http.StatusUnauthorized,
			Message: "Unauthorized",
		})
		return
	}

	profile, err := h.userService.GetProfile(userID.(uint))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Code:    http.StatusNotFound,
			Message: "User not found",
		})
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetOnlineUsers godoc
// @Summary List online users
// @Description Return the ids of users with an active stream connection
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]interface{} "Online user ids"
// @Router /users/online [get]
func (h *UserHandler) GetOnlineUsers(c *gin.Context) {
	users, err := h.presence.GetOnlineUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list online users",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users, "count": len(users)})
}

// GetQuote godoc
// @Summary Latest cached quote
// @Description Return the most recent market update for a symbol
// @Tags quotes
// @Produce json
// @Security BearerAuth
// @Param symbol path string true "Ticker symbol"
// @Success 200 {object} hub.MarketUpdate "Latest quote"
// @Failure 404 {object} models.ErrorResponse "No quote cached for symbol"
// @Router /quotes/{symbol} [get]
func (h *UserHandler) GetQuote(c *gin.Context) {
	symbol := strings.ToUpper(strings.TrimSpace(c.Param("symbol")))
	if symbol == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:    http.StatusBadRequest,
			Message: "Symbol is required",
		})
		return
	}

	quote, err := h.presence.LatestQuote(c.Request.Context(), symbol)
	if err != nil {
		if err == redis.Nil {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Code:    http.StatusNotFound,
				Message: "No quote cached for symbol",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Code:    http.StatusInternalServerError,
			Message: "Failed to load quote",
		})
		return
	}

	c.JSON(http.StatusOK, quote)
}
