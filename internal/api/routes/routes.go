package routes

import (
	"time"

	"stream-service/internal/adapters/kafka"
	"stream-service/internal/api/handlers"
	"stream-service/internal/api/middleware"
	"stream-service/internal/auth"
	"stream-service/internal/config"
	"stream-service/internal/hub"
	"stream-service/internal/repositories/postgres"
	"stream-service/internal/services"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Router struct {
	engine       *gin.Engine
	wsHandler    *handlers.WSHandler
	authHandler  *handlers.AuthHandler
	userHandler  *handlers.UserHandler
	eventHandler *handlers.EventHandler
	rateLimitMW  *middleware.RateLimitMiddleware
	authMW       *middleware.AuthMiddleware
}

func NewRouter(
	h *hub.Hub,
	presence *services.PresenceService,
	producer *kafka.EventProducer,
	db *gorm.DB,
	cfg *config.Config,
) *Router {
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()

	// Add middlewares
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS())
	engine.Use(middleware.LogApi())

	// Initialize repositories
	userRepo := postgres.NewUserRepository(db)

	// Initialize services
	userService := services.NewUserService(userRepo, cfg.JWT.Secret, cfg.JWT.ExpirationTime)

	gate := auth.NewGate(cfg.JWT.Secret, userRepo)

	rateLimitMW := middleware.NewRateLimitMiddleware(presence)
	authMW := middleware.NewAuthMiddleware(gate)

	return &Router{
		engine:       engine,
		wsHandler:    handlers.NewWSHandler(h, gate, presence),
		authHandler:  handlers.NewAuthHandler(userService),
		userHandler:  handlers.NewUserHandler(userService, presence),
		eventHandler: handlers.NewEventHandler(h, producer),
		rateLimitMW:  rateLimitMW,
		authMW:       authMW,
	}
}

func (r *Router) SetupRoutes() {
	r.engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.engine.Group("/api/v1")

	// Stream endpoint; the handler authenticates the credential itself
	// so browser clients can pass the token in the query string.
	api.GET("/ws",
		r.rateLimitMW.WebSocketRateLimit(5, time.Minute), // 5 connections per minute per IP
		r.wsHandler.HandleWebSocket,
	)

	// Authenticated routes
	authed := api.Group("/")
	authed.Use(r.authMW.RequireAuth())
	{
		users := authed.Group("/users")
		users.Use(r.rateLimitMW.RateLimit(100, time.Minute)) // 100 requests per minute
		{
			users.GET("/profile", r.userHandler.GetProfile)
			users.GET("/online", r.userHandler.GetOnlineUsers)
		}

		quotes := authed.Group("/quotes")
		quotes.Use(r.rateLimitMW.RateLimit(200, time.Minute))
		{
			quotes.GET("/:symbol", r.userHandler.GetQuote)
		}

		// Ingest endpoints for backend services
		events := authed.Group("/events")
		events.Use(r.rateLimitMW.RateLimit(500, time.Minute))
		{
			events.POST("/trades", r.eventHandler.PublishTrade)
			events.POST("/notices", r.eventHandler.PublishNotice)
		}
	}

	// Public routes (no authentication required)
	public := api.Group("/")
	{
		authRoutes := public.Group("/auth")
		authRoutes.Use(r.rateLimitMW.RateLimitIP(50, time.Minute)) // 50 requests per minute per IP
		{
			authRoutes.POST("/register", r.authHandler.Register)
			authRoutes.POST("/login", r.authHandler.Login)
		}
	}
}

func (r *Router) GetEngine() *gin.Engine {
	return r.engine
}
