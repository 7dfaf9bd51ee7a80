package main

// @title           Stream Service API
// @version         1.0
// @description     Real-time market data and platform event streaming for the social trading platform
// @host            localhost:8080
// @BasePath        /api/v1
// @schemes         http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stream-service/internal/access"
	"stream-service/internal/adapters/kafka"
	"stream-service/internal/api/routes"
	"stream-service/internal/config"
	"stream-service/internal/database"
	"stream-service/internal/feed"
	"stream-service/internal/hub"
	"stream-service/internal/repositories/postgres"
	"stream-service/internal/services"
)

// ticker is the lifecycle shared by both tick pipelines.
type ticker interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	slog.Info("Starting stream server")

	// Initialize Redis connection
	redisClient, err := database.NewRedisConnection(&cfg.Redis)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()

	// Initialize PostgreSQL connection
	db, err := database.NewPostgresConnection(cfg.Database.URI)
	if err != nil {
		slog.Error("Failed to connect to PostgreSQL", "error", err)
		os.Exit(1)
	}

	// Initialize services
	presence := services.NewPresenceService(redisClient)
	portfolioRepo := postgres.NewPortfolioRepository(db)

	// Initialize the distribution hub
	h := hub.New(access.NewAuthorizer(portfolioRepo), slog.Default())

	// Outbound event mirroring; the stream stays usable without it
	var producer *kafka.EventProducer
	if sp, err := kafka.InitProducer(cfg.Kafka.Brokers); err != nil {
		slog.Warn("Kafka producer unavailable, event mirroring disabled", "error", err)
	} else {
		producer = kafka.NewEventProducer(sp, cfg.Kafka.EventTopic)
		defer producer.Close()
	}

	// Tick pipeline: a real broker feed or the synthetic walker
	pub := feed.NewCachingPublisher(h, presence, slog.Default())
	var tickPipeline ticker
	switch cfg.Feed.SourceMode {
	case "kafka":
		reader := feed.NewTickReader(cfg.Kafka.Brokers, cfg.Kafka.TickTopic, cfg.Kafka.TickGroupID)
		tickPipeline = feed.NewKafkaIngestor(reader, pub, slog.Default())
	default:
		basePrices := make(map[string]float64, len(cfg.Feed.Symbols))
		for _, sym := range cfg.Feed.Symbols {
			basePrices[sym] = 100
		}
		source := feed.NewSyntheticSource(basePrices, nil, nil)
		tickPipeline = feed.NewDriver(feed.Config{
			Interval: cfg.Feed.TickInterval,
			Symbols:  cfg.Feed.Symbols,
		}, source, pub, slog.Default())
	}

	if err := tickPipeline.Start(context.Background()); err != nil {
		slog.Error("Failed to start tick pipeline", "error", err)
		os.Exit(1)
	}

	// Initialize router with all dependencies
	router := routes.NewRouter(h, presence, producer, db, cfg)
	router.SetupRoutes()

	// Create HTTP server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      router.GetEngine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in a goroutine
	go func() {
		slog.Info("Server starting", "address", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := tickPipeline.Stop(ctx); err != nil {
		slog.Error("Tick pipeline forced to stop", "error", err)
	}

	if err := server.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
	}

	slog.Info("Server stopped")
}
