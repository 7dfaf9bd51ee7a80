package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"stream-service/internal/database"
	"stream-service/internal/hub"
	"log/slog"

	"github.com/redis/go-redis/v9"
)

type PresenceService struct {
	client *database.RedisClient
}

func NewPresenceService(client *database.RedisClient) *PresenceService {
	return &PresenceService{
		client: client,
	}
}

// =============================================================================
// User Presence Management
// =============================================================================

func (r *PresenceService) SetUserOnline(ctx context.Context, userID uint) error {
	pipe := r.client.GetClient().Pipeline()

	// Add to online users set
	pipe.SAdd(ctx, "online_users", userID)

	// Set user status hash
	pipe.HSet(ctx, fmt.Sprintf("user:%d:status", userID), map[string]interface{}{
		"status":     "online",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})

	// Set expiration for status
	pipe.Expire(ctx, fmt.Sprintf("user:%d:status", userID), 5*time.Minute)

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("Failed to set user online", "userID", userID, "error", err)
		return err
	}

	slog.Debug("User set to online", "userID", userID)
	return nil
}

func (r *PresenceService) SetUserOffline(ctx context.Context, userID uint) error {
	pipe := r.client.GetClient().Pipeline()

	// Remove from online users set
	pipe.SRem(ctx, "online_users", userID)

	// Update user status
	pipe.HSet(ctx, fmt.Sprintf("user:%d:status", userID), map[string]interface{}{
		"status":     "offline",
		"last_seen":  time.Now().Unix(),
		"updated_at": time.Now().Unix(),
	})

	// Set longer expiration for offline status
	pipe.Expire(ctx, fmt.Sprintf("user:%d:status", userID), 24*time.Hour)

	_, err := pipe.Exec(ctx)
	if err != nil {
		slog.Error("Failed to set user offline", "userID", userID, "error", err)
		return err
	}

	slog.Debug("User set to offline", "userID", userID)
	return nil
}

func (r *PresenceService) IsUserOnline(ctx context.Context, userID uint) (bool, error) {
	return r.client.GetClient().SIsMember(ctx, "online_users", fmt.Sprintf("%d", userID)).Result()
}

func (r *PresenceService) GetOnlineUsers(ctx context.Context) ([]string, error) {
	return r.client.GetClient().SMembers(ctx, "online_users").Result()
}

// =============================================================================
// Quote Cache
// =============================================================================

// CacheQuote stores the latest update for a symbol so a freshly joined
// subscriber can be primed without waiting for the next tick.
func (r *PresenceService) CacheQuote(ctx context.Context, update hub.MarketUpdate) error {
	data, err := json.Marshal(update)
	if err != nil {
		return fmt.Errorf("failed to marshal quote: %w", err)
	}

	return r.client.GetClient().Set(ctx, fmt.Sprintf("quote:%s", update.Symbol), data, 10*time.Minute).Err()
}

func (r *PresenceService) LatestQuote(ctx context.Context, symbol string) (*hub.MarketUpdate, error) {
	data, err := r.client.GetClient().Get(ctx, fmt.Sprintf("quote:%s", symbol)).Result()
	if err != nil {
		return nil, err
	}

	var update hub.MarketUpdate
	if err := json.Unmarshal([]byte(data), &update); err != nil {
		return nil, fmt.Errorf("failed to unmarshal quote: %w", err)
	}
	return &update, nil
}

// =============================================================================
// Rate Limiting
// =============================================================================

func (r *PresenceService) CheckRateLimit(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window).Unix()

	pipe := r.client.GetClient().Pipeline()

	// Remove old entries
	pipe.ZRemRangeByScore(ctx, key, "0", fmt.Sprintf("%d", windowStart))

	// Count current entries
	pipe.ZCard(ctx, key)

	// Add current request
	pipe.ZAdd(ctx, key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()})

	// Set expiration
	pipe.Expire(ctx, key, window)

	results, err := pipe.Exec(ctx)
	if err != nil {
		return false, err
	}

	// Get count result
	count := results[1].(*redis.IntCmd).Val()

	return count < int64(limit), nil
}
