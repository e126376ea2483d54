package cache

import (
	"context"
	"fmt"
	"time"

	"usina-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// Cache keys
const (
	ActiveGoalsKey      = "dist:goals:active"
	FranchisePhonesFmt  = "dist:phones:%d"
	activeGoalsTTL      = 30 * time.Second
	franchisePhonesTTL  = 30 * time.Second
	webhookDedupeFmt    = "webhook:event:%s"
	webhookDedupeTTL    = 24 * time.Hour
)

var client *redis.Client

// Init initializes the Redis connection. The cache is optional: on failure the
// client stays nil and every helper degrades to a miss.
func Init(cfg *config.Config) error {
	client = redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		client = nil
		return err
	}
	return nil
}

// GetClient returns the Redis client (nil when the cache is unavailable)
func GetClient() *redis.Client {
	return client
}

// GetActiveGoals returns the cached active-goal list JSON if present
func GetActiveGoals(ctx context.Context) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, ActiveGoalsKey).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetActiveGoals caches the active-goal list JSON
func SetActiveGoals(ctx context.Context, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, ActiveGoalsKey, data, activeGoalsTTL)
}

// InvalidateActiveGoals drops the cached goal list (call on every goal write)
func InvalidateActiveGoals(ctx context.Context) {
	if client == nil {
		return
	}
	client.Del(ctx, ActiveGoalsKey)
}

// GetFranchisePhones returns the cached phone list JSON for a franchise
func GetFranchisePhones(ctx context.Context, franchiseID int) ([]byte, bool) {
	if client == nil {
		return nil, false
	}
	data, err := client.Get(ctx, fmt.Sprintf(FranchisePhonesFmt, franchiseID)).Bytes()
	if err != nil {
		return nil, false
	}
	return data, true
}

// SetFranchisePhones caches the phone list JSON for a franchise
func SetFranchisePhones(ctx context.Context, franchiseID int, data []byte) {
	if client == nil {
		return
	}
	client.Set(ctx, fmt.Sprintf(FranchisePhonesFmt, franchiseID), data, franchisePhonesTTL)
}

// InvalidateFranchisePhones drops the cached phone list for a franchise
func InvalidateFranchisePhones(ctx context.Context, franchiseID int) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(FranchisePhonesFmt, franchiseID))
}

// MarkWebhookEvent is a fast-path dedupe check: returns true if this event id
// was not seen before. The webhook_events table remains the authoritative
// dedupe record; this only saves a round-trip for hot duplicates.
func MarkWebhookEvent(ctx context.Context, eventID string) bool {
	if client == nil {
		return true
	}
	ok, err := client.SetNX(ctx, fmt.Sprintf(webhookDedupeFmt, eventID), 1, webhookDedupeTTL).Result()
	if err != nil {
		return true
	}
	return ok
}

// UnmarkWebhookEvent drops the fast-path dedupe key so a retry of a failed
// delivery is not rejected
func UnmarkWebhookEvent(ctx context.Context, eventID string) {
	if client == nil {
		return
	}
	client.Del(ctx, fmt.Sprintf(webhookDedupeFmt, eventID))
}
