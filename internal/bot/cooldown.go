package bot

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Cooldown rate-limits passive issue mentions per channel so the bot does not
// repeat itself on every mention of the same key.
type Cooldown interface {
	Allow(ctx context.Context, channel, issueKey string) bool
}

type redisCooldown struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedisCooldown builds a SETNX+TTL based cooldown. A zero TTL disables
// suppression; Redis outages fail open so mentions are still answered.
func NewRedisCooldown(client *redis.Client, ttl time.Duration, logger *zap.Logger) Cooldown {
	return &redisCooldown{client: client, ttl: ttl, logger: logger}
}

func (c *redisCooldown) Allow(ctx context.Context, channel, issueKey string) bool {
	if c.client == nil || c.ttl <= 0 {
		return true
	}
	key := "snarf:" + channel + ":" + issueKey
	ok, err := c.client.SetNX(ctx, key, 1, c.ttl).Result()
	if err != nil {
		c.logger.Warn("cooldown check failed", zap.String("key", key), zap.Error(err))
		return true
	}
	return ok
}
