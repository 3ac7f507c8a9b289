package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"espectral-server/internal/models"
)

// Last narratives are re-derivable from the transcript, so the cache
// entries can expire.
const lastNarrativeTTL = 24 * time.Hour

// Compile-time check to ensure redisNarrativeCache implements NarrativeCache
var _ NarrativeCache = (*redisNarrativeCache)(nil)

type redisNarrativeCache struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisNarrativeCache creates a Redis-backed NarrativeCache.
func NewRedisNarrativeCache(client *redis.Client, logger *zap.Logger) NarrativeCache {
	return &redisNarrativeCache{
		client: client,
		logger: logger.Named("RedisNarrativeCache"),
	}
}

func narrativeKey(sessionID uuid.UUID) string {
	return fmt.Sprintf("last_narrative:%s", sessionID.String())
}

// SetLastNarrative stores the most recent narrative for a session.
func (c *redisNarrativeCache) SetLastNarrative(ctx context.Context, sessionID uuid.UUID, text string) error {
	key := narrativeKey(sessionID)
	if err := c.client.Set(ctx, key, text, lastNarrativeTTL).Err(); err != nil {
		c.logger.Error("Failed to cache last narrative", zap.Error(err), zap.String("sessionID", sessionID.String()))
		return fmt.Errorf("failed to cache last narrative: %w", err)
	}
	return nil
}

// GetLastNarrative returns the cached narrative for a session, or
// ErrSessionNotFound on a miss.
func (c *redisNarrativeCache) GetLastNarrative(ctx context.Context, sessionID uuid.UUID) (string, error) {
	text, err := c.client.Get(ctx, narrativeKey(sessionID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", models.ErrSessionNotFound
		}
		c.logger.Error("Failed to read last narrative from cache", zap.Error(err), zap.String("sessionID", sessionID.String()))
		return "", fmt.Errorf("failed to read last narrative from cache: %w", err)
	}
	return text, nil
}
