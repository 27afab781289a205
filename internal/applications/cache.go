package applications

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/devops863/kaizen-sourcing/internal/common/logger"
	"github.com/devops863/kaizen-sourcing/internal/models"

	"github.com/redis/go-redis/v9"
)

// CachedStore keeps the result of List in Redis. Every successful Create drops
// the cached list. Redis failures degrade to the underlying store.
type CachedStore struct {
	next   Store
	redis  redis.Cmdable
	ttl    time.Duration
	key    string
	logger logger.Logger
}

func NewCachedStore(next Store, rdb redis.Cmdable, prefix string, ttl time.Duration, log logger.Logger) *CachedStore {
	return &CachedStore{
		next:   next,
		redis:  rdb,
		ttl:    ttl,
		key:    prefix + ":list",
		logger: log.WithFields(map[string]interface{}{"component": "application-cache"}),
	}
}

func (c *CachedStore) Create(ctx context.Context, in *models.InsertApplication) (*models.Application, error) {
	app, err := c.next.Create(ctx, in)
	if err != nil {
		return nil, err
	}

	if err := c.redis.Del(ctx, c.key).Err(); err != nil {
		c.logger.Warn("cache invalidation failed", map[string]interface{}{
			"error":         err,
			"applicationId": app.ID,
		})
	}

	return app, nil
}

func (c *CachedStore) List(ctx context.Context) ([]models.Application, error) {
	val, err := c.redis.Get(ctx, c.key).Result()
	switch {
	case err == nil:
		var cached []models.Application
		if jsonErr := json.Unmarshal([]byte(val), &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("discarding unreadable cache entry", map[string]interface{}{"key": c.key})
	case errors.Is(err, redis.Nil):
	default:
		c.logger.Warn("cache read failed", map[string]interface{}{"error": err})
	}

	apps, err := c.next.List(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(apps); err == nil {
		if err := c.redis.Set(ctx, c.key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("cache write failed", map[string]interface{}{"error": err})
		}
	}

	return apps, nil
}
