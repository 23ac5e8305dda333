package cache

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/fixitnow/maintenance-backend/internal/models"
)

const staffKeyPrefix = "staff:eligible:"

// RedisCache is a StaffListCache backed by Redis, so multiple server
// instances share one eligibility cache and one invalidation.
type RedisCache struct {
	client *redis.Client
	ctx    context.Context
	logger *logrus.Logger
}

// NewRedisCache creates a Redis-backed staff list cache
func NewRedisCache(client *redis.Client, logger *logrus.Logger) *RedisCache {
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
		logger: logger,
	}
}

// Get returns the cached list for a category. Any Redis failure is a miss.
func (c *RedisCache) Get(category models.Category) ([]*models.User, bool) {
	payload, err := c.client.Get(c.ctx, staffKeyPrefix+string(category)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false
	}
	if err != nil {
		c.logger.WithError(err).Debug("staff cache read failed, treating as miss")
		return nil, false
	}

	var staff []*models.User
	if err := json.Unmarshal([]byte(payload), &staff); err != nil {
		c.logger.WithError(err).Debug("staff cache entry corrupt, treating as miss")
		return nil, false
	}

	return staff, true
}

// Set stores the list for a category. Write failures are logged and dropped.
func (c *RedisCache) Set(category models.Category, staff []*models.User) {
	payload, err := json.Marshal(staff)
	if err != nil {
		c.logger.WithError(err).Debug("failed to marshal staff cache entry")
		return
	}

	if err := c.client.Set(c.ctx, staffKeyPrefix+string(category), payload, 0).Err(); err != nil {
		c.logger.WithError(err).Debug("staff cache write failed")
	}
}

// Invalidate drops the cached list for a category
func (c *RedisCache) Invalidate(category models.Category) {
	if err := c.client.Del(c.ctx, staffKeyPrefix+string(category)).Err(); err != nil {
		c.logger.WithError(err).Warn("staff cache invalidation failed")
	}
}
