package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const versionKey = "courses:list:version"

// CourseListCache stores serialized course list pages in Redis. It is a
// read-through cache: every failure degrades silently to the database.
// Invalidation bumps a version counter, which orphans all old page keys
// until they expire.
type CourseListCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// NewCourseListCache builds the cache. A nil client disables caching.
func NewCourseListCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *CourseListCache {
	return &CourseListCache{client: client, ttl: ttl, logger: logger}
}

// Get returns the cached payload for a list query, if present.
func (c *CourseListCache) Get(ctx context.Context, page, limit int, search string) ([]byte, bool) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return nil, false
	}
	key, err := c.pageKey(ctx, page, limit, search)
	if err != nil {
		return nil, false
	}
	payload, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			c.logger.Debug("course list cache read failed", zap.Error(err))
		}
		return nil, false
	}
	return payload, true
}

// Set stores the payload for a list query.
func (c *CourseListCache) Set(ctx context.Context, page, limit int, search string, payload []byte) {
	if c == nil || c.client == nil || c.ttl <= 0 {
		return
	}
	key, err := c.pageKey(ctx, page, limit, search)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Debug("course list cache write failed", zap.Error(err))
	}
}

// Invalidate drops every cached page by bumping the version counter.
func (c *CourseListCache) Invalidate(ctx context.Context) {
	if c == nil || c.client == nil {
		return
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		c.logger.Debug("course list cache invalidation failed", zap.Error(err))
	}
}

func (c *CourseListCache) pageKey(ctx context.Context, page, limit int, search string) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && err != redis.Nil {
		c.logger.Debug("course list cache version read failed", zap.Error(err))
		return "", err
	}
	return fmt.Sprintf("courses:list:v%d:p%d:l%d:q%s", version, page, limit, search), nil
}
