package insights

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "insights:child:"

// Cache stores generated insights per child.
type Cache interface {
	Get(ctx context.Context, childID uuid.UUID) (Insight, bool, error)
	Set(ctx context.Context, insight Insight, ttl time.Duration) error
	Delete(ctx context.Context, childID uuid.UUID) error
}

// RedisCache implements Cache on Redis.
type RedisCache struct {
	rdb redis.UniversalClient
}

var _ Cache = (*RedisCache)(nil)

// NewRedisCache wraps an existing client.
func NewRedisCache(rdb redis.UniversalClient) *RedisCache {
	return &RedisCache{rdb: rdb}
}

// NewRedisClient opens a client for redisURL.
func NewRedisClient(redisURL string, tlsInsecure bool) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	if tlsInsecure {
		if opt.TLSConfig == nil {
			opt.TLSConfig = &tls.Config{}
		}
		opt.TLSConfig.InsecureSkipVerify = true
	}
	return redis.NewClient(opt), nil
}

func cacheKey(childID uuid.UUID) string {
	return cacheKeyPrefix + childID.String()
}

// Get returns the cached insight, if any.
func (c *RedisCache) Get(ctx context.Context, childID uuid.UUID) (Insight, bool, error) {
	raw, err := c.rdb.Get(ctx, cacheKey(childID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Insight{}, false, nil
	}
	if err != nil {
		return Insight{}, false, fmt.Errorf("read insights cache: %w", err)
	}

	var insight Insight
	if err := json.Unmarshal(raw, &insight); err != nil {
		// Entries written by an older layout are treated as misses.
		return Insight{}, false, nil
	}
	return insight, true, nil
}

// Set stores an insight for ttl.
func (c *RedisCache) Set(ctx context.Context, insight Insight, ttl time.Duration) error {
	raw, err := json.Marshal(insight)
	if err != nil {
		return fmt.Errorf("encode insight: %w", err)
	}
	if err := c.rdb.Set(ctx, cacheKey(insight.ChildID), raw, ttl).Err(); err != nil {
		return fmt.Errorf("write insights cache: %w", err)
	}
	return nil
}

// Delete drops a child's cached insight.
func (c *RedisCache) Delete(ctx context.Context, childID uuid.UUID) error {
	if err := c.rdb.Del(ctx, cacheKey(childID)).Err(); err != nil {
		return fmt.Errorf("delete insights cache: %w", err)
	}
	return nil
}
