package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/julianstephens/slotbook/internal/constants"
	"github.com/julianstephens/slotbook/internal/models"
)

type RedisCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	prefix string
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = constants.DefaultCacheTTL
	}
	return &RedisCache{rdb: rdb, ttl: ttl, prefix: constants.CacheKeyPrefix}
}

// DialRedisCache connects to addr and verifies the server answers PING.
func DialRedisCache(ctx context.Context, addr string, ttl time.Duration) (*RedisCache, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}
	return NewRedisCache(rdb, ttl), nil
}

func (c *RedisCache) key(id string) string {
	return c.prefix + id
}

func (c *RedisCache) Get(ctx context.Context, id string) (models.CalendarConfig, bool, error) {
	data, err := c.rdb.Get(ctx, c.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.CalendarConfig{}, false, nil
	}
	if err != nil {
		return models.CalendarConfig{}, false, err
	}

	var cal models.CalendarConfig
	if err := json.Unmarshal(data, &cal); err != nil {
		return models.CalendarConfig{}, false, fmt.Errorf("corrupt cache entry %s: %w", c.key(id), err)
	}
	cal.Normalize()
	return cal, true, nil
}

func (c *RedisCache) Set(ctx context.Context, cal models.CalendarConfig) error {
	data, err := json.Marshal(cal)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, c.key(cal.ID), data, c.ttl).Err()
}

func (c *RedisCache) Delete(ctx context.Context, id string) error {
	return c.rdb.Del(ctx, c.key(id)).Err()
}

func (c *RedisCache) Close() error {
	return c.rdb.Close()
}
