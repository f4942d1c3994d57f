// Package cache stores computed correlation matrices in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/san-kum/corrlab/internal/market"
	"github.com/san-kum/corrlab/internal/service"
)

var _ service.MatrixCache = (*RedisCache)(nil)

const DefaultTTL = 5 * time.Minute

type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

func NewRedisCache(client *redis.Client, ttl time.Duration, logger *slog.Logger) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &RedisCache{client: client, ttl: ttl, logger: logger}
}

// Connect creates a client for addr and pings it.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, DB: db})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return client, nil
}

// Ping reports "up" or "down: <reason>".
func (c *RedisCache) Ping(ctx context.Context) string {
	if err := c.client.Ping(ctx).Err(); err != nil {
		return fmt.Sprintf("down: %v", err)
	}
	return "up"
}

func (c *RedisCache) GetMatrix(ctx context.Context, key string) (*market.CorrelationMatrix, bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var m market.CorrelationMatrix
	if err := json.Unmarshal(data, &m); err != nil {
		c.logger.Warn("dropping undecodable cache entry", "key", key, "error", err)
		c.client.Del(ctx, key)
		return nil, false, nil
	}
	return &m, true, nil
}

func (c *RedisCache) SetMatrix(ctx context.Context, key string, m *market.CorrelationMatrix) error {
	data, err := json.Marshal(m)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, data, c.ttl).Err()
}
