// Package cache is a small string cache in front of slow collaborators
// (FIS event documents, identity display names).
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/config"
	"github.com/typeofTommy/fis-inscriptions-web-sub000/internal/metrics"

	"github.com/redis/go-redis/v9"
)

type Cache interface {
	// Get returns ok=false on a miss.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisCache redis 实现
type RedisCache struct {
	client *redis.Client
	prefix string
}

// NewRedis connects and pings the server.
func NewRedis(ctx context.Context, cfg config.RedisConfig) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 20,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", cfg.Addr, err)
	}
	return &RedisCache{client: client, prefix: "fis:"}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	v, err := c.client.Get(ctx, c.prefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, c.prefix+key, value, ttl).Err()
}

func (c *RedisCache) Close() error { return c.client.Close() }

// Noop never stores anything. Used when redis is not configured.
type Noop struct{}

func (Noop) Get(context.Context, string) (string, bool, error) { return "", false, nil }
func (Noop) Set(context.Context, string, string, time.Duration) error { return nil }

// GetJSON decodes a cached JSON value into dst. A decode failure counts as a miss.
func GetJSON(ctx context.Context, c Cache, namespace, key string, dst any) bool {
	raw, ok, err := c.Get(ctx, namespace+":"+key)
	if err != nil || !ok || json.Unmarshal([]byte(raw), dst) != nil {
		metrics.CacheLookupsTotal.WithLabelValues(namespace, "miss").Inc()
		return false
	}
	metrics.CacheLookupsTotal.WithLabelValues(namespace, "hit").Inc()
	return true
}

// SetJSON stores v as JSON.
func SetJSON(ctx context.Context, c Cache, namespace, key string, v any, ttl time.Duration) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Set(ctx, namespace+":"+key, string(raw), ttl)
}
