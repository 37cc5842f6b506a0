package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"

	"saham-assistant/internal/infrastructure/config"
	"saham-assistant/internal/infrastructure/logger"
)

// RedisFactory owns the Redis client and hands out cache services.
type RedisFactory struct {
	client *goredis.Client
	logger logger.Logger
}

// NewRedisFactory connects to Redis and verifies the connection.
func NewRedisFactory(cfg *config.CacheConfig, log logger.Logger) (*RedisFactory, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisFactory{client: client, logger: log}, nil
}

// GetCacheService returns the JSON cache service.
func (f *RedisFactory) GetCacheService() *CacheService {
	return &CacheService{client: f.client, logger: f.logger}
}

// HealthCheck pings Redis.
func (f *RedisFactory) HealthCheck(ctx context.Context) error {
	return f.client.Ping(ctx).Err()
}

// Close releases the client.
func (f *RedisFactory) Close() error {
	return f.client.Close()
}

// CacheService is a JSON-value cache on Redis. Errors on the write path are
// logged and swallowed: a dead cache must never fail a request.
type CacheService struct {
	client *goredis.Client
	logger logger.Logger
}

// ErrCacheMiss is returned by Get when the key is absent.
var ErrCacheMiss = goredis.Nil

// Get loads the key into dest. Returns ErrCacheMiss when absent.
func (s *CacheService) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("failed to unmarshal cached value for %s: %w", key, err)
	}

	return nil
}

// Set stores the value under the key with a TTL.
func (s *CacheService) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	data, err := json.Marshal(value)
	if err != nil {
		s.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Failed to marshal value for cache")
		return
	}

	if err := s.client.Set(ctx, key, data, ttl).Err(); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"key":   key,
			"error": err.Error(),
		}).Warn("Failed to write cache key")
	}
}

// Delete removes the keys.
func (s *CacheService) Delete(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		return
	}
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		s.logger.WithFields(map[string]interface{}{
			"keys":  keys,
			"error": err.Error(),
		}).Warn("Failed to delete cache keys")
	}
}
