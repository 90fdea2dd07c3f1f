package summary

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/at-ishikawa/qasummary/internal/config"
	"github.com/at-ishikawa/qasummary/internal/inference"
)

const cacheKeyPrefix = "qasummary:summary:"

// Cache keeps model responses for identical requests.
type Cache interface {
	Get(ctx context.Context, requestHash string) (*inference.SummarizeInterviewResponse, error)
	Set(ctx context.Context, requestHash string, response inference.SummarizeInterviewResponse) error
}

// redisClient is the subset of redis.Cmdable used by RedisCache
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, expiration time.Duration) *redis.StatusCmd
}

// RedisCache implements Cache with Redis string keys and a TTL.
type RedisCache struct {
	client redisClient
	ttl    time.Duration
}

// NewRedisCache creates a cache on an existing client. A zero ttl keeps entries forever.
func NewRedisCache(client redisClient, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

// OpenRedis connects to Redis and checks the connection.
func OpenRedis(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("client.Ping(%s) > %w", cfg.Addr, err)
	}
	return client, nil
}

func cacheKey(requestHash string) string {
	return cacheKeyPrefix + requestHash
}

// Get returns the cached response, or nil on a miss.
func (c *RedisCache) Get(ctx context.Context, requestHash string) (*inference.SummarizeInterviewResponse, error) {
	value, err := c.client.Get(ctx, cacheKey(requestHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("client.Get(%s) > %w", cacheKey(requestHash), err)
	}

	var response inference.SummarizeInterviewResponse
	if err := json.Unmarshal(value, &response); err != nil {
		return nil, fmt.Errorf("json.Unmarshal(%s) > %w", cacheKey(requestHash), err)
	}
	return &response, nil
}

// Set stores the response under the request hash.
func (c *RedisCache) Set(ctx context.Context, requestHash string, response inference.SummarizeInterviewResponse) error {
	value, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("json.Marshal() > %w", err)
	}
	if err := c.client.Set(ctx, cacheKey(requestHash), value, c.ttl).Err(); err != nil {
		return fmt.Errorf("client.Set(%s) > %w", cacheKey(requestHash), err)
	}
	return nil
}
