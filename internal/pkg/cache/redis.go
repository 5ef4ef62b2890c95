package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/yigit/gradebook/internal/pkg/metrics"
)

// RedisOptions configures the shared Redis client
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	PoolSize int
}

// NewRedisClient connects and pings Redis
func NewRedisClient(opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
		PoolSize: opts.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return rdb, nil
}

// RedisCache keeps entries under a generation number; Invalidate bumps the
// generation so older entries are never read again and expire by TTL.
type RedisCache struct {
	client  redis.UniversalClient
	prefix  string
	ttl     time.Duration
	metrics *metrics.Metrics
}

// NewRedisCache creates a cache namespaced by prefix
func NewRedisCache(client redis.UniversalClient, prefix string, ttl time.Duration, m *metrics.Metrics) *RedisCache {
	return &RedisCache{client: client, prefix: prefix, ttl: ttl, metrics: m}
}

func (c *RedisCache) generationKey() string {
	return c.prefix + ":gen"
}

// Generation implements Cache
func (c *RedisCache) Generation(ctx context.Context) (int64, error) {
	gen, err := c.client.Get(ctx, c.generationKey()).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("cache generation lookup failed: %w", err)
	}
	return gen, nil
}

func (c *RedisCache) key(gen int64, key string) string {
	return c.prefix + ":" + strconv.FormatInt(gen, 10) + ":" + key
}

// Get implements Cache
func (c *RedisCache) Get(ctx context.Context, gen int64, key string, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, c.key(gen, key)).Bytes()
	if errors.Is(err, redis.Nil) {
		c.metrics.CacheLookup(false)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s failed: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		c.metrics.CacheLookup(false)
		return false, nil
	}
	c.metrics.CacheLookup(true)
	return true, nil
}

// Set implements Cache
func (c *RedisCache) Set(ctx context.Context, gen int64, key string, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("cache encode %s failed: %w", key, err)
	}
	return c.client.Set(ctx, c.key(gen, key), data, c.ttl).Err()
}

// Invalidate implements Cache
func (c *RedisCache) Invalidate(ctx context.Context) error {
	return c.client.Incr(ctx, c.generationKey()).Err()
}
