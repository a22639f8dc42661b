// Package cache keeps read-mostly storefront listings in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
)

const keyPrefix = "catalog:"

// Well-known keys.
const (
	KeyBrands     = "brands"
	KeyCategories = "categories"
	KeyProducts   = "products"
)

// BrandProductsKey is the key of the storefront listing for one brand.
func BrandProductsKey(brand string) string {
	return "products:brand:" + brand
}

// CatalogCache caches storefront reads. A cache without a client is a no-op,
// so the service keeps working when Redis is unavailable.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// New wraps an existing client. client may be nil.
func New(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
	}
}

// Connect dials redisURL and pings it. On failure it logs a warning and
// returns a disabled cache.
func Connect(ctx context.Context, redisURL string, ttl time.Duration) *CatalogCache {
	if redisURL == "" {
		return New(nil, ttl)
	}
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		log.WithError(err).Warn("Invalid REDIS_URL, catalog cache disabled")
		return New(nil, ttl)
	}
	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.WithError(err).Warn("Redis unreachable, catalog cache disabled")
		client.Close()
		return New(nil, ttl)
	}
	log.Info("Connected to Redis catalog cache")
	return New(client, ttl)
}

// Enabled reports whether a Redis client is attached.
func (c *CatalogCache) Enabled() bool {
	return c != nil && c.client != nil
}

// Get decodes the cached value of key into dest. It reports false on a miss.
func (c *CatalogCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	if !c.Enabled() {
		return false, nil
	}
	data, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read cache key %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to decode cache key %s: %w", key, err)
	}
	return true, nil
}

// Set stores value under key for the configured TTL.
func (c *CatalogCache) Set(ctx context.Context, key string, value interface{}) error {
	if !c.Enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode cache key %s: %w", key, err)
	}
	return c.client.Set(ctx, keyPrefix+key, data, c.ttl).Err()
}

// Invalidate drops every catalog key.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()

	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan catalog keys: %w", err)
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

// Ping checks the connection. A disabled cache is always healthy.
func (c *CatalogCache) Ping(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *CatalogCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}
