// Package redis - кэш представлений товара в Redis.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Haleralex/storehub/internal/application/ports"
)

const keyPrefix = "storehub:product:"

// Commands - подмножество redis.Cmdable, используемое кэшем.
type Commands interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// ProductCache реализует ports.ProductCache.
type ProductCache struct {
	cmd    Commands
	logger *slog.Logger
}

var _ ports.ProductCache = (*ProductCache)(nil)

// NewClient parses url and checks connectivity.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return rdb, nil
}

// NewProductCache creates the cache.
func NewProductCache(cmd Commands, logger *slog.Logger) *ProductCache {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProductCache{cmd: cmd, logger: logger}
}

// Key returns the cache key of a product.
func Key(productID int64) string {
	return keyPrefix + strconv.FormatInt(productID, 10)
}

// Get returns the payload; a miss is not an error.
func (c *ProductCache) Get(ctx context.Context, productID int64) ([]byte, bool, error) {
	data, err := c.cmd.Get(ctx, Key(productID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read product %d from cache: %w", productID, err)
	}
	return data, true, nil
}

// Set stores payload with ttl.
func (c *ProductCache) Set(ctx context.Context, productID int64, payload []byte, ttl time.Duration) error {
	if err := c.cmd.Set(ctx, Key(productID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache product %d: %w", productID, err)
	}
	return nil
}

// Invalidate drops the entry.
func (c *ProductCache) Invalidate(ctx context.Context, productID int64) error {
	if err := c.cmd.Del(ctx, Key(productID)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate product %d: %w", productID, err)
	}
	c.logger.DebugContext(ctx, "product cache invalidated", "product_id", productID)
	return nil
}
