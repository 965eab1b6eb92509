package redisclient

import (
	"context"
	_ "embed"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

//go:embed scripts/decrement_stock.lua
var decrementStockScript string

//go:embed scripts/increment_stock.lua
var incrementStockScript string

type Client struct {
	rdb             *redis.Client
	decrementScript *redis.Script
	incrementScript *redis.Script
}

// NewClient creates a new Redis client with Lua scripts loaded
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}

	return &Client{
		rdb:             rdb,
		decrementScript: redis.NewScript(decrementStockScript),
		incrementScript: redis.NewScript(incrementStockScript),
	}, nil
}

// GetClient returns the underlying Redis client
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

func stockKey(productID string) string {
	return fmt.Sprintf("stock:%s", productID)
}

// DecrementStock atomically takes one unit of stock using a Lua script.
// Returns the remaining count and true on success, or false when the
// product is drained or unknown to the cache.
func (c *Client) DecrementStock(ctx context.Context, productID string) (int, bool, error) {
	result, err := c.decrementScript.Run(ctx, c.rdb, []string{stockKey(productID)}).Result()
	if err != nil {
		return 0, false, fmt.Errorf("decrement stock script failed: %w", err)
	}

	remaining, ok := result.(int64)
	if !ok {
		return 0, false, fmt.Errorf("unexpected script result type")
	}
	if remaining < 0 {
		return 0, false, nil
	}

	return int(remaining), true, nil
}

// IncrementStock atomically restores one unit of stock (compensation).
func (c *Client) IncrementStock(ctx context.Context, productID string) error {
	_, err := c.incrementScript.Run(ctx, c.rdb, []string{stockKey(productID)}).Result()
	if err != nil {
		return fmt.Errorf("increment stock script failed: %w", err)
	}
	return nil
}

// InitStock initializes a product's stock count in Redis
func (c *Client) InitStock(ctx context.Context, productID string, count int) error {
	return c.rdb.Set(ctx, stockKey(productID), count, 0).Err()
}

// DeleteStock removes a product's stock key after a hard delete
func (c *Client) DeleteStock(ctx context.Context, productID string) error {
	return c.rdb.Del(ctx, stockKey(productID)).Err()
}

// GetStock retrieves the cached stock count for a product
func (c *Client) GetStock(ctx context.Context, productID string) (int, error) {
	result, err := c.rdb.Get(ctx, stockKey(productID)).Result()
	if err == redis.Nil {
		return 0, fmt.Errorf("stock not found for product %s", productID)
	}
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(result)
	if err != nil {
		return 0, fmt.Errorf("corrupt stock count for product %s: %w", productID, err)
	}
	return count, nil
}

// AcquireLock acquires a distributed lock
func (c *Client) AcquireLock(ctx context.Context, lockKey string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, fmt.Sprintf("lock:%s", lockKey), "1", ttl).Result()
}

// ReleaseLock releases a distributed lock
func (c *Client) ReleaseLock(ctx context.Context, lockKey string) error {
	return c.rdb.Del(ctx, fmt.Sprintf("lock:%s", lockKey)).Err()
}
