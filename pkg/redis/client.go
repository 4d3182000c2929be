// Package redis wraps the go-redis client used for sessions and locks.
package redis

import (
	"context"
	"fmt"

	redis "github.com/redis/go-redis/v9"

	"github.com/addis-listings/dalal-bot/pkg/config"
)

// Client wraps the go-redis client so callers depend on one constructor.
type Client struct {
	*redis.Client
}

// New creates a Redis client configured with cfg and verifies the
// connection with Ping.
func New(ctx context.Context, cfg config.RedisConfig) (*Client, error) {
	opts := &redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,
		MaxRetries:      cfg.MaxRetries,
	}

	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &Client{rdb}, nil
}

// Close shuts down the Redis client.
func (c *Client) Close() error {
	return c.Client.Close()
}
