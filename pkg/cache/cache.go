// Package cache wraps a Redis connection used for short-lived JSON values.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/PancyStudios/PancyCommunityBot/pkg/logger"
	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

// ErrMiss is returned when a key does not exist or expired
var ErrMiss = errors.New("cache miss")

// Client wraps go-redis with JSON helpers
type Client struct {
	rdb    redis.UniversalClient
	prefix string
}

// Open creates a Redis client and pings it to validate the connection
func Open(ctx context.Context, addr, password string, db int) (*Client, error) {
	if addr == "" {
		return nil, fmt.Errorf("empty redis addr")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	logger.Success(fmt.Sprintf("Conectado a Redis en %s", addr), "Cache")
	return New(rdb, "pancy:"), nil
}

// New wraps an existing client. Every key is stored under prefix.
func New(rdb redis.UniversalClient, prefix string) *Client {
	return &Client{rdb: rdb, prefix: prefix}
}

func (c *Client) key(k string) string {
	return c.prefix + k
}

// Get decodes the value at key into dest
func (c *Client) Get(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.Get(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Set stores value as JSON for ttl
func (c *Client) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return c.rdb.Set(ctx, c.key(key), data, ttl).Err()
}

// Take atomically reads and deletes the value at key
func (c *Client) Take(ctx context.Context, key string, dest interface{}) error {
	data, err := c.rdb.GetDel(ctx, c.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, dest)
}

// Delete removes key
func (c *Client) Delete(ctx context.Context, key string) error {
	return c.rdb.Del(ctx, c.key(key)).Err()
}

// Ping checks the connection
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the connection
func (c *Client) Close() error {
	return c.rdb.Close()
}
