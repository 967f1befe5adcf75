package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ridetrace/internal/config"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

// opTimeout bounds every single command.
const opTimeout = 5 * time.Second

// Client wraps a go-redis client with per-call timeouts
type Client struct {
	rdb *redis.Client
	log zerolog.Logger
}

// Connect parses the URL, opens the client and checks it with a ping
func Connect(ctx context.Context, redisURL string, log zerolog.Logger) (*Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}
	rdb := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, config.RedisPingTimeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	log.Info().Str("addr", opts.Addr).Int("db", opts.DB).Msg("connected to Redis")
	return &Client{rdb: rdb, log: log}, nil
}

// NewFromClient wraps an existing go-redis client
func NewFromClient(rdb *redis.Client, log zerolog.Logger) *Client {
	return &Client{rdb: rdb, log: log}
}

// Close closes the connection pool
func (c *Client) Close() error {
	c.log.Info().Msg("closing Redis connection")
	return c.rdb.Close()
}

// Get returns the value stored at key; a missing key is not an error
func (c *Client) Get(ctx context.Context, key string) ([]byte, bool, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	val, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set stores value at key with the given expiration (0 keeps it forever)
func (c *Client) Set(ctx context.Context, key string, value []byte, expiration time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return c.rdb.Set(ctx, key, value, expiration).Err()
}

// Delete removes keys
func (c *Client) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	return c.rdb.Del(ctx, keys...).Err()
}

// DeletePrefix removes every key starting with prefix and returns how many
// were deleted. Keys are found with SCAN so large keyspaces are not blocked.
func (c *Client) DeletePrefix(ctx context.Context, prefix string) (int, error) {
	var (
		cursor uint64
		keys   []string
	)
	pattern := prefix + "*"
	for {
		batch, next, err := c.rdb.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return 0, err
		}
		keys = append(keys, batch...)
		cursor = next
		if cursor == 0 {
			break
		}
	}
	if err := c.Delete(ctx, keys...); err != nil {
		return 0, err
	}
	c.log.Info().Int("keys", len(keys)).Str("prefix", prefix).Msg("deleted cached entries")
	return len(keys), nil
}
