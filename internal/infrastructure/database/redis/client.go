// Package redis provides the Redis client and the distributed trigger lock
// that extends the scheduler's overlap guard across process instances.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/complytrack/complytrack/internal/config"
	"github.com/complytrack/complytrack/internal/infrastructure/monitoring/logging"
	"github.com/complytrack/complytrack/pkg/errors"
)

// Client wraps the go-redis client with the engine's key prefix.
type Client struct {
	rdb       *redis.Client
	keyPrefix string
	logger    logging.Logger
}

// NewClient connects to Redis and verifies the connection with a ping.
func NewClient(cfg config.RedisConfig, log logging.Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis unreachable")
	}

	log.Info("connected to redis", logging.String("addr", cfg.Addr))
	return &Client{rdb: rdb, keyPrefix: cfg.KeyPrefix, logger: log}, nil
}

// NewClientWithRedis wraps an existing go-redis client, for tests.
func NewClientWithRedis(rdb *redis.Client, keyPrefix string, log logging.Logger) *Client {
	return &Client{rdb: rdb, keyPrefix: keyPrefix, logger: log}
}

func (c *Client) key(parts string) string {
	return c.keyPrefix + parts
}

// HealthCheck pings redis.
func (c *Client) HealthCheck(ctx context.Context) error {
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return errors.Wrap(err, errors.ErrCodeServiceUnavailable, "redis health check failed")
	}
	return nil
}

// Close releases the connection pool.
func (c *Client) Close() error {
	return c.rdb.Close()
}
