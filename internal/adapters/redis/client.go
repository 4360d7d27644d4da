package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/amyangfei/redlock-go/v3/redlock"
	redis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"github.com/selivandex/menu-analytics/internal/adapters/config"
	"github.com/selivandex/menu-analytics/pkg/logger"
)

const lastCompletedKeyPrefix = "analysis:last_completed:"

// Client wraps RedLock manager for window locks + standard Redis for run tracking
type Client struct {
	lockManager *redlock.RedLock
	cache       *redis.Client
	lockTTL     time.Duration
}

// New creates new Redis client with RedLock support
func New(cfg *config.RedisConfig) (*Client, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	redisAddrs := []string{fmt.Sprintf("tcp://%s", cfg.Addr())}

	lockManager, err := redlock.NewRedLock(ctx, redisAddrs)
	if err != nil {
		return nil, fmt.Errorf("failed to create redlock manager: %w", err)
	}

	logger.Info("redis redlock manager initialized",
		zap.Strings("addresses", redisAddrs),
	)

	cacheClient := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     4,
	})

	if err := cacheClient.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("redis client initialized",
		zap.String("address", cfg.Addr()),
		zap.Int("db", cfg.DB),
	)

	return &Client{
		lockManager: lockManager,
		cache:       cacheClient,
		lockTTL:     cfg.LockTTL,
	}, nil
}

// GetLockFactory returns a lock factory for analysis windows
func (c *Client) GetLockFactory() LockFactory {
	return NewRedisLockFactory(c.lockManager, c.lockTTL)
}

// MarkCompleted records the completion time of a window's last successful run
func (c *Client) MarkCompleted(ctx context.Context, window string, at time.Time) error {
	if err := c.cache.Set(ctx, lastCompletedKeyPrefix+window, at.UTC().Format(time.RFC3339Nano), 0).Err(); err != nil {
		return fmt.Errorf("failed to mark window %s completed: %w", window, err)
	}
	return nil
}

// LastCompleted returns the completion time of a window's last successful run
func (c *Client) LastCompleted(ctx context.Context, window string) (time.Time, bool, error) {
	val, err := c.cache.Get(ctx, lastCompletedKeyPrefix+window).Result()
	if errors.Is(err, redis.Nil) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("failed to read last completion of window %s: %w", window, err)
	}

	at, err := time.Parse(time.RFC3339Nano, val)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("invalid completion time for window %s: %w", window, err)
	}
	return at, true, nil
}

// Health pings redis
func (c *Client) Health(ctx context.Context) error {
	return c.cache.Ping(ctx).Err()
}

// Close closes redis connections
func (c *Client) Close() error {
	if c.cache != nil {
		logger.Info("closing redis client")
		if err := c.cache.Close(); err != nil {
			return fmt.Errorf("failed to close redis: %w", err)
		}
	}
	return nil
}
