// Package redis shares the schedule source cache between API replicas and
// publishes deadline digests over pub/sub.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// ══════════════════════════════════════════════════════════════════════════════
// KEYS
// ══════════════════════════════════════════════════════════════════════════════

const (
	keyPrefix = "schedule:"

	// ChannelDeadlines receives one JSON digest per course and run.
	ChannelDeadlines = keyPrefix + "deadlines"

	// TTLScheduleSources applies when the caller passes no TTL.
	TTLScheduleSources = 90 * time.Second
)

func ScheduleTasksKey(courseID int64) string {
	return keyPrefix + strconv.FormatInt(courseID, 10) + ":tasks"
}

func ScheduleEventsKey(courseID int64) string {
	return keyPrefix + strconv.FormatInt(courseID, 10) + ":events"
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrMiss means the key does not exist.
	ErrMiss = errors.New("redis: cache miss")

	// ErrUnavailable wraps a failed initial ping.
	ErrUnavailable = errors.New("redis: server unavailable")
)

// Config is the subset of go-redis options the service exposes.
type Config struct {
	Addr     string
	Password string
	DB       int

	PoolSize     int
	MinIdleConns int

	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Cache is a go-redis client that stores JSON values.
type Cache struct {
	rdb *redis.Client
}

// NewCache connects and pings once, bounded by DialTimeout.
func NewCache(ctx context.Context, cfg Config) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrUnavailable, cfg.Addr, err)
	}
	return &Cache{rdb: rdb}, nil
}

func (c *Cache) Ping(ctx context.Context) error { return c.rdb.Ping(ctx).Err() }

func (c *Cache) Close() error { return c.rdb.Close() }

func (c *Cache) getJSON(ctx context.Context, key string, dest any) error {
	raw, err := c.rdb.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, dest)
}

func (c *Cache) setJSON(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return c.rdb.Set(ctx, key, raw, ttl).Err()
}

func (c *Cache) del(ctx context.Context, keys ...string) error {
	return c.rdb.Del(ctx, keys...).Err()
}

func (c *Cache) publishJSON(ctx context.Context, channel string, message any) error {
	raw, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("encode message: %w", err)
	}
	return c.rdb.Publish(ctx, channel, raw).Err()
}
