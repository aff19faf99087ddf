// Package cache keeps the latest scoreboard snapshot where displays and
// restarted instances can read it without touching the live match.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Billy-Davies-2/scorebored/internal/models"
)

const (
	SnapshotKey = "scoreboard:snapshot"
	SnapshotTTL = 12 * time.Hour
)

// SnapshotCache stores the most recent snapshot.
type SnapshotCache interface {
	Put(ctx context.Context, s models.Snapshot) error
	// Get returns false when nothing is cached.
	Get(ctx context.Context) (models.Snapshot, bool, error)
	Close() error
}

// MemoryCache is the SnapshotCache used when no Redis is configured.
type MemoryCache struct {
	mu   sync.RWMutex
	snap models.Snapshot
	ok   bool
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{}
}

func (c *MemoryCache) Put(_ context.Context, s models.Snapshot) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snap, c.ok = s, true
	return nil
}

func (c *MemoryCache) Get(_ context.Context) (models.Snapshot, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.snap, c.ok, nil
}

func (c *MemoryCache) Close() error { return nil }

// RedisCache stores the snapshot as JSON under a single key.
type RedisCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

// NewRedisCache connects and pings the server before returning.
func NewRedisCache(addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisCacheWithClient(client), nil
}

// NewRedisCacheWithClient wraps an existing client.
func NewRedisCacheWithClient(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, key: SnapshotKey, ttl: SnapshotTTL}
}

func (c *RedisCache) Put(ctx context.Context, s models.Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	return c.client.Set(ctx, c.key, data, c.ttl).Err()
}

func (c *RedisCache) Get(ctx context.Context) (models.Snapshot, bool, error) {
	var s models.Snapshot
	data, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return s, false, nil
	}
	if err != nil {
		return s, false, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if err := json.Unmarshal(data, &s); err != nil {
		return s, false, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return s, true, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
