package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shelfworks/planogram/backend-go/internal/config"
	"github.com/shelfworks/planogram/backend-go/internal/domain"
)

const runResultKeyPrefix = "distribution:result"

// RunCache holds the latest distribution result per gondola so the editor can
// poll without hitting the runs table.
type RunCache interface {
	GetResult(ctx context.Context, gondolaID int64) (*domain.RunResult, bool, error)
	SetResult(ctx context.Context, result *domain.RunResult) error
	Invalidate(ctx context.Context, gondolaID int64) error
}

type redisRunCache struct {
	client *redis.Client
	ttl    time.Duration
}

type noopRunCache struct{}

func NewRunCache(cfg config.CacheConfig) (RunCache, error) {
	if !cfg.Enabled {
		return &noopRunCache{}, nil
	}

	client, ttl, err := newRedisClient(cfg)
	if err != nil {
		return nil, err
	}

	return &redisRunCache{client: client, ttl: ttl}, nil
}

func NewNoopRunCache() RunCache {
	return &noopRunCache{}
}

func (c *redisRunCache) GetResult(ctx context.Context, gondolaID int64) (*domain.RunResult, bool, error) {
	payload, err := c.client.Get(ctx, runResultKey(gondolaID)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get failed: %w", err)
	}

	var result domain.RunResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, false, fmt.Errorf("decode run result cache: %w", err)
	}

	return &result, true, nil
}

func (c *redisRunCache) SetResult(ctx context.Context, result *domain.RunResult) error {
	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("encode run result cache: %w", err)
	}

	if err := c.client.Set(ctx, runResultKey(result.GondolaID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func (c *redisRunCache) Invalidate(ctx context.Context, gondolaID int64) error {
	return c.client.Del(ctx, runResultKey(gondolaID)).Err()
}

func (n *noopRunCache) GetResult(ctx context.Context, gondolaID int64) (*domain.RunResult, bool, error) {
	return nil, false, nil
}

func (n *noopRunCache) SetResult(ctx context.Context, result *domain.RunResult) error {
	return nil
}

func (n *noopRunCache) Invalidate(ctx context.Context, gondolaID int64) error {
	return nil
}

func runResultKey(gondolaID int64) string {
	return fmt.Sprintf("%s:%d", runResultKeyPrefix, gondolaID)
}
