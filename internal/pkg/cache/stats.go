package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

const statsKeyPrefix = "account:stats:"

// StatsCache 账号统计的 Redis 缓存，值为 JSON
type StatsCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewStatsCache(client *redis.Client, ttl time.Duration) *StatsCache {
	return &StatsCache{client: client, ttl: ttl}
}

func statsKey(accountID int64) string {
	return fmt.Sprintf("%s%d", statsKeyPrefix, accountID)
}

// Get 命中时解码到 dest 并返回 true
func (c *StatsCache) Get(ctx context.Context, accountID int64, dest interface{}) (bool, error) {
	data, err := c.client.Get(ctx, statsKey(accountID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, err
	}

	if err := json.Unmarshal(data, dest); err != nil {
		return false, fmt.Errorf("failed to unmarshal stats: %w", err)
	}
	return true, nil
}

func (c *StatsCache) Set(ctx context.Context, accountID int64, value interface{}) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	return c.client.Set(ctx, statsKey(accountID), data, c.ttl).Err()
}

// Invalidate 删除账号的统计缓存
func (c *StatsCache) Invalidate(ctx context.Context, accountID int64) error {
	return c.client.Del(ctx, statsKey(accountID)).Err()
}
