package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"weightguard/internal/model"
)

// ReportCache 报表缓存（JSON 序列化，带过期时间）
type ReportCache struct {
	client *redis.Client
	key    string
}

// NewReportCache 创建报表缓存
func NewReportCache(client *redis.Client, key string) *ReportCache {
	return &ReportCache{client: client, key: key}
}

// Get 读取缓存，未命中返回 nil, nil
func (c *ReportCache) Get(ctx context.Context) (*model.Report, error) {
	raw, err := c.client.Get(ctx, c.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report cache: %w", err)
	}

	var report model.Report
	if err := json.Unmarshal(raw, &report); err != nil {
		return nil, fmt.Errorf("failed to decode report cache: %w", err)
	}
	return &report, nil
}

// Set 写入缓存
func (c *ReportCache) Set(ctx context.Context, report *model.Report, ttl time.Duration) error {
	raw, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	if err := c.client.Set(ctx, c.key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set report cache: %w", err)
	}
	return nil
}

// Invalidate 删除缓存
func (c *ReportCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, c.key).Err(); err != nil {
		return fmt.Errorf("failed to invalidate report cache: %w", err)
	}
	return nil
}
