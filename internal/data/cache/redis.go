package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/songzhibin97/listingflux/internal/data"
	"github.com/songzhibin97/listingflux/internal/models"
)

type RedisCache struct {
	client *redis.Client
}

func NewRedisCache(ctx context.Context, addr, password string, db int) (*RedisCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &RedisCache{client: client}, nil
}

func tokenKey(policyID string) string {
	return "listingflux:token:" + policyID
}

func metricsKey(policyID string) string {
	return "listingflux:metrics:" + policyID
}

// GetTokenInfo implements MetricsCache interface
func (c *RedisCache) GetTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, error) {
	payload, err := c.client.Get(ctx, tokenKey(policyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, data.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token info cache: %w", err)
	}

	var info models.TokenInfo
	if err := json.Unmarshal(payload, &info); err != nil {
		return nil, fmt.Errorf("failed to decode cached token info: %w", err)
	}
	return &info, nil
}

// SaveTokenInfo implements MetricsCache interface
func (c *RedisCache) SaveTokenInfo(ctx context.Context, info *models.TokenInfo, ttl time.Duration) error {
	payload, err := json.Marshal(info)
	if err != nil {
		return fmt.Errorf("failed to encode token info: %w", err)
	}

	if err := c.client.Set(ctx, tokenKey(info.PolicyID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write token info cache: %w", err)
	}
	return nil
}

// GetMetrics implements MetricsCache interface
func (c *RedisCache) GetMetrics(ctx context.Context, policyID string) (*models.MetricsAggregate, error) {
	payload, err := c.client.Get(ctx, metricsKey(policyID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, data.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read metrics cache: %w", err)
	}

	var metrics models.MetricsAggregate
	if err := json.Unmarshal(payload, &metrics); err != nil {
		return nil, fmt.Errorf("failed to decode cached metrics: %w", err)
	}
	return &metrics, nil
}

// SaveMetrics implements MetricsCache interface
func (c *RedisCache) SaveMetrics(ctx context.Context, metrics *models.MetricsAggregate, ttl time.Duration) error {
	payload, err := json.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to encode metrics: %w", err)
	}

	if err := c.client.Set(ctx, metricsKey(metrics.PolicyID), payload, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write metrics cache: %w", err)
	}
	return nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
