package cache

import (
	"context"
	"sync"
	"time"

	"github.com/songzhibin97/listingflux/internal/data"
	"github.com/songzhibin97/listingflux/internal/models"
)

type tokenEntry struct {
	info      models.TokenInfo
	expiresAt time.Time
}

type metricsEntry struct {
	metrics   models.MetricsAggregate
	expiresAt time.Time
}

// MemoryCache 进程内缓存, 没配 Redis 时的默认实现. 过期条目在读取时惰性清除.
type MemoryCache struct {
	mu      sync.RWMutex
	tokens  map[string]tokenEntry
	metrics map[string]metricsEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		tokens:  make(map[string]tokenEntry),
		metrics: make(map[string]metricsEntry),
	}
}

// expiry ttl 不为正时永不过期
func expiry(ttl time.Duration) time.Time {
	if ttl <= 0 {
		return time.Time{}
	}
	return time.Now().Add(ttl)
}

func expired(at time.Time) bool {
	return !at.IsZero() && time.Now().After(at)
}

// GetTokenInfo implements MetricsCache interface
func (c *MemoryCache) GetTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, error) {
	c.mu.RLock()
	entry, ok := c.tokens[policyID]
	c.mu.RUnlock()

	if !ok {
		return nil, data.ErrCacheMiss
	}
	if expired(entry.expiresAt) {
		c.mu.Lock()
		delete(c.tokens, policyID)
		c.mu.Unlock()
		return nil, data.ErrCacheMiss
	}

	info := entry.info
	return &info, nil
}

// SaveTokenInfo implements MetricsCache interface
func (c *MemoryCache) SaveTokenInfo(ctx context.Context, info *models.TokenInfo, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tokens[info.PolicyID] = tokenEntry{info: *info, expiresAt: expiry(ttl)}
	return nil
}

// GetMetrics implements MetricsCache interface
func (c *MemoryCache) GetMetrics(ctx context.Context, policyID string) (*models.MetricsAggregate, error) {
	c.mu.RLock()
	entry, ok := c.metrics[policyID]
	c.mu.RUnlock()

	if !ok {
		return nil, data.ErrCacheMiss
	}
	if expired(entry.expiresAt) {
		c.mu.Lock()
		delete(c.metrics, policyID)
		c.mu.Unlock()
		return nil, data.ErrCacheMiss
	}

	metrics := entry.metrics
	return &metrics, nil
}

// SaveMetrics implements MetricsCache interface
func (c *MemoryCache) SaveMetrics(ctx context.Context, metrics *models.MetricsAggregate, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metrics[metrics.PolicyID] = metricsEntry{metrics: *metrics, expiresAt: expiry(ttl)}
	return nil
}
