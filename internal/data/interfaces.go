package data

import (
	"context"
	"errors"
	"time"

	"github.com/songzhibin97/listingflux/internal/models"
)

// ErrCacheMiss 缓存中没有对应条目
var ErrCacheMiss = errors.New("cache miss")

// DataCollector 负责从各种源收集代币数据
type DataCollector interface {
	// CollectTokenInfo retrieves basic token information and metadata
	CollectTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, error)

	// CollectHolderData retrieves holder distribution statistics
	CollectHolderData(ctx context.Context, policyID string) (*models.HolderData, error)

	// CollectMarketData retrieves DEX liquidity and volume data
	CollectMarketData(ctx context.Context, policyID string) (*models.MarketData, error)

	// CollectMetrics assembles a full metrics snapshot for one token
	CollectMetrics(ctx context.Context, policyID string) (*models.MetricsAggregate, error)

	// SubscribeToMetrics returns a channel of periodic metrics snapshots
	SubscribeToMetrics(ctx context.Context, policyIDs []string, refreshInterval time.Duration) (<-chan models.MetricsAggregate, error)
}

// MetricsCache 缓存采集结果, 减少对外部 API 的重复请求
type MetricsCache interface {
	// GetTokenInfo returns cached token info or ErrCacheMiss
	GetTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, error)

	// SaveTokenInfo stores token info with a TTL
	SaveTokenInfo(ctx context.Context, info *models.TokenInfo, ttl time.Duration) error

	// GetMetrics returns a cached metrics snapshot or ErrCacheMiss
	GetMetrics(ctx context.Context, policyID string) (*models.MetricsAggregate, error)

	// SaveMetrics stores a metrics snapshot with a TTL
	SaveMetrics(ctx context.Context, metrics *models.MetricsAggregate, ttl time.Duration) error
}
