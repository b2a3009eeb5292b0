package monitor

import (
	"context"
	"time"

	"github.com/songzhibin97/listingflux/internal/exchange"
	"github.com/songzhibin97/listingflux/internal/models"
)

// ListingMonitor defines methods for watching listing readiness
type ListingMonitor interface {
	// Watch 启动监控循环, 返回告警通道, ctx 取消后通道关闭
	Watch(ctx context.Context) (<-chan models.ListingAlert, error)
}

// MetricsSource 监控每轮需要的最小采集能力, 直接走数据源拿最新值
type MetricsSource interface {
	CollectHolderData(ctx context.Context, policyID string) (*models.HolderData, error)
	CollectMarketData(ctx context.Context, policyID string) (*models.MarketData, error)
}

// Logger 监控日志接口
type Logger interface {
	Error(args ...interface{})
	Info(args ...interface{})
}

// Params 监控参数配置
type Params struct {
	PolicyIDs          []string             `json:"policy_ids" yaml:"policy_ids"`
	Interval           time.Duration        `json:"interval" yaml:"interval"`
	ConcentrationLimit float64              `json:"concentration_limit" yaml:"concentration_limit"`
	Thresholds         []exchange.Threshold `json:"thresholds" yaml:"thresholds"`
}
