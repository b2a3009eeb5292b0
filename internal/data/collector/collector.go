package collector

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/sony/gobreaker"

	"github.com/songzhibin97/listingflux/internal/data"
	"github.com/songzhibin97/listingflux/internal/models"
)

type Logger interface {
	Error(msg string, fields ...interface{})
	Info(msg string, fields ...interface{})
}

// DataSource 单个数据源, 按来源实现部分方法, 不支持的能力返回错误
type DataSource interface {
	Name() string
	CollectTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, error)
	CollectHolderData(ctx context.Context, policyID string) (*models.HolderData, error)
	CollectMarketData(ctx context.Context, policyID string) (*models.MarketData, error)
}

// SecurityAssessor 可选能力: 数据源自带合约风险评估
type SecurityAssessor interface {
	AssessContractRisk(ctx context.Context, policyID string) (float64, error)
}

// MultiSourceCollector implements DataCollector interface by aggregating multiple data sources
type MultiSourceCollector struct {
	sources  []DataSource
	cache    data.MetricsCache
	cacheTTL time.Duration
	breakers map[string]*gobreaker.CircuitBreaker
	logger   Logger
}

func NewMultiSourceCollector(sources []DataSource, cache data.MetricsCache, cacheTTL time.Duration, logger Logger) *MultiSourceCollector {
	c := &MultiSourceCollector{
		sources:  sources,
		cache:    cache,
		cacheTTL: cacheTTL,
		breakers: make(map[string]*gobreaker.CircuitBreaker, len(sources)),
		logger:   logger,
	}

	for _, source := range sources {
		c.breakers[source.Name()] = c.newBreaker(source.Name())
	}

	return c
}

func (c *MultiSourceCollector) newBreaker(name string) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:     name,
		Interval: 60 * time.Second,
		Timeout:  30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.ConsecutiveFailures >= 5 {
				return true
			}
			return counts.Requests >= 10 &&
				float64(counts.TotalFailures)/float64(counts.Requests) > 0.5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			c.logger.Info("circuit breaker state changed",
				"source", name, "from", from.String(), "to", to.String())
		},
	})
}

// execute 经过数据源对应的熔断器发起调用
func (c *MultiSourceCollector) execute(source DataSource, fn func() (interface{}, error)) (interface{}, error) {
	breaker, ok := c.breakers[source.Name()]
	if !ok {
		return fn()
	}
	return breaker.Execute(fn)
}

// CollectTokenInfo implements DataCollector interface
func (c *MultiSourceCollector) CollectTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, error) {
	info, _, err := c.collectTokenInfo(ctx, policyID)
	return info, err
}

func (c *MultiSourceCollector) collectTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, string, error) {
	if c.cache != nil {
		info, err := c.cache.GetTokenInfo(ctx, policyID)
		if err == nil {
			return info, "cache", nil
		}
		if !errors.Is(err, data.ErrCacheMiss) {
			c.logger.Error("token info cache read failed", "policy_id", policyID, "error", err)
		}
	}

	for _, source := range c.sources {
		result, err := c.execute(source, func() (interface{}, error) {
			return source.CollectTokenInfo(ctx, policyID)
		})
		if err != nil {
			c.logger.Error("failed to collect token info", "source", source.Name(), "error", err)
			continue
		}
		info, ok := result.(*models.TokenInfo)
		if !ok || info == nil {
			continue
		}
		c.logger.Info("collected token info", "source", source.Name(), "policy_id", policyID)
		if c.cache != nil {
			if err := c.cache.SaveTokenInfo(ctx, info, c.cacheTTL); err != nil {
				c.logger.Error("token info cache write failed", "policy_id", policyID, "error", err)
			}
		}
		return info, source.Name(), nil
	}

	return nil, "", fmt.Errorf("failed to collect token info from all sources")
}

// CollectHolderData implements DataCollector interface
func (c *MultiSourceCollector) CollectHolderData(ctx context.Context, policyID string) (*models.HolderData, error) {
	holders, _, err := c.collectHolderData(ctx, policyID)
	return holders, err
}

func (c *MultiSourceCollector) collectHolderData(ctx context.Context, policyID string) (*models.HolderData, string, error) {
	for _, source := range c.sources {
		result, err := c.execute(source, func() (interface{}, error) {
			return source.CollectHolderData(ctx, policyID)
		})
		if err != nil {
			c.logger.Error("failed to collect holder data", "source", source.Name(), "error", err)
			continue
		}
		holders, ok := result.(*models.HolderData)
		if !ok || holders == nil {
			continue
		}
		c.logger.Info("collected holder data", "source", source.Name(), "policy_id", policyID)
		return holders, source.Name(), nil
	}

	return nil, "", fmt.Errorf("failed to collect holder data from all sources")
}

// CollectMarketData implements DataCollector interface
func (c *MultiSourceCollector) CollectMarketData(ctx context.Context, policyID string) (*models.MarketData, error) {
	market, _, err := c.collectMarketData(ctx, policyID)
	return market, err
}

func (c *MultiSourceCollector) collectMarketData(ctx context.Context, policyID string) (*models.MarketData, string, error) {
	for _, source := range c.sources {
		result, err := c.execute(source, func() (interface{}, error) {
			return source.CollectMarketData(ctx, policyID)
		})
		if err != nil {
			c.logger.Error("failed to collect market data", "source", source.Name(), "error", err)
			continue
		}
		market, ok := result.(*models.MarketData)
		if !ok || market == nil {
			continue
		}
		c.logger.Info("collected market data", "source", source.Name(), "policy_id", policyID)
		return market, source.Name(), nil
	}

	return nil, "", fmt.Errorf("failed to collect market data from all sources")
}

// CollectMetrics implements DataCollector interface.
// 三类数据并发采集, 单类失败降级为零值, 全部失败才返回错误.
func (c *MultiSourceCollector) CollectMetrics(ctx context.Context, policyID string) (*models.MetricsAggregate, error) {
	if c.cache != nil {
		metrics, err := c.cache.GetMetrics(ctx, policyID)
		if err == nil {
			return metrics, nil
		}
		if !errors.Is(err, data.ErrCacheMiss) {
			c.logger.Error("metrics cache read failed", "policy_id", policyID, "error", err)
		}
	}

	var (
		wg         sync.WaitGroup
		info       *models.TokenInfo
		holders    *models.HolderData
		market     *models.MarketData
		infoName   string
		marketName string
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		info, infoName, _ = c.collectTokenInfo(ctx, policyID)
	}()
	go func() {
		defer wg.Done()
		holders, _, _ = c.collectHolderData(ctx, policyID)
	}()
	go func() {
		defer wg.Done()
		market, marketName, _ = c.collectMarketData(ctx, policyID)
	}()
	wg.Wait()

	if info == nil && holders == nil && market == nil {
		return nil, fmt.Errorf("failed to collect any metrics for policy %s", policyID)
	}

	metrics := &models.MetricsAggregate{
		PolicyID:    policyID,
		CollectedAt: time.Now(),
	}

	if info != nil {
		metrics.MetadataScore = MetadataQuality(info)
		metrics.TotalSupply = info.TotalSupply
		// 链上没有锁仓口径, 先按全部流通处理
		metrics.CirculatingSupply = info.TotalSupply
	}

	if holders != nil {
		metrics.HolderCount = holders.HolderCount
		metrics.Top10Concentration = holders.Top10Concentration
		metrics.Top50Concentration = holders.Top50Concentration
		metrics.GiniCoefficient = holders.GiniCoefficient
	}

	if market != nil {
		metrics.LiquidityUSD = market.LiquidityUSD
		metrics.Volume24hUSD = market.Volume24hUSD
		metrics.Volume30dUSD = market.Volume30dUSD
		metrics.PriceUSD = market.PriceUSD
		metrics.MarketCapUSD = market.MarketCapUSD
		metrics.PriceChange24h = market.PriceChange24h
		metrics.MarketDataAvailable = true
	}

	// 数据源没有 30 天口径时按 24 小时量外推
	if metrics.Volume30dUSD == 0 && metrics.Volume24hUSD > 0 {
		metrics.Volume30dUSD = metrics.Volume24hUSD * 30
	}

	metrics.ContractRiskScore = c.assessContractRisk(ctx, policyID)
	metrics.DataSource = describeSources(infoName, marketName)

	if c.cache != nil {
		if err := c.cache.SaveMetrics(ctx, metrics, c.cacheTTL); err != nil {
			c.logger.Error("metrics cache write failed", "policy_id", policyID, "error", err)
		}
	}

	return metrics, nil
}

func (c *MultiSourceCollector) assessContractRisk(ctx context.Context, policyID string) float64 {
	for _, source := range c.sources {
		assessor, ok := source.(SecurityAssessor)
		if !ok {
			continue
		}
		score, err := assessor.AssessContractRisk(ctx, policyID)
		if err != nil {
			c.logger.Error("contract risk assessment failed", "source", source.Name(), "error", err)
			continue
		}
		return score
	}
	return 0
}

func describeSources(infoName, marketName string) string {
	switch {
	case infoName != "" && marketName != "":
		return fmt.Sprintf("%s (on-chain) + %s", infoName, marketName)
	case infoName != "":
		return fmt.Sprintf("%s (on-chain only)", infoName)
	default:
		return marketName
	}
}

// SubscribeToMetrics implements DataCollector interface
func (c *MultiSourceCollector) SubscribeToMetrics(ctx context.Context, policyIDs []string, refreshInterval time.Duration) (<-chan models.MetricsAggregate, error) {
	if refreshInterval <= 0 {
		return nil, fmt.Errorf("refresh interval must be positive")
	}

	out := make(chan models.MetricsAggregate, 100)

	go func() {
		defer close(out)

		ticker := time.NewTicker(refreshInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				for _, policyID := range policyIDs {
					metrics, err := c.CollectMetrics(ctx, policyID)
					if err != nil {
						c.logger.Error("failed to collect metrics", "policy_id", policyID, "error", err)
						continue
					}

					select {
					case out <- *metrics:
					default:
						c.logger.Error("channel full, dropping metrics", "policy_id", policyID)
					}
				}
			}
		}
	}()

	return out, nil
}

// MetadataQuality 元数据完整度打分, 必备字段各 20 分, 补充字段各 5 分
func MetadataQuality(info *models.TokenInfo) float64 {
	if info == nil {
		return 0
	}

	score := 0.0
	for _, field := range []string{info.Name, info.Description, info.Image, info.Ticker} {
		if field != "" {
			score += 20
		}
	}
	for _, field := range []string{info.Website, info.Twitter, info.Telegram, info.Logo} {
		if field != "" {
			score += 5
		}
	}

	return math.Min(score, 100)
}
