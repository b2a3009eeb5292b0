package monitor

import (
	"context"
	"fmt"
	"time"

	"github.com/songzhibin97/listingflux/internal/exchange"
	"github.com/songzhibin97/listingflux/internal/models"
)

const (
	defaultInterval           = 5 * time.Minute
	defaultConcentrationLimit = 40.0
)

// BasicListingMonitor 周期性重新采集指标并推送上币就绪告警
type BasicListingMonitor struct {
	source MetricsSource
	params Params
	// minLiquidity 全部交易所门槛里最低的流动性下限
	minLiquidity float64
	logger       Logger
}

func NewBasicListingMonitor(source MetricsSource, params Params, logger Logger) (*BasicListingMonitor, error) {
	if source == nil {
		return nil, fmt.Errorf("metrics source is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if len(params.PolicyIDs) == 0 {
		return nil, fmt.Errorf("at least one policy id to watch is required")
	}
	if params.Interval <= 0 {
		params.Interval = defaultInterval
	}
	if params.ConcentrationLimit <= 0 {
		params.ConcentrationLimit = defaultConcentrationLimit
	}
	if len(params.Thresholds) == 0 {
		params.Thresholds = exchange.DefaultThresholds()
	}

	return &BasicListingMonitor{
		source:       source,
		params:       params,
		minLiquidity: smallestLiquidityFloor(params.Thresholds),
		logger:       logger,
	}, nil
}

func (m *BasicListingMonitor) Watch(ctx context.Context) (<-chan models.ListingAlert, error) {
	alerts := make(chan models.ListingAlert, 100)

	go func() {
		defer close(alerts)

		ticker := time.NewTicker(m.params.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return

			case <-ticker.C:
				for _, policyID := range m.params.PolicyIDs {
					m.checkPolicy(ctx, policyID, alerts)
				}
			}
		}
	}()

	return alerts, nil
}

// checkPolicy 采集单个代币的最新指标并推送告警, 单路采集失败不阻断另一路
func (m *BasicListingMonitor) checkPolicy(ctx context.Context, policyID string, alerts chan<- models.ListingAlert) {
	holders, err := m.source.CollectHolderData(ctx, policyID)
	if err != nil {
		m.logger.Error("failed to collect holder data for", policyID, ":", err)
		holders = nil
	}

	market, err := m.source.CollectMarketData(ctx, policyID)
	if err != nil {
		m.logger.Error("failed to collect market data for", policyID, ":", err)
		market = nil
	}

	if holders == nil && market == nil {
		return
	}

	for _, alert := range m.evaluate(policyID, holders, market, time.Now()) {
		select {
		case alerts <- alert:
		default:
			m.logger.Error("alert channel full, dropping alert for", policyID)
		}
	}
}

// evaluate 根据单轮采集结果生成告警, nil 入参表示对应一路采集失败
func (m *BasicListingMonitor) evaluate(policyID string, holders *models.HolderData, market *models.MarketData, now time.Time) []models.ListingAlert {
	out := make([]models.ListingAlert, 0, 4)

	if holders != nil && market != nil {
		for _, th := range m.params.Thresholds {
			if th.MinLiquidityUSD <= 0 && th.MinHolders <= 0 {
				continue
			}
			if market.LiquidityUSD >= th.MinLiquidityUSD && holders.HolderCount >= th.MinHolders {
				out = append(out, models.ListingAlert{
					Type:      models.AlertListingReady,
					PolicyID:  policyID,
					Exchange:  th.Name,
					Message:   fmt.Sprintf("token meets %s minimum listing requirements", th.Name),
					Value:     market.LiquidityUSD,
					Threshold: th.MinLiquidityUSD,
					Timestamp: now,
				})
			}
		}
	}

	if market != nil && m.minLiquidity > 0 && market.LiquidityUSD < m.minLiquidity {
		out = append(out, models.ListingAlert{
			Type:      models.AlertLiquidityLow,
			PolicyID:  policyID,
			Message:   fmt.Sprintf("liquidity $%.2f is below the lowest exchange floor $%.2f", market.LiquidityUSD, m.minLiquidity),
			Value:     market.LiquidityUSD,
			Threshold: m.minLiquidity,
			Timestamp: now,
		})
	}

	// 空持仓集合的 top10 统计值默认 100, 不按集中度风险报
	if holders != nil && holders.HolderCount > 0 && holders.Top10Concentration > m.params.ConcentrationLimit {
		out = append(out, models.ListingAlert{
			Type:      models.AlertConcentrationHigh,
			PolicyID:  policyID,
			Message:   fmt.Sprintf("top 10 holders control %.2f%% of supply", holders.Top10Concentration),
			Value:     holders.Top10Concentration,
			Threshold: m.params.ConcentrationLimit,
			Timestamp: now,
		})
	}

	return out
}

func smallestLiquidityFloor(thresholds []exchange.Threshold) float64 {
	floor := 0.0
	for _, th := range thresholds {
		if th.MinLiquidityUSD <= 0 {
			continue
		}
		if floor == 0 || th.MinLiquidityUSD < floor {
			floor = th.MinLiquidityUSD
		}
	}
	return floor
}
