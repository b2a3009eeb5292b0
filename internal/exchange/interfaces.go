package exchange

import (
	"github.com/songzhibin97/listingflux/internal/models"
)

// Matcher 交易所上币要求核对接口
type Matcher interface {
	// Match 按请求顺序核对各交易所门槛, 未知交易所返回 *ConfigurationError
	Match(metrics models.MetricsAggregate, exchanges []string) ([]models.ExchangeRequirement, error)
	// Recommended 返回指标平均匹配度达标的交易所, 无一达标时退回两家门槛最低的
	Recommended(metrics models.MetricsAggregate) []string
}

// Threshold 单个交易所的上币门槛, 零值字段表示不适用
type Threshold struct {
	Name                  string  `json:"name" yaml:"name"`
	Tier                  int     `json:"tier" yaml:"tier"`
	MinLiquidityUSD       float64 `json:"min_liquidity_usd" yaml:"min_liquidity_usd"`
	MinHolders            int     `json:"min_holders" yaml:"min_holders"`
	MinVolume24hUSD       float64 `json:"min_volume_24h_usd" yaml:"min_volume_24h_usd"`
	MinVolume30dUSD       float64 `json:"min_volume_30d_usd" yaml:"min_volume_30d_usd"`
	MaxTop10Concentration float64 `json:"max_top10_concentration" yaml:"max_top10_concentration"`
	MetadataMin           float64 `json:"metadata_min" yaml:"metadata_min"`
	AuditRequired         bool    `json:"audit_required" yaml:"audit_required"`
	KYCRequired           bool    `json:"kyc_required" yaml:"kyc_required"`
}

// DefaultThresholds 缺省交易所门槛表
func DefaultThresholds() []Threshold {
	return []Threshold{
		{Name: "Binance", Tier: 1, MinLiquidityUSD: 100000, MinHolders: 1000, MinVolume24hUSD: 10000, MinVolume30dUSD: 50000, MaxTop10Concentration: 30, MetadataMin: 70, AuditRequired: true, KYCRequired: true},
		{Name: "Coinbase", Tier: 1, MinLiquidityUSD: 100000, MinHolders: 800, MinVolume24hUSD: 8000, MinVolume30dUSD: 50000, MaxTop10Concentration: 25, MetadataMin: 70, AuditRequired: true, KYCRequired: true},
		{Name: "Kraken", Tier: 1, MinLiquidityUSD: 75000, MinHolders: 600, MinVolume24hUSD: 6000, MinVolume30dUSD: 30000, MaxTop10Concentration: 30, MetadataMin: 70, AuditRequired: true, KYCRequired: true},
		{Name: "KuCoin", Tier: 1, MinLiquidityUSD: 50000, MinHolders: 500, MinVolume24hUSD: 5000, MinVolume30dUSD: 10000, MaxTop10Concentration: 35, MetadataMin: 70, KYCRequired: true},
		{Name: "Gate.io", Tier: 2, MinLiquidityUSD: 25000, MinHolders: 300, MinVolume24hUSD: 2500, MinVolume30dUSD: 8000, MaxTop10Concentration: 40, MetadataMin: 70, KYCRequired: true},
		{Name: "MEXC", Tier: 2, MinLiquidityUSD: 10000, MinHolders: 200, MinVolume24hUSD: 1000, MetadataMin: 70},
	}
}
