package scoring

import (
	"github.com/songzhibin97/listingflux/internal/models"
)

// Scorer 就绪度打分接口
type Scorer interface {
	// Score 根据指标快照计算六项子分, 总分与评级
	Score(metrics models.MetricsAggregate) models.ReadinessScore
}

// Weights 六项子分权重, 和必须为 1
type Weights struct {
	Liquidity          float64 `json:"liquidity" yaml:"liquidity"`
	HolderDistribution float64 `json:"holder_distribution" yaml:"holder_distribution"`
	Metadata           float64 `json:"metadata" yaml:"metadata"`
	Security           float64 `json:"security" yaml:"security"`
	SupplyStability    float64 `json:"supply_stability" yaml:"supply_stability"`
	MarketActivity     float64 `json:"market_activity" yaml:"market_activity"`
}

// GradeCut 评级切分点, 按 min 降序排列
type GradeCut struct {
	Grade string  `json:"grade" yaml:"grade"`
	Min   float64 `json:"min" yaml:"min"`
}

// Params 打分策略表
type Params struct {
	Weights Weights `json:"weights" yaml:"weights"`
	// NoMarketWeights 缺少市场数据时的备用权重
	NoMarketWeights Weights    `json:"no_market_weights" yaml:"no_market_weights"`
	GradeCuts       []GradeCut `json:"grade_cuts" yaml:"grade_cuts"`
}
