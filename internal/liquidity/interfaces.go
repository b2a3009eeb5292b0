package liquidity

import (
	"time"

	"github.com/songzhibin97/listingflux/internal/models"
)

// Planner 流动性部署规划接口
type Planner interface {
	// Plan 计算目标缺口, 最优池与按周加仓计划.
	// start 为计划起始日, 由调用方传入以保证结果可重现
	Plan(currentLiquidityUSD, targetLiquidityUSD, adaPriceUSD float64,
		pools []models.PoolLiquidity, start time.Time) models.LiquidityPlan
}

// Params 部署策略
type Params struct {
	SplitADA   float64 `json:"split_ada" yaml:"split_ada"`
	SplitOther float64 `json:"split_other" yaml:"split_other"`
	Weeks      int     `json:"weeks" yaml:"weeks"`
	// FrontLoaded 为 true 时按周递减分配, 否则平均分配
	FrontLoaded bool `json:"front_loaded" yaml:"front_loaded"`
	// FallbackADAPriceUSD 行情不可用时的兜底 ADA 价格
	FallbackADAPriceUSD float64 `json:"fallback_ada_price_usd" yaml:"fallback_ada_price_usd"`
}

// DefaultParams 缺省部署策略
func DefaultParams() Params {
	return Params{
		SplitADA:            0.7,
		SplitOther:          0.3,
		Weeks:               4,
		FallbackADAPriceUSD: 0.45,
	}
}
