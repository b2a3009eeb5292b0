package bridge

import (
	"github.com/songzhibin97/listingflux/internal/models"
)

// Ranker 跨链路线评估接口
type Ranker interface {
	// Rank 对目标链逐一评估候选路线, 返回排序后的路线, 全局最优目标链,
	// 以及目录中不存在而被跳过的链名
	Rank(targetChains []string) (routes []models.BridgeRoute, recommended string, skipped []string)
	// ChainRankings 按链基本面对目录中全部目标链排序, tokenLiquidityUSD 参与加成判断
	ChainRankings(tokenLiquidityUSD float64) []models.ChainRanking
}

// Offer 桥目录条目: 某条链上一个桥的报价与画像
type Offer struct {
	Bridge      string  `json:"bridge" yaml:"bridge"`
	FeeBaseUSD  float64 `json:"fee_base_usd" yaml:"fee_base_usd"`
	FeePct      float64 `json:"fee_pct" yaml:"fee_pct"`
	MinMinutes  int     `json:"min_minutes" yaml:"min_minutes"`
	MaxMinutes  int     `json:"max_minutes" yaml:"max_minutes"`
	Trust       string  `json:"trust" yaml:"trust"`
	Slippage    string  `json:"slippage" yaml:"slippage"`
	Hops        int     `json:"hops" yaml:"hops"`
	Reliability float64 `json:"reliability" yaml:"reliability"`
}

// ChainInfo 目标链基本面
type ChainInfo struct {
	LiquidityDepth float64 `json:"liquidity_depth" yaml:"liquidity_depth"`
	DEXCount       float64 `json:"dex_count" yaml:"dex_count"`
	GasCost        float64 `json:"gas_cost" yaml:"gas_cost"`
	UserBase       float64 `json:"user_base" yaml:"user_base"`
	CEXPresence    float64 `json:"cex_presence" yaml:"cex_presence"`
}

// Weights 路线评分权重, 和必须为 1
type Weights struct {
	Reliability float64 `json:"reliability" yaml:"reliability"`
	Fee         float64 `json:"fee" yaml:"fee"`
	Time        float64 `json:"time" yaml:"time"`
	Trust       float64 `json:"trust" yaml:"trust"`
}

// Params 路线评估策略表
type Params struct {
	SourceChain string             `json:"source_chain" yaml:"source_chain"`
	Weights     Weights            `json:"weights" yaml:"weights"`
	HopPenalty  float64            `json:"hop_penalty" yaml:"hop_penalty"`   // 每多一跳扣分
	TrustScores map[string]float64 `json:"trust_scores" yaml:"trust_scores"` // 信任模型得分表
}
