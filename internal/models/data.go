package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// TokenInfo 代币基本信息与元数据
type TokenInfo struct {
	PolicyID    string `json:"policy_id"`
	AssetName   string `json:"asset_name"`
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Description string `json:"description"`
	Image       string `json:"image"`
	Ticker      string `json:"ticker"`
	Website     string `json:"website"`
	Twitter     string `json:"twitter"`
	Telegram    string `json:"telegram"`
	Logo        string `json:"logo"`
	// TxHistoryCount 链上交易历史条数, 用于合约风险打分
	TxHistoryCount int             `json:"tx_history_count"`
	TotalSupply    decimal.Decimal `json:"total_supply"`
	MintedAt       time.Time       `json:"minted_at"`
}

// HolderBalance 单个地址持仓
type HolderBalance struct {
	Address  string          `json:"address"`
	Quantity decimal.Decimal `json:"quantity"`
}

// HolderData 持仓分布统计
type HolderData struct {
	HolderCount        int     `json:"holder_count"`
	Top10Concentration float64 `json:"top_10_concentration"`
	Top50Concentration float64 `json:"top_50_concentration"`
	GiniCoefficient    float64 `json:"gini_coefficient"`
}

// PoolLiquidity 单个流动性池的深度与交易量
type PoolLiquidity struct {
	Pair         string  `json:"pair"`
	DEX          string  `json:"dex"`
	LiquidityUSD float64 `json:"liquidity_usd"`
	Volume24hUSD float64 `json:"volume_24h_usd"`
}

// MarketData DEX 市场数据
type MarketData struct {
	PolicyID       string          `json:"policy_id"`
	LiquidityUSD   float64         `json:"liquidity_usd"`
	Volume24hUSD   float64         `json:"volume_24h_usd"`
	Volume30dUSD   float64         `json:"volume_30d_usd"`
	PriceUSD       float64         `json:"price_usd"`
	MarketCapUSD   float64         `json:"market_cap_usd"`
	PriceChange24h float64         `json:"price_change_24h"`
	Pools          []PoolLiquidity `json:"pools"`
	Available      bool            `json:"available"`
	Timestamp      time.Time       `json:"timestamp"`
}

// MetricsAggregate 一次分析请求的规范化指标快照, 生成后不可变
type MetricsAggregate struct {
	PolicyID            string          `json:"policy_id"`
	HolderCount         int             `json:"holder_count"`
	Top10Concentration  float64         `json:"top_10_concentration"`
	Top50Concentration  float64         `json:"top_50_concentration"`
	GiniCoefficient     float64         `json:"gini_coefficient"`
	LiquidityUSD        float64         `json:"liquidity_usd"`
	Volume24hUSD        float64         `json:"volume_24h_usd"`
	Volume30dUSD        float64         `json:"volume_30d_usd"`
	PriceUSD            float64         `json:"price_usd"`
	MarketCapUSD        float64         `json:"market_cap_usd"`
	PriceChange24h      float64         `json:"price_change_24h"`
	MetadataScore       float64         `json:"metadata_score"`
	ContractRiskScore   float64         `json:"contract_risk_score"`
	TotalSupply         decimal.Decimal `json:"total_supply"`
	CirculatingSupply   decimal.Decimal `json:"circulating_supply"`
	AuditPresent        bool            `json:"audit_present"`
	KYCVerified         bool            `json:"kyc_verified"`
	MarketDataAvailable bool            `json:"market_data_available"`
	DataSource          string          `json:"data_source"`
	CollectedAt         time.Time       `json:"collected_at"`
}

// ReadinessScore 六项加权子分与总分
type ReadinessScore struct {
	Liquidity          float64 `json:"liquidity"`
	HolderDistribution float64 `json:"holder_distribution"`
	Metadata           float64 `json:"metadata"`
	Security           float64 `json:"security"`
	SupplyStability    float64 `json:"supply_stability"`
	MarketActivity     float64 `json:"market_activity"`
	TotalScore         float64 `json:"total_score"`
	Grade              string  `json:"grade"`
}

// ExchangeRequirement 单条交易所上币要求的核对结果
type ExchangeRequirement struct {
	Exchange         string  `json:"exchange"`
	Requirement      string  `json:"requirement"`
	Threshold        float64 `json:"threshold"`
	CurrentValue     float64 `json:"current_value"`
	MeetsRequirement bool    `json:"meets_requirement"`
}

// Recommendation 优先级行动建议
type Recommendation struct {
	Category        string `json:"category"`
	Priority        string `json:"priority"` // high, medium, low
	Issue           string `json:"issue"`
	Recommendation  string `json:"recommendation"`
	EstimatedImpact string `json:"estimated_impact"`
}

const (
	PriorityHigh   = "high"
	PriorityMedium = "medium"
	PriorityLow    = "low"
)

// BridgeRoute 跨链桥路线评估
type BridgeRoute struct {
	SourceChain         string  `json:"source_chain"`
	TargetChain         string  `json:"target_chain"`
	BridgeName          string  `json:"bridge_name"`
	EstimatedFee        string  `json:"estimated_fee"`
	EstimatedTime       string  `json:"estimated_time"`
	TrustModel          string  `json:"trust_model"` // trustless, hybrid, custodial
	SlippageEstimate    string  `json:"slippage_estimate"`
	Hops                int     `json:"hops"`
	RecommendationScore float64 `json:"recommendation_score"`
}

const (
	TrustTrustless = "trustless"
	TrustHybrid    = "hybrid"
	TrustCustodial = "custodial"
)

// ChainRanking 目标链综合排序
type ChainRanking struct {
	Chain          string  `json:"chain"`
	Score          float64 `json:"score"`
	LiquidityDepth float64 `json:"liquidity_depth"`
	DEXCount       float64 `json:"dex_count"`
	GasCost        float64 `json:"gas_cost"`
	UserBase       float64 `json:"user_base"`
	CEXPresence    float64 `json:"cex_presence"`
}

// LiquiditySplit 池内资产配比, 两项之和恒为 1
type LiquiditySplit struct {
	ADA   float64 `json:"ada"`
	Other float64 `json:"other"`
}

// ScheduleEntry 按周拆分的加仓计划
type ScheduleEntry struct {
	Week      int             `json:"week"`
	Date      string          `json:"date"` // YYYY-MM-DD
	AdaAmount decimal.Decimal `json:"ada_amount"`
	USDAmount decimal.Decimal `json:"usd_amount"`
}

// LiquidityPlan 流动性部署计划
type LiquidityPlan struct {
	AdaToAdd        decimal.Decimal `json:"ada_to_add"`
	AdaToAddUSD     decimal.Decimal `json:"ada_to_add_usd"`
	OptimalPoolPair string          `json:"optimal_pool_pair"`
	LiquiditySplit  LiquiditySplit  `json:"liquidity_split"`
	Schedule        []ScheduleEntry `json:"liquidity_schedule"`
}

// DecisionRecord 决策审计日志条目
type DecisionRecord struct {
	AgentID       string    `json:"agent_id"`
	DecisionType  string    `json:"decision_type"`
	DecisionHash  string    `json:"decision_hash"`
	TransactionID string    `json:"transaction_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// AnalysisResult 输出给展示层的完整分析结果
type AnalysisResult struct {
	AnalysisID           string                `json:"analysis_id"`
	PolicyID             string                `json:"policy_id"`
	TokenName            string                `json:"token_name"`
	TokenSymbol          string                `json:"token_symbol"`
	Timestamp            time.Time             `json:"timestamp"`
	Metrics              MetricsAggregate      `json:"metrics"`
	Readiness            ReadinessScore        `json:"readiness_score"`
	Recommendations      []Recommendation      `json:"recommendations"`
	ExchangeRequirements []ExchangeRequirement `json:"exchange_requirements"`
	ComplianceRates      map[string]float64    `json:"compliance_rates"`
	RecommendedExchanges []string              `json:"recommended_exchanges"`
	BridgeRoutes         []BridgeRoute         `json:"bridge_routes"`
	RecommendedChain     string                `json:"recommended_chain"`
	ChainRankings        []ChainRanking        `json:"chain_rankings"`
	LiquidityPlan        *LiquidityPlan        `json:"liquidity_plan,omitempty"`
	DecisionLogs         []DecisionRecord      `json:"decision_logs"`
	ExecutiveSummary     string                `json:"executive_summary"`
	NextSteps            []string              `json:"next_steps"`
	Warnings             []string              `json:"warnings"`
}

// ListingAlert 监控告警
type ListingAlert struct {
	Type      string    `json:"type"` // listing_ready, liquidity_low, concentration_high
	PolicyID  string    `json:"policy_id"`
	Exchange  string    `json:"exchange,omitempty"`
	Message   string    `json:"message"`
	Value     float64   `json:"value"`
	Threshold float64   `json:"threshold"`
	Timestamp time.Time `json:"timestamp"`
}

const (
	AlertListingReady      = "listing_ready"
	AlertLiquidityLow      = "liquidity_low"
	AlertConcentrationHigh = "concentration_high"
)
