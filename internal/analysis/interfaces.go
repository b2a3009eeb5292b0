package analysis

import (
	"context"

	"github.com/songzhibin97/listingflux/internal/models"
)

// Request 一次完整分析的输入
type Request struct {
	PolicyID        string   `json:"policy_id"`
	TargetExchanges []string `json:"target_exchanges"`
	TargetChains    []string `json:"target_chains"`
	// TargetLiquidityUSD 流动性部署目标, 不填时取配置缺省
	TargetLiquidityUSD float64 `json:"target_liquidity_usd"`
	// AuditPresent 与 KYCVerified 链上验不了, 由请求方自述
	AuditPresent bool `json:"audit_present"`
	KYCVerified  bool `json:"kyc_verified"`
}

// Analyzer 完整分析管线接口
type Analyzer interface {
	// Analyze 采集指标, 打分核对, 评估跨链路线并生成部署计划与摘要.
	// 采集降级记入 Warnings, 只有配置类错误会中断分析
	Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error)
}

// Logger 分析日志接口
type Logger interface {
	Error(args ...interface{})
	Info(args ...interface{})
}
