package audit

import (
	"context"

	"github.com/songzhibin97/listingflux/internal/models"
)

// DecisionTypeAnalysis 完整分析流程的决策类型
const DecisionTypeAnalysis = "token_analysis"

// Recorder 代理决策审计接口
type Recorder interface {
	// RecordDecision 记录一次决策, 提交失败时降级为本地凭证, 返回的日志条目总是可用
	RecordDecision(ctx context.Context, decisionType string, payload interface{}) (*models.DecisionRecord, error)
}

// Logger 审计日志接口
type Logger interface {
	Error(args ...interface{})
	Info(args ...interface{})
}
