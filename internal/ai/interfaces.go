package ai

import (
	"context"

	"github.com/songzhibin97/listingflux/internal/models"
)

// Narrator defines the optional narrative capability
type Narrator interface {
	// GenerateExecutiveSummary 根据指标, 就绪度与建议生成执行摘要.
	// 调用失败由调用方降级为模板文案, 不阻断打分管线
	GenerateExecutiveSummary(ctx context.Context, metrics models.MetricsAggregate,
		score models.ReadinessScore, recs []models.Recommendation) (string, error)
}
