package recommend

import (
	"github.com/songzhibin97/listingflux/internal/models"
)

// Synthesizer 建议合成接口
type Synthesizer interface {
	// Synthesize 将核对结果与就绪度合成为去重后的优先级建议列表.
	// reqs 传入完整核对结果(含达标项), 未达标项从中筛出,
	// 无任何缺口时返回单条正向状态建议, 永不返回空列表
	Synthesize(reqs []models.ExchangeRequirement, score models.ReadinessScore) []models.Recommendation
}

// Params 建议合成策略
type Params struct {
	// HighGapRatio 相对缺口超过该比例直接判为 high
	HighGapRatio float64 `json:"high_gap_ratio" yaml:"high_gap_ratio"`
	// ImprovementThreshold 子分低于该值时追加改进建议
	ImprovementThreshold float64 `json:"improvement_threshold" yaml:"improvement_threshold"`
	// ImprovementUrgent 子分低于该值时改进建议升为 medium
	ImprovementUrgent float64 `json:"improvement_urgent" yaml:"improvement_urgent"`
}

// DefaultParams 缺省建议策略
func DefaultParams() Params {
	return Params{
		HighGapRatio:         0.5,
		ImprovementThreshold: 60,
		ImprovementUrgent:    40,
	}
}
