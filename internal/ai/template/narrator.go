package template

import (
	"context"
	"fmt"
	"strings"

	"github.com/songzhibin97/listingflux/internal/models"
	"github.com/songzhibin97/listingflux/internal/utils/format"
)

// TemplateNarrator 确定性模板摘要, 作为 LLM 不可用时的降级实现
type TemplateNarrator struct{}

func NewTemplateNarrator() *TemplateNarrator {
	return &TemplateNarrator{}
}

// GenerateExecutiveSummary implements the Narrator interface, never fails
func (n *TemplateNarrator) GenerateExecutiveSummary(_ context.Context, metrics models.MetricsAggregate,
	score models.ReadinessScore, recs []models.Recommendation) (string, error) {

	var b strings.Builder
	fmt.Fprintf(&b, "Token readiness grade: %s (%.1f/100). ", score.Grade, score.TotalScore)
	switch score.Grade {
	case "A", "B":
		b.WriteString("Token shows strong fundamentals for exchange listing. ")
	case "C":
		b.WriteString("Token has moderate readiness with areas for improvement. ")
	default:
		b.WriteString("Token requires significant improvements before exchange listing. ")
	}
	fmt.Fprintf(&b, "Current liquidity: $%s. Holder count: %s.",
		format.Comma(metrics.LiquidityUSD), format.Comma(float64(metrics.HolderCount)))
	if gaps := countGaps(recs); gaps > 0 {
		fmt.Fprintf(&b, " %d exchange requirements need attention.", gaps)
	}
	return b.String(), nil
}

func countGaps(recs []models.Recommendation) int {
	n := 0
	for _, r := range recs {
		if r.Category == "Exchange Requirement" {
			n++
		}
	}
	return n
}
