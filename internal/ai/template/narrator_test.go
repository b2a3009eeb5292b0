package template

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/listingflux/internal/models"
)

func TestGenerateExecutiveSummary(t *testing.T) {
	n := NewTemplateNarrator()
	metrics := models.MetricsAggregate{LiquidityUSD: 2000000, HolderCount: 5000}
	score := models.ReadinessScore{TotalScore: 95.5, Grade: "A"}

	summary, err := n.GenerateExecutiveSummary(context.Background(), metrics, score, nil)
	require.NoError(t, err)

	assert.Equal(t,
		"Token readiness grade: A (95.5/100). Token shows strong fundamentals for exchange listing. "+
			"Current liquidity: $2,000,000. Holder count: 5,000.",
		summary)
}

func TestGenerateExecutiveSummaryGradeSentences(t *testing.T) {
	n := NewTemplateNarrator()
	tests := []struct {
		grade string
		want  string
	}{
		{"A", "strong fundamentals"},
		{"B", "strong fundamentals"},
		{"C", "moderate readiness"},
		{"D", "significant improvements"},
		{"F", "significant improvements"},
	}
	for _, tt := range tests {
		t.Run(tt.grade, func(t *testing.T) {
			summary, err := n.GenerateExecutiveSummary(context.Background(),
				models.MetricsAggregate{}, models.ReadinessScore{Grade: tt.grade}, nil)
			require.NoError(t, err)
			assert.Contains(t, summary, tt.want)
		})
	}
}

func TestGenerateExecutiveSummaryCountsGaps(t *testing.T) {
	n := NewTemplateNarrator()
	recs := []models.Recommendation{
		{Category: "Exchange Requirement", Priority: models.PriorityHigh},
		{Category: "Exchange Requirement", Priority: models.PriorityLow},
		{Category: "Liquidity", Priority: models.PriorityMedium},
	}

	summary, err := n.GenerateExecutiveSummary(context.Background(),
		models.MetricsAggregate{}, models.ReadinessScore{Grade: "D"}, recs)
	require.NoError(t, err)

	assert.Contains(t, summary, "2 exchange requirements need attention.")
}

func TestGenerateExecutiveSummaryDeterministic(t *testing.T) {
	n := NewTemplateNarrator()
	metrics := models.MetricsAggregate{LiquidityUSD: 12345, HolderCount: 678}
	score := models.ReadinessScore{TotalScore: 61.2, Grade: "C"}

	a, err := n.GenerateExecutiveSummary(context.Background(), metrics, score, nil)
	require.NoError(t, err)
	b, err := n.GenerateExecutiveSummary(context.Background(), metrics, score, nil)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}
