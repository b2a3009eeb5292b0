package recommend

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/songzhibin97/listingflux/internal/models"
)

// GapSynthesizer 将未达标项合成为建议, 无副作用, 可并发使用
type GapSynthesizer struct {
	params Params
}

func NewSynthesizer(params Params) (*GapSynthesizer, error) {
	if params.HighGapRatio <= 0 {
		return nil, fmt.Errorf("high gap ratio must be > 0, got %v", params.HighGapRatio)
	}
	if params.ImprovementUrgent > params.ImprovementThreshold {
		return nil, fmt.Errorf("improvement urgent cut %v above threshold %v",
			params.ImprovementUrgent, params.ImprovementThreshold)
	}
	return &GapSynthesizer{params: params}, nil
}

// NewSynthesizerWithDefaults 使用缺省策略
func NewSynthesizerWithDefaults() *GapSynthesizer {
	s, err := NewSynthesizer(DefaultParams())
	if err != nil {
		panic(err) // 缺省表不可能非法
	}
	return s
}

// gapGroup 同一要求在多家交易所的未达标聚合
type gapGroup struct {
	requirement string
	exchanges   []string
	threshold   float64
	current     float64
}

func (s *GapSynthesizer) Synthesize(reqs []models.ExchangeRequirement, score models.ReadinessScore) []models.Recommendation {
	totalExchanges := countExchanges(reqs)
	groups := groupUnmet(reqs)

	var recs []models.Recommendation
	for _, g := range groups {
		recs = append(recs, models.Recommendation{
			Category:        "Exchange Requirement",
			Priority:        s.priority(g, totalExchanges),
			Issue:           strings.Join(g.exchanges, ", ") + ": " + g.requirement,
			Recommendation:  currentStatus(g) + ". Refer to exchange listing documentation for details.",
			EstimatedImpact: "Required for listing approval",
		})
	}

	if len(groups) == 0 {
		recs = append(recs, models.Recommendation{
			Category:        "Listing Readiness",
			Priority:        models.PriorityLow,
			Issue:           "No outstanding exchange requirements",
			Recommendation:  "Token satisfies all targeted exchange listing requirements. Proceed with listing applications and keep monitoring metrics.",
			EstimatedImpact: "Ready for listing submissions",
		})
	}

	recs = append(recs, s.improvements(score)...)

	sort.SliceStable(recs, func(i, j int) bool {
		return priorityRank(recs[i].Priority) < priorityRank(recs[j].Priority)
	})
	return recs
}

func (s *GapSynthesizer) priority(g gapGroup, totalExchanges int) string {
	gap := relativeGap(g)
	switch {
	case gap > s.params.HighGapRatio:
		return models.PriorityHigh
	case totalExchanges > 0 && len(g.exchanges) == totalExchanges:
		return models.PriorityHigh
	case len(g.exchanges) > 1:
		return models.PriorityMedium
	default:
		return models.PriorityLow
	}
}

// relativeGap 缺口相对门槛的比例, 上限类与下限类统一取绝对差
func relativeGap(g gapGroup) float64 {
	if g.threshold <= 0 {
		return 0
	}
	return math.Abs(g.threshold-g.current) / g.threshold
}

func (s *GapSynthesizer) improvements(score models.ReadinessScore) []models.Recommendation {
	type factor struct {
		sub      float64
		category string
		issue    string
		advice   string
		impact   string
	}
	factors := []factor{
		{score.Liquidity, "Liquidity", "Low DEX liquidity",
			"Deepen the primary pool or run LP incentive programs",
			"Raises the liquidity score and unlocks larger venues"},
		{score.HolderDistribution, "Holder Distribution", "Concentrated token holdings",
			"Broaden distribution through airdrops, incentives or staggered vesting",
			"Reduces concentration risk flagged in listing reviews"},
		{score.Metadata, "Metadata", "Incomplete token metadata",
			"Publish full on-chain metadata: name, ticker, description, image and project links",
			"Passes metadata completeness checks"},
		{score.Security, "Security", "Weak security posture",
			"Commission a third-party contract audit and publish the report",
			"Satisfies audit requirements at tier 1 venues"},
	}

	var recs []models.Recommendation
	for _, f := range factors {
		if f.sub >= s.params.ImprovementThreshold {
			continue
		}
		priority := models.PriorityLow
		if f.sub < s.params.ImprovementUrgent {
			priority = models.PriorityMedium
		}
		recs = append(recs, models.Recommendation{
			Category:        f.category,
			Priority:        priority,
			Issue:           f.issue,
			Recommendation:  f.advice,
			EstimatedImpact: f.impact,
		})
	}
	return recs
}

// groupUnmet 未达标项按要求文本去重, 交易所保持出现顺序
func groupUnmet(reqs []models.ExchangeRequirement) []gapGroup {
	index := make(map[string]int)
	var groups []gapGroup
	for _, r := range reqs {
		if r.MeetsRequirement {
			continue
		}
		i, ok := index[r.Requirement]
		if !ok {
			index[r.Requirement] = len(groups)
			groups = append(groups, gapGroup{
				requirement: r.Requirement,
				exchanges:   []string{r.Exchange},
				threshold:   r.Threshold,
				current:     r.CurrentValue,
			})
			continue
		}
		if !contains(groups[i].exchanges, r.Exchange) {
			groups[i].exchanges = append(groups[i].exchanges, r.Exchange)
		}
	}
	return groups
}

func countExchanges(reqs []models.ExchangeRequirement) int {
	seen := make(map[string]bool)
	for _, r := range reqs {
		seen[r.Exchange] = true
	}
	return len(seen)
}

func currentStatus(g gapGroup) string {
	switch kind, _, _ := strings.Cut(g.requirement, ":"); kind {
	case "Minimum liquidity":
		return fmt.Sprintf("Current liquidity: $%.0f", g.current)
	case "Minimum holders":
		return fmt.Sprintf("Current holders: %.0f", g.current)
	case "Minimum 24h volume":
		return fmt.Sprintf("Current 24h volume: $%.0f", g.current)
	case "Minimum 30d volume":
		return fmt.Sprintf("Current 30d volume: $%.0f", g.current)
	case "Maximum top 10 concentration":
		return fmt.Sprintf("Current top 10 concentration: %.1f%%", g.current)
	case "Complete token metadata":
		return fmt.Sprintf("Current metadata score: %.0f", g.current)
	case "Security audit required":
		return "Manual verification needed"
	case "Team KYC required":
		return "Not verified"
	default:
		return fmt.Sprintf("Current value: %g", g.current)
	}
}

func priorityRank(p string) int {
	switch p {
	case models.PriorityHigh:
		return 0
	case models.PriorityMedium:
		return 1
	default:
		return 2
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
