package scoring

import (
	"fmt"
	"math"

	"github.com/songzhibin97/listingflux/internal/models"
)

const weightTolerance = 1e-9

// DefaultParams 缺省打分策略
func DefaultParams() Params {
	return Params{
		Weights: Weights{
			Liquidity:          0.30,
			HolderDistribution: 0.25,
			Metadata:           0.15,
			Security:           0.15,
			SupplyStability:    0.10,
			MarketActivity:     0.05,
		},
		NoMarketWeights: Weights{
			HolderDistribution: 0.40,
			Metadata:           0.25,
			Security:           0.25,
			SupplyStability:    0.10,
		},
		GradeCuts: []GradeCut{
			{Grade: "A", Min: 90},
			{Grade: "B", Min: 75},
			{Grade: "C", Min: 60},
			{Grade: "D", Min: 40},
			{Grade: "F", Min: 0},
		},
	}
}

func (w Weights) sum() float64 {
	return w.Liquidity + w.HolderDistribution + w.Metadata + w.Security + w.SupplyStability + w.MarketActivity
}

// Validate 校验权重之和与评级表顺序
func (p Params) Validate() error {
	if math.Abs(p.Weights.sum()-1) > weightTolerance {
		return fmt.Errorf("scoring weights sum to %v, want 1", p.Weights.sum())
	}
	if math.Abs(p.NoMarketWeights.sum()-1) > weightTolerance {
		return fmt.Errorf("no-market scoring weights sum to %v, want 1", p.NoMarketWeights.sum())
	}
	if len(p.GradeCuts) == 0 {
		return fmt.Errorf("grade cuts are empty")
	}
	for i, cut := range p.GradeCuts {
		if cut.Grade == "" {
			return fmt.Errorf("grade cut %d has empty grade", i)
		}
		if i > 0 && cut.Min >= p.GradeCuts[i-1].Min {
			return fmt.Errorf("grade cuts must be strictly descending, got %v then %v",
				p.GradeCuts[i-1].Min, cut.Min)
		}
	}
	return nil
}

// ReadinessScorer 按策略表计算就绪度, 无副作用, 可并发使用
type ReadinessScorer struct {
	params Params
}

func NewScorer(params Params) (*ReadinessScorer, error) {
	if err := params.Validate(); err != nil {
		return nil, fmt.Errorf("scoring params: %w", err)
	}
	return &ReadinessScorer{params: params}, nil
}

// NewScorerWithDefaults 使用缺省策略表
func NewScorerWithDefaults() *ReadinessScorer {
	s, err := NewScorer(DefaultParams())
	if err != nil {
		panic(err) // 缺省表不可能非法
	}
	return s
}

func (s *ReadinessScorer) Score(m models.MetricsAggregate) models.ReadinessScore {
	score := models.ReadinessScore{
		Liquidity:          round1(clamp(liquidityScore(m))),
		HolderDistribution: round1(clamp(holderDistributionScore(m))),
		Metadata:           round1(clamp(m.MetadataScore)),
		Security:           round1(clamp(securityScore(m))),
		SupplyStability:    round1(clamp(supplyStabilityScore(m))),
		MarketActivity:     round1(clamp(marketActivityScore(m))),
	}

	w := s.params.Weights
	if !m.MarketDataAvailable {
		w = s.params.NoMarketWeights
	}
	total := score.Liquidity*w.Liquidity +
		score.HolderDistribution*w.HolderDistribution +
		score.Metadata*w.Metadata +
		score.Security*w.Security +
		score.SupplyStability*w.SupplyStability +
		score.MarketActivity*w.MarketActivity
	score.TotalScore = round1(clamp(total))
	score.Grade = s.grade(score.TotalScore)
	return score
}

func (s *ReadinessScorer) grade(total float64) string {
	for _, cut := range s.params.GradeCuts {
		if total >= cut.Min {
			return cut.Grade
		}
	}
	return s.params.GradeCuts[len(s.params.GradeCuts)-1].Grade
}

func liquidityScore(m models.MetricsAggregate) float64 {
	if !m.MarketDataAvailable {
		return 0
	}
	l := m.LiquidityUSD
	switch {
	case l >= 100000:
		return 100
	case l >= 50000:
		return 70 + (l-50000)/50000*30
	case l >= 10000:
		return 40 + (l-10000)/40000*30
	case l > 0:
		return l / 10000 * 40
	default:
		return 0
	}
}

func holderDistributionScore(m models.MetricsAggregate) float64 {
	if m.HolderCount <= 0 {
		return 0
	}
	t := m.Top10Concentration
	var base float64
	switch {
	case t <= 20:
		base = 100
	case t <= 40:
		base = 80 - (t-20)/20*30
	case t <= 60:
		base = 50 - (t-40)/20*30
	default:
		base = math.Max(0, 20-(t-60)/40*20)
	}
	switch {
	case m.HolderCount >= 10000:
		base += 20
	case m.HolderCount >= 1000:
		base += 10
	case m.HolderCount >= 500:
		base += 5
	}
	return math.Min(100, base)
}

// securityScore 合约风险为 0 视为风险评估缺失, 不给安全分
func securityScore(m models.MetricsAggregate) float64 {
	if m.ContractRiskScore <= 0 {
		return 0
	}
	return 100 - m.ContractRiskScore
}

func supplyStabilityScore(m models.MetricsAggregate) float64 {
	if m.TotalSupply.Sign() <= 0 {
		return 0
	}
	r, _ := m.CirculatingSupply.Div(m.TotalSupply).Float64()
	switch {
	case r >= 0.95:
		return 95
	case r >= 0.75:
		return 85
	case r >= 0.50:
		return 70
	case r >= 0.25:
		return 50
	case r > 0:
		return 35
	default:
		return 0
	}
}

func marketActivityScore(m models.MetricsAggregate) float64 {
	if !m.MarketDataAvailable || m.LiquidityUSD <= 0 {
		return 0
	}
	r := m.Volume24hUSD / m.LiquidityUSD
	switch {
	case r >= 0.15:
		return 100
	case r >= 0.05:
		return 60 + (r-0.05)/0.1*40
	default:
		return r / 0.05 * 60
	}
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
