package bridge

import (
	"fmt"
	"math"
	"sort"

	"github.com/songzhibin97/listingflux/internal/models"
)

const weightTolerance = 1e-9

// 未知信任模型的保守得分
const defaultTrustScore = 70

// referenceTransferUSD 费用展示所用的参考转账额
const referenceTransferUSD = 1000

// RouteRanker 按策略表与注入目录评估路线, 无副作用, 可并发使用
type RouteRanker struct {
	params  Params
	catalog map[string][]Offer
	chains  map[string]ChainInfo
}

func NewRanker(params Params, catalog map[string][]Offer, chains map[string]ChainInfo) (*RouteRanker, error) {
	w := params.Weights
	if sum := w.Reliability + w.Fee + w.Time + w.Trust; math.Abs(sum-1) > weightTolerance {
		return nil, fmt.Errorf("route weights sum to %v, want 1", sum)
	}
	if params.HopPenalty < 0 {
		return nil, fmt.Errorf("hop penalty must be >= 0, got %v", params.HopPenalty)
	}
	if params.SourceChain == "" {
		return nil, fmt.Errorf("source chain is empty")
	}
	return &RouteRanker{params: params, catalog: catalog, chains: chains}, nil
}

// NewRankerWithDefaults 使用缺省策略与目录
func NewRankerWithDefaults() *RouteRanker {
	r, err := NewRanker(DefaultParams(), DefaultCatalog(), DefaultChainInfo())
	if err != nil {
		panic(err) // 缺省表不可能非法
	}
	return r
}

func (r *RouteRanker) Rank(targetChains []string) ([]models.BridgeRoute, string, []string) {
	var (
		routes      []models.BridgeRoute
		recommended string
		bestScore   = math.Inf(-1)
		skipped     []string
	)
	for _, chain := range targetChains {
		offers, ok := r.catalog[chain]
		if !ok || len(offers) == 0 {
			skipped = append(skipped, chain)
			continue
		}
		group := r.rankChain(chain, offers)
		if top := group[0].RecommendationScore; top > bestScore {
			bestScore = top
			recommended = chain
		}
		routes = append(routes, group...)
	}
	return routes, recommended, skipped
}

// rankChain 单链内评分并按分数降序, 平分按跳数与费用升序
func (r *RouteRanker) rankChain(chain string, offers []Offer) []models.BridgeRoute {
	type scored struct {
		route models.BridgeRoute
		fee   float64
	}
	group := make([]scored, 0, len(offers))
	for _, o := range offers {
		fee := o.FeeBaseUSD + referenceTransferUSD*o.FeePct/100
		group = append(group, scored{
			fee: fee,
			route: models.BridgeRoute{
				SourceChain:         r.params.SourceChain,
				TargetChain:         chain,
				BridgeName:          o.Bridge,
				EstimatedFee:        fmt.Sprintf("$%.2f (for $%d)", fee, referenceTransferUSD),
				EstimatedTime:       fmt.Sprintf("%d-%d min", o.MinMinutes, o.MaxMinutes),
				TrustModel:          o.Trust,
				SlippageEstimate:    o.Slippage,
				Hops:                o.Hops,
				RecommendationScore: r.scoreOffer(o),
			},
		})
	}
	sort.SliceStable(group, func(i, j int) bool {
		a, b := group[i], group[j]
		if a.route.RecommendationScore != b.route.RecommendationScore {
			return a.route.RecommendationScore > b.route.RecommendationScore
		}
		if a.route.Hops != b.route.Hops {
			return a.route.Hops < b.route.Hops
		}
		return a.fee < b.fee
	})
	out := make([]models.BridgeRoute, len(group))
	for i, g := range group {
		out[i] = g.route
	}
	return out
}

func (r *RouteRanker) scoreOffer(o Offer) float64 {
	feeComp := math.Max(0, 100-o.FeeBaseUSD*2)
	avgTime := float64(o.MinMinutes+o.MaxMinutes) / 2
	timeComp := math.Max(0, 100-avgTime*2)
	trust, ok := r.params.TrustScores[o.Trust]
	if !ok {
		trust = defaultTrustScore
	}

	w := r.params.Weights
	score := o.Reliability*w.Reliability + feeComp*w.Fee + timeComp*w.Time + trust*w.Trust
	if o.Hops > 1 {
		score -= r.params.HopPenalty * float64(o.Hops-1)
	}
	return round1(clamp(score))
}

// chainWeights 链基本面排序权重
var chainWeights = struct {
	Depth, UserBase, CEX, Gas float64
}{Depth: 0.30, UserBase: 0.25, CEX: 0.25, Gas: 0.20}

// 低流动性代币优先低 gas 链, 深池代币优先深市场链
const (
	smallTokenLiquidityUSD = 50000
	cheapGasUSD            = 5
	deepMarketDepth        = 80
	chainFitBonus          = 10
)

func (r *RouteRanker) ChainRankings(tokenLiquidityUSD float64) []models.ChainRanking {
	out := make([]models.ChainRanking, 0, len(r.chains))
	for chain, info := range r.chains {
		score := info.LiquidityDepth*chainWeights.Depth +
			info.UserBase*chainWeights.UserBase +
			info.CEXPresence*chainWeights.CEX +
			math.Max(0, 100-info.GasCost*2)*chainWeights.Gas
		if tokenLiquidityUSD < smallTokenLiquidityUSD && info.GasCost < cheapGasUSD {
			score += chainFitBonus
		} else if tokenLiquidityUSD >= smallTokenLiquidityUSD && info.LiquidityDepth > deepMarketDepth {
			score += chainFitBonus
		}
		out = append(out, models.ChainRanking{
			Chain:          chain,
			Score:          round1(math.Min(100, score)),
			LiquidityDepth: info.LiquidityDepth,
			DEXCount:       info.DEXCount,
			GasCost:        info.GasCost,
			UserBase:       info.UserBase,
			CEXPresence:    info.CEXPresence,
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Chain < out[j].Chain
	})
	return out
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
