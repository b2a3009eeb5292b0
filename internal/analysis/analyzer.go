package analysis

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/songzhibin97/listingflux/internal/ai"
	"github.com/songzhibin97/listingflux/internal/ai/template"
	"github.com/songzhibin97/listingflux/internal/audit"
	"github.com/songzhibin97/listingflux/internal/bridge"
	"github.com/songzhibin97/listingflux/internal/data"
	"github.com/songzhibin97/listingflux/internal/exchange"
	"github.com/songzhibin97/listingflux/internal/liquidity"
	"github.com/songzhibin97/listingflux/internal/models"
	"github.com/songzhibin97/listingflux/internal/prices"
	"github.com/songzhibin97/listingflux/internal/recommend"
	"github.com/songzhibin97/listingflux/internal/scoring"
)

const (
	defaultTargetLiquidityUSD = 100000
	defaultFallbackADAPrice   = 0.45
	defaultNarrativeTimeout   = 20 * time.Second
)

// Options 管线缺省参数
type Options struct {
	DefaultExchanges          []string      `json:"default_exchanges" yaml:"default_exchanges"`
	DefaultChains             []string      `json:"default_chains" yaml:"default_chains"`
	DefaultTargetLiquidityUSD float64       `json:"default_target_liquidity_usd" yaml:"default_target_liquidity_usd"`
	FallbackADAPriceUSD       float64       `json:"fallback_ada_price_usd" yaml:"fallback_ada_price_usd"`
	NarrativeTimeout          time.Duration `json:"narrative_timeout" yaml:"narrative_timeout"`
}

// Deps 管线依赖, Narrator 与 PriceSource 允许缺省
type Deps struct {
	Collector   data.DataCollector
	Scorer      scoring.Scorer
	Matcher     exchange.Matcher
	Synthesizer recommend.Synthesizer
	Ranker      bridge.Ranker
	Planner     liquidity.Planner
	Narrator    ai.Narrator
	PriceSource prices.PriceSource
	Recorder    audit.Recorder
	Logger      Logger
}

// TokenAnalyzer 串起采集, 打分, 核对, 路线与部署计划的完整管线
type TokenAnalyzer struct {
	collector   data.DataCollector
	scorer      scoring.Scorer
	matcher     exchange.Matcher
	synthesizer recommend.Synthesizer
	ranker      bridge.Ranker
	planner     liquidity.Planner
	narrator    ai.Narrator
	fallback    ai.Narrator
	priceSource prices.PriceSource
	recorder    audit.Recorder
	opts        Options
	logger      Logger
}

func NewTokenAnalyzer(deps Deps, opts Options) (*TokenAnalyzer, error) {
	switch {
	case deps.Collector == nil:
		return nil, fmt.Errorf("data collector is required")
	case deps.Scorer == nil:
		return nil, fmt.Errorf("scorer is required")
	case deps.Matcher == nil:
		return nil, fmt.Errorf("exchange matcher is required")
	case deps.Synthesizer == nil:
		return nil, fmt.Errorf("recommendation synthesizer is required")
	case deps.Ranker == nil:
		return nil, fmt.Errorf("bridge ranker is required")
	case deps.Planner == nil:
		return nil, fmt.Errorf("liquidity planner is required")
	case deps.Recorder == nil:
		return nil, fmt.Errorf("audit recorder is required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	}

	if len(opts.DefaultExchanges) == 0 {
		opts.DefaultExchanges = []string{"Binance", "KuCoin", "Gate.io"}
	}
	if len(opts.DefaultChains) == 0 {
		opts.DefaultChains = []string{"Ethereum", "BSC", "Polygon"}
	}
	if opts.DefaultTargetLiquidityUSD <= 0 {
		opts.DefaultTargetLiquidityUSD = defaultTargetLiquidityUSD
	}
	if opts.FallbackADAPriceUSD <= 0 {
		opts.FallbackADAPriceUSD = defaultFallbackADAPrice
	}
	if opts.NarrativeTimeout <= 0 {
		opts.NarrativeTimeout = defaultNarrativeTimeout
	}

	return &TokenAnalyzer{
		collector:   deps.Collector,
		scorer:      deps.Scorer,
		matcher:     deps.Matcher,
		synthesizer: deps.Synthesizer,
		ranker:      deps.Ranker,
		planner:     deps.Planner,
		narrator:    deps.Narrator,
		fallback:    template.NewTemplateNarrator(),
		priceSource: deps.PriceSource,
		recorder:    deps.Recorder,
		opts:        opts,
		logger:      deps.Logger,
	}, nil
}

func (a *TokenAnalyzer) Analyze(ctx context.Context, req Request) (*models.AnalysisResult, error) {
	req, err := a.normalize(req)
	if err != nil {
		return nil, err
	}

	analysisID := uuid.New().String()
	now := time.Now().UTC()
	warnings := make([]string, 0, 4)

	a.logger.Info("starting token analysis", analysisID, "for policy", req.PolicyID)

	aggregate, err := a.collector.CollectMetrics(ctx, req.PolicyID)
	if err != nil {
		a.logger.Error("metrics collection failed for", req.PolicyID, ":", err)
		warnings = append(warnings, fmt.Sprintf("metrics collection failed: %v", err))
		aggregate = &models.MetricsAggregate{PolicyID: req.PolicyID, CollectedAt: now}
	}
	aggregate.AuditPresent = req.AuditPresent
	aggregate.KYCVerified = req.KYCVerified

	if !aggregate.MarketDataAvailable {
		warnings = append(warnings, "market data unavailable, liquidity and volume treated as zero")
	}
	if aggregate.HolderCount == 0 {
		warnings = append(warnings, "holder data unavailable or token has no holders yet")
	}

	// 基本信息在 CollectMetrics 时已进缓存, 这里基本是缓存读
	info, err := a.collector.CollectTokenInfo(ctx, req.PolicyID)
	if err != nil {
		a.logger.Error("failed to collect token info for", req.PolicyID, ":", err)
		warnings = append(warnings, "token metadata unavailable")
		info = nil
	}

	var (
		wg       sync.WaitGroup
		score    models.ReadinessScore
		reqs     []models.ExchangeRequirement
		matchErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		score = a.scorer.Score(*aggregate)
	}()
	go func() {
		defer wg.Done()
		reqs, matchErr = a.matcher.Match(*aggregate, req.TargetExchanges)
	}()
	wg.Wait()
	if matchErr != nil {
		return nil, fmt.Errorf("failed to check exchange requirements: %w", matchErr)
	}

	recs := a.synthesizer.Synthesize(reqs, score)

	routes, recommendedChain, skipped := a.ranker.Rank(req.TargetChains)
	if len(skipped) > 0 {
		a.logger.Info("skipping unsupported target chains:", strings.Join(skipped, ", "))
	}
	rankings := a.ranker.ChainRankings(aggregate.LiquidityUSD)

	adaPrice, priceWarning := a.adaPrice(ctx)
	if priceWarning != "" {
		warnings = append(warnings, priceWarning)
	}

	var pools []models.PoolLiquidity
	if aggregate.MarketDataAvailable {
		if market, err := a.collector.CollectMarketData(ctx, req.PolicyID); err != nil {
			a.logger.Error("failed to refresh pool data for", req.PolicyID, ":", err)
		} else {
			pools = market.Pools
		}
	}
	plan := a.planner.Plan(aggregate.LiquidityUSD, req.TargetLiquidityUSD, adaPrice, pools, now)

	summary, narrativeWarning := a.narrate(ctx, *aggregate, score, recs)
	if narrativeWarning != "" {
		warnings = append(warnings, narrativeWarning)
	}
	if recommendedChain != "" {
		summary += fmt.Sprintf(" Recommended target chain: %s.", recommendedChain)
	}

	decisionLogs := make([]models.DecisionRecord, 0, 1)
	record, err := a.recorder.RecordDecision(ctx, audit.DecisionTypeAnalysis, map[string]interface{}{
		"analysis_id":       analysisID,
		"policy_id":         req.PolicyID,
		"total_score":       score.TotalScore,
		"grade":             score.Grade,
		"recommended_chain": recommendedChain,
	})
	if err != nil {
		a.logger.Error("failed to record decision:", err)
		warnings = append(warnings, "decision audit unavailable")
	} else {
		decisionLogs = append(decisionLogs, *record)
	}

	tokenName, tokenSymbol := "Unknown", "???"
	if info != nil {
		if info.Name != "" {
			tokenName = info.Name
		}
		if info.Symbol != "" {
			tokenSymbol = info.Symbol
		}
	}

	result := &models.AnalysisResult{
		AnalysisID:           analysisID,
		PolicyID:             req.PolicyID,
		TokenName:            tokenName,
		TokenSymbol:          tokenSymbol,
		Timestamp:            now,
		Metrics:              *aggregate,
		Readiness:            score,
		Recommendations:      recs,
		ExchangeRequirements: reqs,
		ComplianceRates:      exchange.ComplianceRates(reqs),
		RecommendedExchanges: a.matcher.Recommended(*aggregate),
		BridgeRoutes:         routes,
		RecommendedChain:     recommendedChain,
		ChainRankings:        rankings,
		LiquidityPlan:        &plan,
		DecisionLogs:         decisionLogs,
		ExecutiveSummary:     summary,
		NextSteps:            buildNextSteps(recs, reqs),
		Warnings:             warnings,
	}

	a.logger.Info("analysis complete", analysisID, "grade", score.Grade, "score", score.TotalScore)
	return result, nil
}

func (a *TokenAnalyzer) normalize(req Request) (Request, error) {
	if req.PolicyID == "" {
		return req, fmt.Errorf("policy id is required")
	}
	if len(req.TargetExchanges) == 0 {
		req.TargetExchanges = a.opts.DefaultExchanges
	}
	if len(req.TargetChains) == 0 {
		req.TargetChains = a.opts.DefaultChains
	}
	if req.TargetLiquidityUSD <= 0 {
		req.TargetLiquidityUSD = a.opts.DefaultTargetLiquidityUSD
	}
	return req, nil
}

// adaPrice 查询实时 ADA 价格, 失败或未配置价格源时退回兜底价
func (a *TokenAnalyzer) adaPrice(ctx context.Context) (float64, string) {
	if a.priceSource == nil {
		return a.opts.FallbackADAPriceUSD, ""
	}
	price, err := a.priceSource.AdaPriceUSD(ctx)
	if err != nil {
		a.logger.Error("ada price lookup failed:", err)
		return a.opts.FallbackADAPriceUSD,
			fmt.Sprintf("ada price lookup failed, using fallback $%.2f", a.opts.FallbackADAPriceUSD)
	}
	return price, ""
}

// narrate 优先走 LLM 摘要, 失败或未配置时用模板摘要
func (a *TokenAnalyzer) narrate(ctx context.Context, metrics models.MetricsAggregate,
	score models.ReadinessScore, recs []models.Recommendation) (string, string) {

	if a.narrator != nil {
		nctx, cancel := context.WithTimeout(ctx, a.opts.NarrativeTimeout)
		defer cancel()

		summary, err := a.narrator.GenerateExecutiveSummary(nctx, metrics, score, recs)
		if err == nil {
			return summary, ""
		}
		a.logger.Error("narrative generation failed:", err)

		summary, _ = a.fallback.GenerateExecutiveSummary(ctx, metrics, score, recs)
		return summary, "narrative generation failed, using template summary"
	}

	summary, _ := a.fallback.GenerateExecutiveSummary(ctx, metrics, score, recs)
	return summary, ""
}

// buildNextSteps 汇总高优建议, 未达标要求与中优建议为行动清单
func buildNextSteps(recs []models.Recommendation, reqs []models.ExchangeRequirement) []string {
	steps := make([]string, 0, 7)

	added := 0
	for _, r := range recs {
		if r.Priority != models.PriorityHigh {
			continue
		}
		steps = append(steps, "[HIGH] "+r.Recommendation)
		added++
		if added == 3 {
			break
		}
	}

	added = 0
	for _, r := range reqs {
		if r.MeetsRequirement {
			continue
		}
		steps = append(steps, "[EXCHANGE] "+r.Requirement)
		added++
		if added == 2 {
			break
		}
	}

	added = 0
	for _, r := range recs {
		if r.Priority != models.PriorityMedium {
			continue
		}
		steps = append(steps, "[MEDIUM] "+r.Recommendation)
		added++
		if added == 2 {
			break
		}
	}

	if len(steps) == 0 {
		steps = append(steps, "Continue monitoring metrics and market conditions")
	}
	return steps
}
