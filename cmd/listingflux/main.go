package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/songzhibin97/listingflux/internal/ai"
	"github.com/songzhibin97/listingflux/internal/ai/deepseek"
	"github.com/songzhibin97/listingflux/internal/ai/openai"
	"github.com/songzhibin97/listingflux/internal/analysis"
	"github.com/songzhibin97/listingflux/internal/audit"
	"github.com/songzhibin97/listingflux/internal/bridge"
	"github.com/songzhibin97/listingflux/internal/configs"
	"github.com/songzhibin97/listingflux/internal/data"
	"github.com/songzhibin97/listingflux/internal/data/cache"
	"github.com/songzhibin97/listingflux/internal/data/collector"
	"github.com/songzhibin97/listingflux/internal/data/collector/blockfrost"
	"github.com/songzhibin97/listingflux/internal/data/collector/minswap"
	"github.com/songzhibin97/listingflux/internal/data/collector/muesliswap"
	"github.com/songzhibin97/listingflux/internal/exchange"
	"github.com/songzhibin97/listingflux/internal/liquidity"
	"github.com/songzhibin97/listingflux/internal/models"
	"github.com/songzhibin97/listingflux/internal/monitor"
	"github.com/songzhibin97/listingflux/internal/prices"
	binancePrices "github.com/songzhibin97/listingflux/internal/prices/binance"
	"github.com/songzhibin97/listingflux/internal/recommend"
	"github.com/songzhibin97/listingflux/internal/scoring"
)

type ListingSystem struct {
	config    *configs.Config
	collector data.DataCollector
	analyzer  analysis.Analyzer
	monitor   monitor.ListingMonitor
}

func NewListingSystem(
	config *configs.Config,
	dataCollector data.DataCollector,
	analyzer analysis.Analyzer,
	listingMonitor monitor.ListingMonitor,
) *ListingSystem {
	return &ListingSystem{
		config:    config,
		collector: dataCollector,
		analyzer:  analyzer,
		monitor:   listingMonitor,
	}
}

// Run 运行监控与分析主循环
func (s *ListingSystem) Run(ctx context.Context) error {
	// 启动时对每个代币先做一轮完整分析
	for _, policyID := range s.config.PolicyIDs {
		s.analyzeToken(ctx, policyID)
	}

	refreshInterval := configs.Duration(s.config.RefreshInterval, 5*time.Minute)

	// 订阅指标快照
	metricsCh, err := s.collector.SubscribeToMetrics(ctx, s.config.PolicyIDs, refreshInterval)
	if err != nil {
		return err
	}

	log.Debug().Msg("subscribe to metrics ok")

	// 监控上币时机告警
	alertCh, err := s.monitor.Watch(ctx)
	if err != nil {
		return err
	}

	log.Debug().Msg("watch listing alerts ok")

	// 主循环
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case snapshot, ok := <-metricsCh:
			if !ok {
				metricsCh = nil
				continue
			}
			s.handleMetrics(ctx, snapshot)

		case alert, ok := <-alertCh:
			if !ok {
				alertCh = nil
				continue
			}
			s.handleAlert(alert)
		}
	}
}

// handleMetrics 每轮指标刷新后重跑一次完整分析
func (s *ListingSystem) handleMetrics(ctx context.Context, snapshot models.MetricsAggregate) {
	log.Debug().
		Str("policy_id", snapshot.PolicyID).
		Float64("liquidity_usd", snapshot.LiquidityUSD).
		Int("holders", snapshot.HolderCount).
		Str("source", snapshot.DataSource).
		Msg("received metrics snapshot")

	s.analyzeToken(ctx, snapshot.PolicyID)
}

// analyzeToken 跑完整分析并输出结果摘要
func (s *ListingSystem) analyzeToken(ctx context.Context, policyID string) {
	result, err := s.analyzer.Analyze(ctx, analysis.Request{
		PolicyID:           policyID,
		TargetExchanges:    s.config.TargetExchanges,
		TargetChains:       s.config.TargetChains,
		TargetLiquidityUSD: s.config.TargetLiquidityUSD,
	})
	if err != nil {
		log.Error().Err(err).Str("policy_id", policyID).Msg("analysis failed")
		return
	}

	log.Info().
		Str("policy_id", policyID).
		Str("token", result.TokenSymbol).
		Str("grade", result.Readiness.Grade).
		Float64("score", result.Readiness.TotalScore).
		Str("recommended_chain", result.RecommendedChain).
		Strs("recommended_exchanges", result.RecommendedExchanges).
		Msg("analysis complete")

	for _, warning := range result.Warnings {
		log.Warn().Str("policy_id", policyID).Msg(warning)
	}

	log.Info().Str("policy_id", policyID).Msg(result.ExecutiveSummary)
	for _, step := range result.NextSteps {
		log.Info().Str("policy_id", policyID).Msg(step)
	}
}

// handleAlert 按告警类型分级输出
func (s *ListingSystem) handleAlert(alert models.ListingAlert) {
	switch alert.Type {
	case models.AlertListingReady:
		log.Info().
			Str("policy_id", alert.PolicyID).
			Str("exchange", alert.Exchange).
			Float64("value", alert.Value).
			Float64("threshold", alert.Threshold).
			Msg(alert.Message)
	default:
		log.Warn().
			Str("policy_id", alert.PolicyID).
			Str("type", alert.Type).
			Float64("value", alert.Value).
			Float64("threshold", alert.Threshold).
			Msg(alert.Message)
	}
}

// kvLogger 把 zerolog 适配到采集器的键值日志接口
type kvLogger struct {
	log zerolog.Logger
}

func (l kvLogger) Error(msg string, fields ...interface{}) {
	l.log.Error().Fields(fields).Msg(msg)
}

func (l kvLogger) Info(msg string, fields ...interface{}) {
	l.log.Info().Fields(fields).Msg(msg)
}

// lineLogger 把 zerolog 适配到业务包的单行日志接口
type lineLogger struct {
	log zerolog.Logger
}

func (l lineLogger) Error(args ...interface{}) {
	l.log.Error().Msg(line(args))
}

func (l lineLogger) Info(args ...interface{}) {
	l.log.Info().Msg(line(args))
}

func line(args []interface{}) string {
	parts := make([]string, 0, len(args))
	for _, arg := range args {
		parts = append(parts, fmt.Sprint(arg))
	}
	return strings.Join(parts, " ")
}

var (
	flagconf string

	log = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
		With().Timestamp().Logger()
)

func init() {
	flag.StringVar(&flagconf, "conf", "", "config path, eg: -conf config.yaml")
}

func loadConfig(path string) (*configs.Config, error) {
	if path == "" {
		c := configs.Default()
		c.ApplyEnv()
		if err := c.Validate(); err != nil {
			return nil, err
		}
		return c, nil
	}
	return configs.LoadFile(path)
}

func newCache(ctx context.Context, config *configs.Config) data.MetricsCache {
	if !config.Cache.Enabled {
		return cache.NewMemoryCache()
	}
	redisCache, err := cache.NewRedisCache(ctx, config.Cache.Addr, config.Cache.Password, config.Cache.DB)
	if err != nil {
		log.Error().Err(err).Str("addr", config.Cache.Addr).Msg("redis unavailable, falling back to in-memory cache")
		return cache.NewMemoryCache()
	}
	return redisCache
}

func newNarrator(config *configs.Config) ai.Narrator {
	if config.AI.APIKey == "" {
		return nil
	}
	switch config.AI.Provider {
	case "openai":
		return openai.NewOpenAINarrator(config.AI.APIKey, config.AI.ModelType)
	case "deepseek":
		return deepseek.NewDeepSeekNarrator(config.AI.APIKey, config.AI.ModelType)
	default:
		// analyzer 内置模板兜底, 这里不重复注入
		return nil
	}
}

func main() {
	flag.Parse()

	zerolog.TimeFieldFormat = time.RFC3339

	// 加载配置
	config, err := loadConfig(flagconf)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	if len(config.PolicyIDs) == 0 {
		log.Fatal().Msg("no policy ids configured, set policy_ids in the config file")
	}

	log.Debug().Int("policies", len(config.PolicyIDs)).Msg("loaded config")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kvLog := kvLogger{log: log}
	lineLog := lineLogger{log: log}

	// 数据源按优先级排列, DEX 行情优先, blockfrost 链上估算兜底
	sources := []collector.DataSource{
		minswap.NewMinswapDataSource(),
		muesliswap.NewMuesliSwapDataSource(),
		blockfrost.NewBlockfrostDataSource(config.Collector.BlockfrostProjectID),
	}

	dataCollector := collector.NewMultiSourceCollector(
		sources,
		newCache(ctx, config),
		configs.Duration(config.Cache.TTL, 5*time.Minute),
		kvLog,
	)

	log.Debug().Msg("init collector")

	scorer, err := scoring.NewScorer(config.Scoring)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create scorer")
	}

	matcher, err := exchange.NewMatcher(config.Exchanges)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create exchange matcher")
	}

	synthesizer, err := recommend.NewSynthesizer(config.Recommend)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create synthesizer")
	}

	catalog := config.BridgeCatalog
	if len(catalog) == 0 {
		catalog = bridge.DefaultCatalog()
	}
	chains := config.Chains
	if len(chains) == 0 {
		chains = bridge.DefaultChainInfo()
	}

	ranker, err := bridge.NewRanker(config.Routing, catalog, chains)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create route ranker")
	}

	planner, err := liquidity.NewPlanner(config.Liquidity)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create liquidity planner")
	}

	log.Debug().Msg("init pipeline")

	recorder, err := audit.NewMasumiRecorder(config.Audit.RegistryURL, lineLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create audit recorder")
	}

	var priceSource prices.PriceSource
	if config.Prices.Enabled {
		priceSource = binancePrices.NewBinancePriceSource(config.Prices.Debug)
	}

	analyzer, err := analysis.NewTokenAnalyzer(analysis.Deps{
		Collector:   dataCollector,
		Scorer:      scorer,
		Matcher:     matcher,
		Synthesizer: synthesizer,
		Ranker:      ranker,
		Planner:     planner,
		Narrator:    newNarrator(config),
		PriceSource: priceSource,
		Recorder:    recorder,
		Logger:      lineLog,
	}, analysis.Options{
		DefaultExchanges:          config.TargetExchanges,
		DefaultChains:             config.TargetChains,
		DefaultTargetLiquidityUSD: config.TargetLiquidityUSD,
		FallbackADAPriceUSD:       config.Liquidity.FallbackADAPriceUSD,
		NarrativeTimeout:          configs.Duration(config.AI.Timeout, 20*time.Second),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create analyzer")
	}

	log.Debug().Msg("init analyzer")

	listingMonitor, err := monitor.NewBasicListingMonitor(dataCollector, monitor.Params{
		PolicyIDs:          config.PolicyIDs,
		Interval:           configs.Duration(config.Monitor.Interval, 5*time.Minute),
		ConcentrationLimit: config.Monitor.ConcentrationThreshold,
		Thresholds:         config.Exchanges,
	}, lineLog)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create listing monitor")
	}

	log.Debug().Msg("init monitor")

	system := NewListingSystem(config, dataCollector, analyzer, listingMonitor)

	if err := system.Run(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			log.Info().Msg("shutting down")
			return
		}
		log.Error().Err(err).Msg("system error")
	}
}
