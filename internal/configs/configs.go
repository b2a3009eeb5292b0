package configs

import (
	"fmt"
	"math"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/songzhibin97/listingflux/internal/bridge"
	"github.com/songzhibin97/listingflux/internal/exchange"
	"github.com/songzhibin97/listingflux/internal/liquidity"
	"github.com/songzhibin97/listingflux/internal/recommend"
	"github.com/songzhibin97/listingflux/internal/scoring"
)

type Config struct {
	// 基础配置
	PolicyIDs       []string `json:"policy_ids" yaml:"policy_ids"`             // 待分析代币 policy id 列表
	RefreshInterval string   `json:"refresh_interval" yaml:"refresh_interval"` // 指标订阅刷新间隔

	TargetExchanges    []string `json:"target_exchanges" yaml:"target_exchanges"`         // 目标交易所
	TargetChains       []string `json:"target_chains" yaml:"target_chains"`               // 目标扩展链
	TargetLiquidityUSD float64  `json:"target_liquidity_usd" yaml:"target_liquidity_usd"` // 目标流动性(USD)

	// 策略表直接复用各业务包的参数类型, 缺省值也由业务包给出
	Scoring   scoring.Params       `json:"scoring" yaml:"scoring"`
	Exchanges []exchange.Threshold `json:"exchanges" yaml:"exchanges"`
	Routing   bridge.Params        `json:"routing" yaml:"routing"`
	Liquidity liquidity.Params     `json:"liquidity" yaml:"liquidity"`
	Recommend recommend.Params     `json:"recommend" yaml:"recommend"`

	// BridgeCatalog 与 Chains 不填时使用内置目录
	BridgeCatalog map[string][]bridge.Offer   `json:"bridge_catalog" yaml:"bridge_catalog"`
	Chains        map[string]bridge.ChainInfo `json:"chains" yaml:"chains"`

	AI        AIConfig        `json:"ai_config" yaml:"ai_config"`
	Collector CollectorConfig `json:"collector" yaml:"collector"`
	Cache     CacheConfig     `json:"cache" yaml:"cache"`
	Audit     AuditConfig     `json:"audit" yaml:"audit"`
	Monitor   MonitorConfig   `json:"monitor" yaml:"monitor"`
	Prices    PricesConfig    `json:"prices" yaml:"prices"`
}

type AIConfig struct {
	Provider  string `json:"provider" yaml:"provider"` // openai, deepseek, template
	APIKey    string `json:"api_key" yaml:"api_key"`
	ModelType string `json:"model_type" yaml:"model_type"`
	Timeout   string `json:"timeout" yaml:"timeout"`
}

type CollectorConfig struct {
	BlockfrostProjectID string `json:"blockfrost_project_id" yaml:"blockfrost_project_id"`
}

type CacheConfig struct {
	Enabled  bool   `json:"enabled" yaml:"enabled"` // true 走 redis, 否则进程内缓存
	Addr     string `json:"addr" yaml:"addr"`
	Password string `json:"password" yaml:"password"`
	DB       int    `json:"db" yaml:"db"`
	TTL      string `json:"ttl" yaml:"ttl"`
}

type AuditConfig struct {
	// RegistryURL 为空时只生成本地回执, 不提交 masumi 节点
	RegistryURL string `json:"registry_url" yaml:"registry_url"`
}

type MonitorConfig struct {
	Interval               string  `json:"interval" yaml:"interval"`
	ConcentrationThreshold float64 `json:"concentration_threshold" yaml:"concentration_threshold"`
}

type PricesConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"` // 关闭后换算使用兜底 ADA 价格
	Debug   bool `json:"debug" yaml:"debug"`     // true 走 Binance 测试网
}

// Default 返回全部策略表的缺省配置
func Default() *Config {
	return &Config{
		RefreshInterval:    "5m",
		TargetExchanges:    []string{"Binance", "KuCoin", "Gate.io"},
		TargetChains:       []string{"Ethereum", "BSC", "Polygon"},
		TargetLiquidityUSD: 100000,
		Scoring:            scoring.DefaultParams(),
		Exchanges:          exchange.DefaultThresholds(),
		Routing:            bridge.DefaultParams(),
		Liquidity:          liquidity.DefaultParams(),
		Recommend:          recommend.DefaultParams(),
		AI: AIConfig{
			Provider:  "template",
			ModelType: "gpt-4o-mini",
			Timeout:   "15s",
		},
		Cache: CacheConfig{
			Addr: "localhost:6379",
			TTL:  "5m",
		},
		Monitor: MonitorConfig{
			Interval:               "5m",
			ConcentrationThreshold: 40,
		},
		Prices: PricesConfig{
			Enabled: true,
		},
	}
}

// LoadFile 在缺省配置之上套用 yaml 文件
func LoadFile(path string) (*Config, error) {
	c := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	c.ApplyEnv()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config %s: %w", path, err)
	}
	return c, nil
}

// ApplyEnv 用环境变量覆盖敏感字段
func (c *Config) ApplyEnv() {
	if v := os.Getenv("LISTINGFLUX_AI_API_KEY"); v != "" {
		c.AI.APIKey = v
	}
	if v := os.Getenv("LISTINGFLUX_BLOCKFROST_PROJECT_ID"); v != "" {
		c.Collector.BlockfrostProjectID = v
	}
	if v := os.Getenv("LISTINGFLUX_REDIS_ADDR"); v != "" {
		c.Cache.Addr = v
	}
	if v := os.Getenv("LISTINGFLUX_REDIS_PASSWORD"); v != "" {
		c.Cache.Password = v
	}
	if v := os.Getenv("LISTINGFLUX_AUDIT_REGISTRY_URL"); v != "" {
		c.Audit.RegistryURL = v
	}
}

const weightTolerance = 1e-9

func weightSum(w scoring.Weights) float64 {
	return w.Liquidity + w.HolderDistribution + w.Metadata + w.Security + w.SupplyStability + w.MarketActivity
}

func (c *Config) Validate() error {
	if math.Abs(weightSum(c.Scoring.Weights)-1) > weightTolerance {
		return fmt.Errorf("scoring weights sum to %v, want 1", weightSum(c.Scoring.Weights))
	}
	if math.Abs(weightSum(c.Scoring.NoMarketWeights)-1) > weightTolerance {
		return fmt.Errorf("no-market scoring weights sum to %v, want 1", weightSum(c.Scoring.NoMarketWeights))
	}
	if len(c.Scoring.GradeCuts) == 0 {
		return fmt.Errorf("grade cuts are empty")
	}
	for i := 1; i < len(c.Scoring.GradeCuts); i++ {
		if c.Scoring.GradeCuts[i].Min >= c.Scoring.GradeCuts[i-1].Min {
			return fmt.Errorf("grade cuts must be strictly descending, got %v then %v",
				c.Scoring.GradeCuts[i-1].Min, c.Scoring.GradeCuts[i].Min)
		}
	}
	if len(c.Exchanges) == 0 {
		return fmt.Errorf("exchange threshold table is empty")
	}
	seen := make(map[string]bool, len(c.Exchanges))
	for _, e := range c.Exchanges {
		if e.Name == "" {
			return fmt.Errorf("exchange threshold with empty name")
		}
		if seen[e.Name] {
			return fmt.Errorf("duplicate exchange threshold %q", e.Name)
		}
		seen[e.Name] = true
	}
	rw := c.Routing.Weights
	if math.Abs(rw.Reliability+rw.Fee+rw.Time+rw.Trust-1) > weightTolerance {
		return fmt.Errorf("route weights sum to %v, want 1", rw.Reliability+rw.Fee+rw.Time+rw.Trust)
	}
	if c.Routing.HopPenalty < 0 {
		return fmt.Errorf("hop penalty must be >= 0, got %v", c.Routing.HopPenalty)
	}
	if math.Abs(c.Liquidity.SplitADA+c.Liquidity.SplitOther-1) > weightTolerance {
		return fmt.Errorf("liquidity split sums to %v, want 1", c.Liquidity.SplitADA+c.Liquidity.SplitOther)
	}
	if c.Liquidity.Weeks < 1 {
		return fmt.Errorf("liquidity schedule weeks must be >= 1, got %d", c.Liquidity.Weeks)
	}
	if c.Recommend.HighGapRatio <= 0 {
		return fmt.Errorf("high gap ratio must be > 0, got %v", c.Recommend.HighGapRatio)
	}
	if c.Recommend.ImprovementUrgent > c.Recommend.ImprovementThreshold {
		return fmt.Errorf("improvement urgent cut %v exceeds improvement threshold %v",
			c.Recommend.ImprovementUrgent, c.Recommend.ImprovementThreshold)
	}
	for name, raw := range map[string]string{
		"refresh_interval":  c.RefreshInterval,
		"monitor.interval":  c.Monitor.Interval,
		"cache.ttl":         c.Cache.TTL,
		"ai_config.timeout": c.AI.Timeout,
	} {
		if raw == "" {
			continue
		}
		if _, err := time.ParseDuration(raw); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	return nil
}

// Duration 解析时长字段, 解析失败时返回 fallback
func Duration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}
	return d
}
