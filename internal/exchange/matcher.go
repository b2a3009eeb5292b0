package exchange

import (
	"fmt"
	"sort"

	"github.com/songzhibin97/listingflux/internal/models"
	"github.com/songzhibin97/listingflux/internal/utils/format"
)

// ConfigurationError 门槛表缺少被请求的交易所, 属于配置缺陷而非运行时降级
type ConfigurationError struct {
	Exchange string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("exchange %q not present in threshold table", e.Exchange)
}

// RequirementMatcher 按门槛表核对指标, 无副作用, 可并发使用
type RequirementMatcher struct {
	table  map[string]Threshold
	sorted []Threshold // 按 min_liquidity 升序, 用于兜底推荐
}

func NewMatcher(table []Threshold) (*RequirementMatcher, error) {
	if len(table) == 0 {
		return nil, fmt.Errorf("exchange threshold table is empty")
	}
	m := &RequirementMatcher{table: make(map[string]Threshold, len(table))}
	for _, th := range table {
		if th.Name == "" {
			return nil, fmt.Errorf("exchange threshold with empty name")
		}
		if _, ok := m.table[th.Name]; ok {
			return nil, fmt.Errorf("duplicate exchange threshold %q", th.Name)
		}
		m.table[th.Name] = th
	}
	m.sorted = append(m.sorted, table...)
	sort.SliceStable(m.sorted, func(i, j int) bool {
		return m.sorted[i].MinLiquidityUSD < m.sorted[j].MinLiquidityUSD
	})
	return m, nil
}

// NewMatcherWithDefaults 使用缺省门槛表
func NewMatcherWithDefaults() *RequirementMatcher {
	m, err := NewMatcher(DefaultThresholds())
	if err != nil {
		panic(err) // 缺省表不可能非法
	}
	return m
}

func (m *RequirementMatcher) Match(metrics models.MetricsAggregate, exchanges []string) ([]models.ExchangeRequirement, error) {
	var out []models.ExchangeRequirement
	for _, name := range exchanges {
		th, ok := m.table[name]
		if !ok {
			return nil, &ConfigurationError{Exchange: name}
		}
		out = append(out, m.evaluate(metrics, th)...)
	}
	return out, nil
}

func (m *RequirementMatcher) evaluate(metrics models.MetricsAggregate, th Threshold) []models.ExchangeRequirement {
	var reqs []models.ExchangeRequirement
	add := func(label string, threshold, current float64, meets bool) {
		reqs = append(reqs, models.ExchangeRequirement{
			Exchange:         th.Name,
			Requirement:      label,
			Threshold:        threshold,
			CurrentValue:     current,
			MeetsRequirement: meets,
		})
	}

	if th.MinLiquidityUSD > 0 {
		add("Minimum liquidity: $"+format.Comma(th.MinLiquidityUSD),
			th.MinLiquidityUSD, metrics.LiquidityUSD, metrics.LiquidityUSD >= th.MinLiquidityUSD)
	}
	if th.MinHolders > 0 {
		add("Minimum holders: "+format.Comma(float64(th.MinHolders)),
			float64(th.MinHolders), float64(metrics.HolderCount), metrics.HolderCount >= th.MinHolders)
	}
	if th.MinVolume24hUSD > 0 {
		add("Minimum 24h volume: $"+format.Comma(th.MinVolume24hUSD),
			th.MinVolume24hUSD, metrics.Volume24hUSD, metrics.Volume24hUSD >= th.MinVolume24hUSD)
	}
	if th.MinVolume30dUSD > 0 {
		add("Minimum 30d volume: $"+format.Comma(th.MinVolume30dUSD),
			th.MinVolume30dUSD, metrics.Volume30dUSD, metrics.Volume30dUSD >= th.MinVolume30dUSD)
	}
	if th.MaxTop10Concentration > 0 {
		// 没有持仓数据时集中度无从核实, 不算达标
		meets := metrics.HolderCount > 0 && metrics.Top10Concentration <= th.MaxTop10Concentration
		add(fmt.Sprintf("Maximum top 10 concentration: %g%%", th.MaxTop10Concentration),
			th.MaxTop10Concentration, metrics.Top10Concentration, meets)
	}
	if th.MetadataMin > 0 {
		add("Complete token metadata",
			th.MetadataMin, metrics.MetadataScore, metrics.MetadataScore >= th.MetadataMin)
	}
	if th.AuditRequired {
		add("Security audit required", 1, boolValue(metrics.AuditPresent), metrics.AuditPresent)
	}
	if th.KYCRequired {
		add("Team KYC required", 1, boolValue(metrics.KYCVerified), metrics.KYCVerified)
	}
	return reqs
}

// ComplianceRate 单个分组的达标率
func ComplianceRate(reqs []models.ExchangeRequirement) float64 {
	if len(reqs) == 0 {
		return 0
	}
	met := 0
	for _, r := range reqs {
		if r.MeetsRequirement {
			met++
		}
	}
	return float64(met) / float64(len(reqs))
}

// ComplianceRates 按交易所分组计算达标率
func ComplianceRates(reqs []models.ExchangeRequirement) map[string]float64 {
	groups := make(map[string][]models.ExchangeRequirement)
	for _, r := range reqs {
		groups[r.Exchange] = append(groups[r.Exchange], r)
	}
	rates := make(map[string]float64, len(groups))
	for name, group := range groups {
		rates[name] = ComplianceRate(group)
	}
	return rates
}

// recommendReadiness 推荐为候选交易所的最低平均匹配度
const recommendReadiness = 0.8

// Recommended 返回指标平均匹配度达标的交易所, 无一达标时退回两家门槛最低的
func (m *RequirementMatcher) Recommended(metrics models.MetricsAggregate) []string {
	var out []string
	for _, th := range m.sorted {
		if readiness(metrics, th) >= recommendReadiness {
			out = append(out, th.Name)
		}
	}
	if len(out) == 0 {
		for _, th := range m.sorted {
			out = append(out, th.Name)
			if len(out) == 2 {
				break
			}
		}
	}
	return out
}

func readiness(metrics models.MetricsAggregate, th Threshold) float64 {
	var parts []float64
	if th.MinLiquidityUSD > 0 {
		parts = append(parts, capRatio(metrics.LiquidityUSD/th.MinLiquidityUSD))
	}
	if th.MinHolders > 0 {
		parts = append(parts, capRatio(float64(metrics.HolderCount)/float64(th.MinHolders)))
	}
	if th.MinVolume24hUSD > 0 {
		parts = append(parts, capRatio(metrics.Volume24hUSD/th.MinVolume24hUSD))
	}
	if len(parts) == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range parts {
		sum += p
	}
	return sum / float64(len(parts))
}

func capRatio(r float64) float64 {
	if r > 1 {
		return 1
	}
	if r < 0 {
		return 0
	}
	return r
}

func boolValue(b bool) float64 {
	if b {
		return 1
	}
	return 0
}
