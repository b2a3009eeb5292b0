package exchange

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/listingflux/internal/models"
)

func listedMetrics() models.MetricsAggregate {
	return models.MetricsAggregate{
		HolderCount:         5000,
		Top10Concentration:  15,
		LiquidityUSD:        2000000,
		Volume24hUSD:        500000,
		Volume30dUSD:        9000000,
		MetadataScore:       90,
		AuditPresent:        true,
		KYCVerified:         true,
		MarketDataAvailable: true,
	}
}

func TestMatchBinanceAllMet(t *testing.T) {
	m := NewMatcherWithDefaults()
	reqs, err := m.Match(listedMetrics(), []string{"Binance"})
	require.NoError(t, err)
	require.Len(t, reqs, 8)

	labels := make([]string, 0, len(reqs))
	for _, r := range reqs {
		assert.Equal(t, "Binance", r.Exchange)
		assert.True(t, r.MeetsRequirement, r.Requirement)
		labels = append(labels, r.Requirement)
	}
	assert.Equal(t, []string{
		"Minimum liquidity: $100,000",
		"Minimum holders: 1,000",
		"Minimum 24h volume: $10,000",
		"Minimum 30d volume: $50,000",
		"Maximum top 10 concentration: 30%",
		"Complete token metadata",
		"Security audit required",
		"Team KYC required",
	}, labels)
	assert.InDelta(t, 1.0, ComplianceRate(reqs), 1e-9)
}

func TestMatchSkipsInapplicableRows(t *testing.T) {
	m := NewMatcherWithDefaults()
	reqs, err := m.Match(listedMetrics(), []string{"MEXC"})
	require.NoError(t, err)
	// MEXC 无 30d 交易量, 集中度, 审计与 KYC 要求
	require.Len(t, reqs, 4)
	for _, r := range reqs {
		assert.NotContains(t, r.Requirement, "30d")
		assert.NotContains(t, r.Requirement, "audit")
		assert.NotContains(t, r.Requirement, "KYC")
	}
}

func TestMatchZeroMetricsAllUnmet(t *testing.T) {
	m := NewMatcherWithDefaults()
	reqs, err := m.Match(models.MetricsAggregate{}, []string{"Binance", "KuCoin", "Gate.io", "MEXC"})
	require.NoError(t, err)
	require.NotEmpty(t, reqs)

	for _, r := range reqs {
		assert.Falsef(t, r.MeetsRequirement, "%s / %s", r.Exchange, r.Requirement)
	}
}

func TestMatchKeepsRequestOrder(t *testing.T) {
	m := NewMatcherWithDefaults()
	reqs, err := m.Match(listedMetrics(), []string{"MEXC", "Binance"})
	require.NoError(t, err)
	assert.Equal(t, "MEXC", reqs[0].Exchange)
	assert.Equal(t, "Binance", reqs[len(reqs)-1].Exchange)
}

func TestMatchUnknownExchange(t *testing.T) {
	m := NewMatcherWithDefaults()
	_, err := m.Match(listedMetrics(), []string{"Binance", "NYSE"})
	require.Error(t, err)

	var confErr *ConfigurationError
	require.True(t, errors.As(err, &confErr))
	assert.Equal(t, "NYSE", confErr.Exchange)
}

func TestComplianceRates(t *testing.T) {
	m := NewMatcherWithDefaults()
	metrics := listedMetrics()
	metrics.AuditPresent = false // Binance 8 项中 1 项不达标

	reqs, err := m.Match(metrics, []string{"Binance", "MEXC"})
	require.NoError(t, err)

	rates := ComplianceRates(reqs)
	assert.InDelta(t, 7.0/8.0, rates["Binance"], 1e-9)
	assert.InDelta(t, 1.0, rates["MEXC"], 1e-9)
	assert.Zero(t, ComplianceRate(nil))
}

func TestRecommendedExchanges(t *testing.T) {
	m := NewMatcherWithDefaults()

	t.Run("strong token qualifies everywhere", func(t *testing.T) {
		got := m.Recommended(listedMetrics())
		assert.Contains(t, got, "Binance")
		assert.Contains(t, got, "MEXC")
	})

	t.Run("weak token falls back to lowest thresholds", func(t *testing.T) {
		got := m.Recommended(models.MetricsAggregate{})
		assert.Equal(t, []string{"MEXC", "Gate.io"}, got)
	})

	t.Run("mid token picks accessible venues only", func(t *testing.T) {
		metrics := models.MetricsAggregate{
			HolderCount:         400,
			LiquidityUSD:        30000,
			Volume24hUSD:        3000,
			MarketDataAvailable: true,
		}
		got := m.Recommended(metrics)
		assert.Contains(t, got, "MEXC")
		assert.Contains(t, got, "Gate.io")
		assert.NotContains(t, got, "Binance")
	})
}

func TestNewMatcherRejectsBadTable(t *testing.T) {
	_, err := NewMatcher(nil)
	assert.Error(t, err)

	_, err = NewMatcher([]Threshold{{Name: "A"}, {Name: "A"}})
	assert.Error(t, err)

	_, err = NewMatcher([]Threshold{{}})
	assert.Error(t, err)
}
