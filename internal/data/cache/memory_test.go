package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/listingflux/internal/data"
	"github.com/songzhibin97/listingflux/internal/models"
)

func TestMemoryCacheRoundTrip(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	info := &models.TokenInfo{PolicyID: "policy1", Name: "Test Token"}
	require.NoError(t, c.SaveTokenInfo(ctx, info, time.Minute))

	got, err := c.GetTokenInfo(ctx, "policy1")
	require.NoError(t, err)
	assert.Equal(t, "Test Token", got.Name)

	metrics := &models.MetricsAggregate{PolicyID: "policy1", HolderCount: 7}
	require.NoError(t, c.SaveMetrics(ctx, metrics, time.Minute))

	gotMetrics, err := c.GetMetrics(ctx, "policy1")
	require.NoError(t, err)
	assert.Equal(t, 7, gotMetrics.HolderCount)
}

func TestMemoryCacheMiss(t *testing.T) {
	c := NewMemoryCache()

	_, err := c.GetTokenInfo(context.Background(), "missing")
	assert.ErrorIs(t, err, data.ErrCacheMiss)

	_, err = c.GetMetrics(context.Background(), "missing")
	assert.ErrorIs(t, err, data.ErrCacheMiss)
}

func TestMemoryCacheExpiry(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SaveMetrics(ctx, &models.MetricsAggregate{PolicyID: "policy1"}, 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	_, err := c.GetMetrics(ctx, "policy1")
	assert.ErrorIs(t, err, data.ErrCacheMiss)
}

func TestMemoryCacheNoExpiryWithZeroTTL(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SaveMetrics(ctx, &models.MetricsAggregate{PolicyID: "policy1"}, 0))
	time.Sleep(10 * time.Millisecond)

	_, err := c.GetMetrics(ctx, "policy1")
	assert.NoError(t, err)
}

func TestMemoryCacheReturnsCopy(t *testing.T) {
	c := NewMemoryCache()
	ctx := context.Background()

	require.NoError(t, c.SaveMetrics(ctx, &models.MetricsAggregate{PolicyID: "policy1", HolderCount: 1}, time.Minute))

	first, err := c.GetMetrics(ctx, "policy1")
	require.NoError(t, err)
	first.HolderCount = 999

	second, err := c.GetMetrics(ctx, "policy1")
	require.NoError(t, err)
	assert.Equal(t, 1, second.HolderCount)
}
