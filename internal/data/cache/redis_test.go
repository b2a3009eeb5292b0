package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/songzhibin97/listingflux/internal/data"
	"github.com/songzhibin97/listingflux/internal/models"
)

func newMockedCache(t *testing.T) (*RedisCache, redismock.ClientMock) {
	t.Helper()
	client, mock := redismock.NewClientMock()
	return &RedisCache{client: client}, mock
}

func TestRedisCacheTokenInfoRoundTrip(t *testing.T) {
	cache, mock := newMockedCache(t)

	info := &models.TokenInfo{
		PolicyID: "policy-1",
		Name:     "TestToken",
		Ticker:   "TEST",
	}
	payload, err := json.Marshal(info)
	require.NoError(t, err)

	mock.ExpectSet("listingflux:token:policy-1", payload, 5*time.Minute).SetVal("OK")
	require.NoError(t, cache.SaveTokenInfo(context.Background(), info, 5*time.Minute))

	mock.ExpectGet("listingflux:token:policy-1").SetVal(string(payload))
	got, err := cache.GetTokenInfo(context.Background(), "policy-1")
	require.NoError(t, err)
	assert.Equal(t, "TestToken", got.Name)
	assert.Equal(t, "TEST", got.Ticker)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheMetricsRoundTrip(t *testing.T) {
	cache, mock := newMockedCache(t)

	metrics := &models.MetricsAggregate{
		PolicyID:     "policy-2",
		LiquidityUSD: 42000,
		HolderCount:  1200,
		CollectedAt:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	payload, err := json.Marshal(metrics)
	require.NoError(t, err)

	mock.ExpectSet("listingflux:metrics:policy-2", payload, time.Minute).SetVal("OK")
	require.NoError(t, cache.SaveMetrics(context.Background(), metrics, time.Minute))

	mock.ExpectGet("listingflux:metrics:policy-2").SetVal(string(payload))
	got, err := cache.GetMetrics(context.Background(), "policy-2")
	require.NoError(t, err)
	assert.Equal(t, 42000.0, got.LiquidityUSD)
	assert.Equal(t, 1200, got.HolderCount)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheMiss(t *testing.T) {
	cache, mock := newMockedCache(t)

	mock.ExpectGet("listingflux:token:missing").RedisNil()
	_, err := cache.GetTokenInfo(context.Background(), "missing")
	assert.ErrorIs(t, err, data.ErrCacheMiss)

	mock.ExpectGet("listingflux:metrics:missing").RedisNil()
	_, err = cache.GetMetrics(context.Background(), "missing")
	assert.ErrorIs(t, err, data.ErrCacheMiss)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRedisCacheCorruptPayload(t *testing.T) {
	cache, mock := newMockedCache(t)

	mock.ExpectGet("listingflux:metrics:bad").SetVal("{not json")
	_, err := cache.GetMetrics(context.Background(), "bad")
	assert.ErrorContains(t, err, "failed to decode cached metrics")
}

func TestRedisCacheReadError(t *testing.T) {
	cache, mock := newMockedCache(t)

	mock.ExpectGet("listingflux:token:down").SetErr(assert.AnError)
	_, err := cache.GetTokenInfo(context.Background(), "down")
	require.Error(t, err)
	assert.NotErrorIs(t, err, data.ErrCacheMiss)
}
