package muesliswap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T, handler http.HandlerFunc) *MuesliSwapDataSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ds := NewMuesliSwapDataSource()
	ds.baseURL = server.URL
	ds.httpClient = resty.NewWithClient(server.Client())
	return ds
}

func TestMuesliSwapDataSource_Name(t *testing.T) {
	assert.Equal(t, "muesliswap", NewMuesliSwapDataSource().Name())
}

func TestMuesliSwapDataSource_CollectMarketData(t *testing.T) {
	ds := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/liquidity/pools", r.URL.Path)
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]interface{}{
			{
				"policyId":          "policy1",
				"tokenName":         "tok",
				"liquidity":         "5000000000",
				"baseDecimalPlaces": 6,
				"price_usd":         0.5,
			},
			{
				// decimals 与价格缺失, 走默认 6 位与 0.4 兜底价
				"asset":     "policy1.tok2",
				"liquidity": 1000000000,
			},
			{
				"policyId":  "otherpolicy",
				"liquidity": 999999999,
			},
		}))
	})

	market, err := ds.CollectMarketData(context.Background(), "policy1")
	require.NoError(t, err)

	// 5000 * 0.5 + 1000 * 0.4
	assert.InDelta(t, 2900, market.LiquidityUSD, 1e-9)
	assert.Zero(t, market.Volume24hUSD)
	assert.True(t, market.Available)

	require.Len(t, market.Pools, 2)
	assert.Equal(t, "ADA/TOK", market.Pools[0].Pair)
	assert.Equal(t, "MuesliSwap", market.Pools[0].DEX)
	assert.InDelta(t, 2500, market.Pools[0].LiquidityUSD, 1e-9)
	assert.Equal(t, "ADA/UNKNOWN", market.Pools[1].Pair)
	assert.InDelta(t, 400, market.Pools[1].LiquidityUSD, 1e-9)
}

func TestMuesliSwapDataSource_CollectMarketDataCapsPools(t *testing.T) {
	ds := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		pools := make([]map[string]interface{}, 8)
		for i := range pools {
			pools[i] = map[string]interface{}{
				"policyId":  "policy1",
				"liquidity": 1000000,
			}
		}
		require.NoError(t, json.NewEncoder(w).Encode(pools))
	})

	market, err := ds.CollectMarketData(context.Background(), "policy1")
	require.NoError(t, err)

	assert.Len(t, market.Pools, 5)
	// 总流动性仍然算满 8 个池子
	assert.InDelta(t, 8*0.4, market.LiquidityUSD, 1e-9)
}

func TestMuesliSwapDataSource_CollectMarketDataNoMatch(t *testing.T) {
	ds := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]interface{}{
			{"policyId": "otherpolicy", "liquidity": 1000000},
		}))
	})

	market, err := ds.CollectMarketData(context.Background(), "policy1")
	require.Error(t, err)
	assert.Nil(t, market)
	assert.Contains(t, err.Error(), "not found")
}

func TestMuesliSwapDataSource_CollectMarketDataHTTPError(t *testing.T) {
	ds := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	})

	_, err := ds.CollectMarketData(context.Background(), "policy1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code")
}

func TestMuesliSwapDataSource_UnsupportedCapabilities(t *testing.T) {
	ds := NewMuesliSwapDataSource()

	info, err := ds.CollectTokenInfo(context.Background(), "policy1")
	assert.Error(t, err)
	assert.Nil(t, info)

	holders, err := ds.CollectHolderData(context.Background(), "policy1")
	assert.Error(t, err)
	assert.Nil(t, holders)
}
