package minswap

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

func setupTestServer(t *testing.T, handler http.HandlerFunc) *MinswapDataSource {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	ds := NewMinswapDataSource()
	ds.baseURL = server.URL
	ds.httpClient = resty.NewWithClient(server.Client())
	return ds
}

func TestMinswapDataSource_Name(t *testing.T) {
	assert.Equal(t, "minswap", NewMinswapDataSource().Name())
}

func TestMinswapDataSource_CollectMarketData(t *testing.T) {
	ds := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/aggregator/tokens", r.URL.Path)

		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "policy1", payload["query"])
		assert.Equal(t, false, payload["only_verified"])

		require.NoError(t, json.NewEncoder(w).Encode([]map[string]interface{}{
			{"ticker": "tok", "project_name": "Tok", "liquidity": 45000.5, "volume24h": 1200},
			{"ticker": "other", "liquidity": 1, "volume24h": 1},
		}))
	})

	market, err := ds.CollectMarketData(context.Background(), "policy1")
	require.NoError(t, err)

	assert.Equal(t, "policy1", market.PolicyID)
	assert.InDelta(t, 45000.5, market.LiquidityUSD, 1e-9)
	assert.InDelta(t, 1200, market.Volume24hUSD, 1e-9)
	assert.True(t, market.Available)

	require.Len(t, market.Pools, 1)
	assert.Equal(t, "ADA/TOK", market.Pools[0].Pair)
	assert.Equal(t, "Minswap", market.Pools[0].DEX)
}

func TestMinswapDataSource_CollectMarketDataStringNumbers(t *testing.T) {
	ds := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]interface{}{
			{"ticker": "tok", "liquidity": "12345.5", "volume24h": "678"},
		}))
	})

	market, err := ds.CollectMarketData(context.Background(), "policy1")
	require.NoError(t, err)
	assert.InDelta(t, 12345.5, market.LiquidityUSD, 1e-9)
	assert.InDelta(t, 678, market.Volume24hUSD, 1e-9)
}

func TestMinswapDataSource_CollectMarketDataNotListed(t *testing.T) {
	ds := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode([]map[string]interface{}{}))
	})

	market, err := ds.CollectMarketData(context.Background(), "policy1")
	require.Error(t, err)
	assert.Nil(t, market)
	assert.Contains(t, err.Error(), "not listed")
}

func TestMinswapDataSource_CollectMarketDataHTTPError(t *testing.T) {
	ds := setupTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unavailable", http.StatusServiceUnavailable)
	})

	_, err := ds.CollectMarketData(context.Background(), "policy1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status code")
}

func TestMinswapDataSource_UnsupportedCapabilities(t *testing.T) {
	ds := NewMinswapDataSource()

	info, err := ds.CollectTokenInfo(context.Background(), "policy1")
	assert.Error(t, err)
	assert.Nil(t, info)

	holders, err := ds.CollectHolderData(context.Background(), "policy1")
	assert.Error(t, err)
	assert.Nil(t, holders)
}
