package muesliswap

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"

	"github.com/songzhibin97/listingflux/internal/models"
	"github.com/songzhibin97/listingflux/internal/utils/request"
)

const (
	defaultBaseURL = "https://api.muesliswap.com"
	maxPools       = 5

	// 池子返回的是最小单位整数, 没标 decimals 时按 ADA 的 6 位处理
	defaultTokenDecimals = 6
	// 池子没带美元价格时的保守 ADA 价格
	fallbackAdaPriceUSD = 0.4
)

type MuesliSwapDataSource struct {
	baseURL    string
	httpClient *resty.Client
	limiter    *rate.Limiter
}

func NewMuesliSwapDataSource() *MuesliSwapDataSource {
	return &MuesliSwapDataSource{
		baseURL:    defaultBaseURL,
		httpClient: request.Request,
		limiter:    rate.NewLimiter(rate.Limit(5), 5),
	}
}

func (m *MuesliSwapDataSource) Name() string {
	return "muesliswap"
}

type liquidityPool struct {
	Liquidity         json.Number `json:"liquidity"`
	BaseDecimalPlaces int         `json:"baseDecimalPlaces"`
	PriceUSD          json.Number `json:"price_usd"`
	TokenName         string      `json:"tokenName"`
}

func (m *MuesliSwapDataSource) CollectMarketData(ctx context.Context, policyID string) (*models.MarketData, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	resp, err := m.httpClient.R().
		SetContext(ctx).
		Get(m.baseURL + "/liquidity/pools")
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	var rawPools []json.RawMessage
	if err := json.Unmarshal(resp.Body(), &rawPools); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	needle := strings.ToLower(policyID)
	var (
		totalLiquidity float64
		pools          []models.PoolLiquidity
	)

	for _, raw := range rawPools {
		// 资产标识在池子结构里的位置不统一, 直接在原文里匹配 policy id
		if !strings.Contains(strings.ToLower(string(raw)), needle) {
			continue
		}

		var pool liquidityPool
		if err := json.Unmarshal(raw, &pool); err != nil {
			continue
		}

		liquidityRaw, err := pool.Liquidity.Float64()
		if err != nil || liquidityRaw <= 0 {
			continue
		}

		decimals := pool.BaseDecimalPlaces
		if decimals <= 0 {
			decimals = defaultTokenDecimals
		}
		liquidity := liquidityRaw / math.Pow(10, float64(decimals))

		price, err := pool.PriceUSD.Float64()
		if err != nil || price <= 0 {
			price = fallbackAdaPriceUSD
		}

		liquidityUSD := liquidity * price
		totalLiquidity += liquidityUSD

		if len(pools) < maxPools {
			pair := "ADA/UNKNOWN"
			if pool.TokenName != "" {
				pair = "ADA/" + strings.ToUpper(pool.TokenName)
			}
			pools = append(pools, models.PoolLiquidity{
				Pair:         pair,
				DEX:          "MuesliSwap",
				LiquidityUSD: liquidityUSD,
			})
		}
	}

	if len(pools) == 0 {
		return nil, fmt.Errorf("token %s not found in muesliswap pools", policyID)
	}

	return &models.MarketData{
		PolicyID:     policyID,
		LiquidityUSD: totalLiquidity,
		Pools:        pools,
		Available:    true,
		Timestamp:    time.Now(),
	}, nil
}

func (m *MuesliSwapDataSource) CollectTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, error) {
	return nil, fmt.Errorf("token info not available from dex analytics api")
}

func (m *MuesliSwapDataSource) CollectHolderData(ctx context.Context, policyID string) (*models.HolderData, error) {
	return nil, fmt.Errorf("holder data not available from dex analytics api")
}
