package binance

import (
	"context"
	"fmt"
	"strconv"

	"github.com/adshao/go-binance/v2"
)

const defaultSymbol = "ADAUSDT"

// BinancePriceSource implements PriceSource interface using Binance spot market data
type BinancePriceSource struct {
	client *binance.Client
	symbol string
}

// NewBinancePriceSource 创建币安价格源
func NewBinancePriceSource(debug ...bool) *BinancePriceSource {
	debug = append(debug, false)
	if debug[0] {
		binance.UseTestnet = true
	}

	// 行情接口不需要鉴权
	client := binance.NewClient("", "")

	return &BinancePriceSource{
		client: client,
		symbol: defaultSymbol,
	}
}

// AdaPriceUSD 获取 ADA 最新成交价, USDT 按 1:1 折算美元
func (b *BinancePriceSource) AdaPriceUSD(ctx context.Context) (float64, error) {
	tickers, err := b.client.NewListPricesService().Symbol(b.symbol).Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch %s ticker: %w", b.symbol, err)
	}
	if len(tickers) == 0 {
		return 0, fmt.Errorf("no ticker returned for %s", b.symbol)
	}

	price, err := strconv.ParseFloat(tickers[0].Price, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse %s price %q: %w", b.symbol, tickers[0].Price, err)
	}
	if price <= 0 {
		return 0, fmt.Errorf("invalid %s price: %f", b.symbol, price)
	}

	return price, nil
}
