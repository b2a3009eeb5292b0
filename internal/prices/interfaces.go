package prices

import (
	"context"
)

// PriceSource 提供 ADA 对美元的实时价格, 用于流动性计划的换算
type PriceSource interface {
	// AdaPriceUSD returns the current ADA price in USD
	AdaPriceUSD(ctx context.Context) (float64, error)
}
