package liquidity

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"

	"github.com/songzhibin97/listingflux/internal/models"
)

const splitTolerance = 1e-9

// entryPrecision 单期 ADA 数量的小数位, 尾期吸收舍入余量
const entryPrecision = 6

// unknownPool 无池数据时的占位池名
const unknownPool = "ADA/UNKNOWN"

// DeploymentPlanner 按策略表生成部署计划, 无副作用, 可并发使用
type DeploymentPlanner struct {
	params Params
}

func NewPlanner(params Params) (*DeploymentPlanner, error) {
	if math.Abs(params.SplitADA+params.SplitOther-1) > splitTolerance {
		return nil, fmt.Errorf("liquidity split sums to %v, want 1", params.SplitADA+params.SplitOther)
	}
	if params.SplitADA < 0 || params.SplitOther < 0 {
		return nil, fmt.Errorf("liquidity split components must be >= 0")
	}
	if params.Weeks < 1 {
		return nil, fmt.Errorf("schedule weeks must be >= 1, got %d", params.Weeks)
	}
	return &DeploymentPlanner{params: params}, nil
}

// NewPlannerWithDefaults 使用缺省策略
func NewPlannerWithDefaults() *DeploymentPlanner {
	p, err := NewPlanner(DefaultParams())
	if err != nil {
		panic(err) // 缺省表不可能非法
	}
	return p
}

func (p *DeploymentPlanner) Plan(currentLiquidityUSD, targetLiquidityUSD, adaPriceUSD float64,
	pools []models.PoolLiquidity, start time.Time) models.LiquidityPlan {

	plan := models.LiquidityPlan{
		AdaToAdd:        decimal.Zero,
		AdaToAddUSD:     decimal.Zero,
		OptimalPoolPair: optimalPool(pools),
		LiquiditySplit: models.LiquiditySplit{
			ADA:   p.params.SplitADA,
			Other: p.params.SplitOther,
		},
	}

	gapUSD := decimal.NewFromFloat(targetLiquidityUSD).Sub(decimal.NewFromFloat(currentLiquidityUSD))
	if gapUSD.Sign() <= 0 {
		return plan
	}
	plan.AdaToAddUSD = gapUSD

	price := decimal.NewFromFloat(adaPriceUSD)
	if price.Sign() <= 0 {
		// 无价格无法换算 ADA, 只报告 USD 缺口
		return plan
	}
	plan.AdaToAdd = gapUSD.Div(price).Round(entryPrecision)
	plan.Schedule = p.schedule(plan.AdaToAdd, price, start)
	return plan
}

// schedule 按周拆分 adaToAdd, 各期和与其完全相等
func (p *DeploymentPlanner) schedule(adaToAdd, price decimal.Decimal, start time.Time) []models.ScheduleEntry {
	weeks := p.params.Weeks
	entries := make([]models.ScheduleEntry, 0, weeks)

	remaining := adaToAdd
	totalWeight := flatWeight(weeks)
	if p.params.FrontLoaded {
		totalWeight = frontWeight(weeks)
	}

	for i := 0; i < weeks; i++ {
		var amount decimal.Decimal
		if i == weeks-1 {
			amount = remaining
		} else {
			w := 1.0
			if p.params.FrontLoaded {
				w = float64(weeks - i)
			}
			share := decimal.NewFromFloat(w / totalWeight)
			amount = adaToAdd.Mul(share).Round(entryPrecision)
			remaining = remaining.Sub(amount)
		}
		entries = append(entries, models.ScheduleEntry{
			Week:      i + 1,
			Date:      start.AddDate(0, 0, 7*i).Format("2006-01-02"),
			AdaAmount: amount,
			USDAmount: amount.Mul(price).Round(2),
		})
	}
	return entries
}

func flatWeight(weeks int) float64 {
	return float64(weeks)
}

// frontWeight 递减权重之和: weeks + (weeks-1) + ... + 1
func frontWeight(weeks int) float64 {
	return float64(weeks*(weeks+1)) / 2
}

// optimalPool 优先取交易量最大的池, 无交易量信息时取深度最大的
func optimalPool(pools []models.PoolLiquidity) string {
	if len(pools) == 0 {
		return unknownPool
	}
	best := pools[0]
	for _, pool := range pools[1:] {
		if pool.Volume24hUSD > best.Volume24hUSD {
			best = pool
			continue
		}
		if pool.Volume24hUSD == best.Volume24hUSD && pool.LiquidityUSD > best.LiquidityUSD {
			best = pool
		}
	}
	if best.Pair == "" {
		return unknownPool
	}
	return best.Pair
}
