package bridge

// DefaultParams 缺省路线评估策略
func DefaultParams() Params {
	return Params{
		SourceChain: "Cardano",
		Weights: Weights{
			Reliability: 0.35,
			Fee:         0.25,
			Time:        0.20,
			Trust:       0.20,
		},
		HopPenalty: 6,
		TrustScores: map[string]float64{
			"trustless": 100,
			"hybrid":    80,
			"custodial": 60,
		},
	}
}

// DefaultCatalog 缺省桥目录, 以目标链为键
func DefaultCatalog() map[string][]Offer {
	return map[string][]Offer{
		"Ethereum": {
			{Bridge: "Wanchain", FeeBaseUSD: 25, FeePct: 0.10, MinMinutes: 15, MaxMinutes: 30, Trust: "hybrid", Slippage: "0.5-1%", Hops: 2, Reliability: 85},
			{Bridge: "Multichain", FeeBaseUSD: 30, FeePct: 0.15, MinMinutes: 20, MaxMinutes: 45, Trust: "custodial", Slippage: "0.8-1.5%", Hops: 1, Reliability: 75},
			{Bridge: "cBridge", FeeBaseUSD: 20, FeePct: 0.20, MinMinutes: 10, MaxMinutes: 25, Trust: "trustless", Slippage: "0.3-0.8%", Hops: 2, Reliability: 90},
		},
		"BSC": {
			{Bridge: "Multichain", FeeBaseUSD: 8, FeePct: 0.10, MinMinutes: 10, MaxMinutes: 20, Trust: "custodial", Slippage: "0.5-1%", Hops: 1, Reliability: 80},
			{Bridge: "cBridge", FeeBaseUSD: 5, FeePct: 0.15, MinMinutes: 8, MaxMinutes: 15, Trust: "trustless", Slippage: "0.3-0.7%", Hops: 2, Reliability: 88},
		},
		"Polygon": {
			{Bridge: "Multichain", FeeBaseUSD: 4, FeePct: 0.10, MinMinutes: 10, MaxMinutes: 15, Trust: "custodial", Slippage: "0.4-0.8%", Hops: 1, Reliability: 82},
			{Bridge: "cBridge", FeeBaseUSD: 3, FeePct: 0.12, MinMinutes: 8, MaxMinutes: 12, Trust: "trustless", Slippage: "0.2-0.6%", Hops: 2, Reliability: 90},
		},
		"Solana": {
			{Bridge: "Wormhole", FeeBaseUSD: 5, FeePct: 0.10, MinMinutes: 5, MaxMinutes: 15, Trust: "trustless", Slippage: "0.3-0.8%", Hops: 2, Reliability: 88},
			{Bridge: "AllBridge", FeeBaseUSD: 6, FeePct: 0.15, MinMinutes: 8, MaxMinutes: 18, Trust: "hybrid", Slippage: "0.5-1%", Hops: 2, Reliability: 82},
		},
		"Avalanche": {
			{Bridge: "Multichain", FeeBaseUSD: 8, FeePct: 0.10, MinMinutes: 10, MaxMinutes: 20, Trust: "custodial", Slippage: "0.4-0.9%", Hops: 1, Reliability: 80},
			{Bridge: "cBridge", FeeBaseUSD: 6, FeePct: 0.12, MinMinutes: 8, MaxMinutes: 15, Trust: "trustless", Slippage: "0.3-0.7%", Hops: 2, Reliability: 87},
		},
	}
}

// DefaultChainInfo 缺省链基本面表
func DefaultChainInfo() map[string]ChainInfo {
	return map[string]ChainInfo{
		"Ethereum":  {LiquidityDepth: 95, DEXCount: 50, GasCost: 40, UserBase: 100, CEXPresence: 100},
		"BSC":       {LiquidityDepth: 85, DEXCount: 35, GasCost: 3, UserBase: 90, CEXPresence: 95},
		"Polygon":   {LiquidityDepth: 75, DEXCount: 30, GasCost: 1, UserBase: 85, CEXPresence: 85},
		"Solana":    {LiquidityDepth: 80, DEXCount: 25, GasCost: 0.5, UserBase: 88, CEXPresence: 90},
		"Avalanche": {LiquidityDepth: 70, DEXCount: 20, GasCost: 2, UserBase: 80, CEXPresence: 80},
	}
}
