// Package analytics computes portfolio valuation, allocation, and risk
// metrics. Every function here is pure: inputs in, values out, no I/O.
package analytics

import "github.com/coindeck/coindeck/internal/models"

// ValueAsset joins a holding with a live price.
// A zero cost basis (airdrops, zero amount) yields PnLPercent 0 rather than
// dividing by zero. Allocation is filled in by ScoreAllocation.
func ValueAsset(h models.Holding, currentPrice float64) models.ValuedAsset {
	value := h.Amount * currentPrice
	cost := h.Cost()
	pnl := value - cost

	pnlPercent := 0.0
	if cost > 0 {
		pnlPercent = pnl / cost * 100
	}

	return models.ValuedAsset{
		Holding:      h,
		CurrentPrice: currentPrice,
		Value:        value,
		PnL:          pnl,
		PnLPercent:   pnlPercent,
	}
}
