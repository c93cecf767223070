package analytics

import (
	"sort"
	"time"

	"github.com/coindeck/coindeck/internal/models"
)

// Summarize computes the full analytics snapshot for a portfolio at the given
// prices. Returns nil for a portfolio with no holdings: an empty portfolio is
// a valid state, not a failure.
//
// Holdings without a price in the map are valued at zero for this snapshot;
// the missing price is the market collaborator's concern.
func Summarize(p *models.Portfolio, prices map[string]float64, now time.Time) *models.PortfolioSnapshot {
	if p == nil || len(p.Holdings) == 0 {
		return nil
	}

	valued := make([]models.ValuedAsset, 0, len(p.Holdings))
	totalCost := 0.0
	for _, h := range p.Holdings {
		valued = append(valued, ValueAsset(h, prices[h.CoinID]))
		totalCost += h.Cost()
	}

	alloc := ScoreAllocation(valued)

	totalPnl := alloc.TotalValue - totalCost
	totalPnlPercent := 0.0
	if totalCost > 0 {
		totalPnlPercent = totalPnl / totalCost * 100
	}

	// Stable sort by pnl% descending: best is first, worst is last, ties
	// keep holding order.
	ranked := make([]models.ValuedAsset, len(alloc.Assets))
	copy(ranked, alloc.Assets)
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].PnLPercent > ranked[j].PnLPercent
	})

	best := performer(ranked[0])
	worst := performer(ranked[len(ranked)-1])

	return &models.PortfolioSnapshot{
		PortfolioID:          p.ID,
		TotalValue:           alloc.TotalValue,
		TotalCost:            totalCost,
		TotalPnL:             totalPnl,
		TotalPnLPercent:      totalPnlPercent,
		BestPerformer:        best,
		WorstPerformer:       worst,
		DiversificationScore: alloc.DiversificationScore,
		RiskLevel:            alloc.RiskLevel,
		Assets:               alloc.Assets,
		ComputedAt:           now,
	}
}

func performer(a models.ValuedAsset) *models.Performer {
	return &models.Performer{
		CoinID:     a.CoinID,
		Symbol:     a.Symbol,
		PnLPercent: a.PnLPercent,
	}
}
