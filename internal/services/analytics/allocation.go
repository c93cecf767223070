package analytics

import "github.com/coindeck/coindeck/internal/models"

// maxAssets is the reference holding count for a fully diversified portfolio.
// The ideal HHI of an evenly split portfolio of this size anchors the top of
// the 0-100 diversification scale.
const maxAssets = 10

// Allocation is the result of scoring a set of valued assets.
type Allocation struct {
	Assets               []models.ValuedAsset
	TotalValue           float64
	DiversificationScore float64
	RiskLevel            models.RiskLevel
}

// ScoreAllocation fills per-asset allocation percentages and computes the
// concentration-based diversification score and risk level.
//
// The score normalizes the Herfindahl-Hirschman Index over 0-100 shares:
// 100 means at or beyond the evenly-split reference portfolio, 0 means a
// single asset holds everything. A portfolio with zero total value carries
// no signal and scores 0 with high risk.
func ScoreAllocation(assets []models.ValuedAsset) Allocation {
	out := Allocation{
		Assets:    make([]models.ValuedAsset, len(assets)),
		RiskLevel: models.RiskLevelHigh,
	}
	copy(out.Assets, assets)

	for _, a := range assets {
		out.TotalValue += a.Value
	}

	if out.TotalValue <= 0 {
		for i := range out.Assets {
			out.Assets[i].Allocation = 0
		}
		return out
	}

	hhi := 0.0
	for i := range out.Assets {
		share := out.Assets[i].Value / out.TotalValue * 100
		out.Assets[i].Allocation = share
		hhi += share * share
	}

	idealHHI := 10000.0 / maxAssets
	out.DiversificationScore = clamp((10000-hhi)/(10000-idealHHI)*100, 0, 100)
	out.RiskLevel = classifyRisk(out.DiversificationScore, len(assets))

	return out
}

// classifyRisk applies the ordered risk rule; first match wins, inequalities
// are strict.
func classifyRisk(score float64, assetCount int) models.RiskLevel {
	switch {
	case score > 70 && assetCount >= 5:
		return models.RiskLevelLow
	case score > 40 && assetCount >= 3:
		return models.RiskLevelMedium
	default:
		return models.RiskLevelHigh
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
