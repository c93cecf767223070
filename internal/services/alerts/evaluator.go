// Package alerts manages price alerts and runs evaluation cycles
package alerts

import (
	"math"
	"time"

	"github.com/coindeck/coindeck/internal/models"
)

// evaluateTick checks every active alert for one coin against its current
// price, marks the matching ones triggered, and returns the resulting events.
// A triggered alert stays triggered: later ticks never fire it again.
func evaluateTick(col *models.AlertCollection, coinID string, price float64, now time.Time) []models.AlertEvent {
	var events []models.AlertEvent
	for i := range col.Alerts {
		a := &col.Alerts[i]
		if a.CoinID != coinID || !a.IsActive() {
			continue
		}
		if !conditionMet(a, price) {
			continue
		}

		a.Triggered = true
		at := now
		a.TriggeredAt = &at

		events = append(events, models.AlertEvent{
			Alert:        *a,
			CurrentPrice: price,
			OccurredAt:   now,
		})
	}

	if len(events) > 0 {
		col.UpdatedAt = now
	}
	return events
}

// conditionMet reports whether the alert's condition holds at the given price.
// Threshold comparisons are inclusive. A percent_change alert without a usable
// base price never fires.
func conditionMet(a *models.PriceAlert, price float64) bool {
	switch a.Type {
	case models.AlertAbove:
		return price >= a.TargetPrice
	case models.AlertBelow:
		return price <= a.TargetPrice
	case models.AlertPercentChange:
		if a.BasePrice == nil || *a.BasePrice == 0 {
			return false
		}
		change := (price - *a.BasePrice) / *a.BasePrice * 100
		return math.Abs(change) >= math.Abs(a.TargetPrice)
	default:
		return false
	}
}
