package alerts

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coindeck/coindeck/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func TestConditionMet(t *testing.T) {
	tests := []struct {
		name  string
		alert models.PriceAlert
		price float64
		want  bool
	}{
		{
			name:  "above met at threshold",
			alert: models.PriceAlert{Type: models.AlertAbove, TargetPrice: 50000},
			price: 50000,
			want:  true,
		},
		{
			name:  "above met past threshold",
			alert: models.PriceAlert{Type: models.AlertAbove, TargetPrice: 50000},
			price: 51000,
			want:  true,
		},
		{
			name:  "above not met",
			alert: models.PriceAlert{Type: models.AlertAbove, TargetPrice: 50000},
			price: 49999.99,
			want:  false,
		},
		{
			name:  "below met at threshold",
			alert: models.PriceAlert{Type: models.AlertBelow, TargetPrice: 1500},
			price: 1500,
			want:  true,
		},
		{
			name:  "below not met",
			alert: models.PriceAlert{Type: models.AlertBelow, TargetPrice: 1500},
			price: 1500.01,
			want:  false,
		},
		{
			name:  "percent change up",
			alert: models.PriceAlert{Type: models.AlertPercentChange, TargetPrice: 10, BasePrice: floatPtr(100)},
			price: 110,
			want:  true,
		},
		{
			name:  "percent change down fires on magnitude",
			alert: models.PriceAlert{Type: models.AlertPercentChange, TargetPrice: 10, BasePrice: floatPtr(100)},
			price: 89,
			want:  true,
		},
		{
			name:  "percent change below magnitude",
			alert: models.PriceAlert{Type: models.AlertPercentChange, TargetPrice: 10, BasePrice: floatPtr(100)},
			price: 105,
			want:  false,
		},
		{
			name:  "percent change negative target uses magnitude",
			alert: models.PriceAlert{Type: models.AlertPercentChange, TargetPrice: -10, BasePrice: floatPtr(100)},
			price: 111,
			want:  true,
		},
		{
			name:  "percent change without base price never fires",
			alert: models.PriceAlert{Type: models.AlertPercentChange, TargetPrice: 10},
			price: 1000000,
			want:  false,
		},
		{
			name:  "percent change with zero base price never fires",
			alert: models.PriceAlert{Type: models.AlertPercentChange, TargetPrice: 10, BasePrice: floatPtr(0)},
			price: 100,
			want:  false,
		},
		{
			name:  "unknown type never fires",
			alert: models.PriceAlert{Type: "between", TargetPrice: 10},
			price: 10,
			want:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, conditionMet(&tt.alert, tt.price))
		})
	}
}

func TestEvaluateTickMarksTriggered(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	col := &models.AlertCollection{
		Alerts: []models.PriceAlert{
			{ID: "a1", CoinID: "bitcoin", Type: models.AlertAbove, TargetPrice: 50000, Enabled: true},
			{ID: "a2", CoinID: "bitcoin", Type: models.AlertBelow, TargetPrice: 40000, Enabled: true},
			{ID: "a3", CoinID: "ethereum", Type: models.AlertAbove, TargetPrice: 1000, Enabled: true},
		},
	}

	events := evaluateTick(col, "bitcoin", 52000, now)

	require.Len(t, events, 1)
	assert.Equal(t, "a1", events[0].Alert.ID)
	assert.Equal(t, 52000.0, events[0].CurrentPrice)
	assert.Equal(t, now, events[0].OccurredAt)

	a1, _ := col.FindByID("a1")
	assert.True(t, a1.Triggered)
	require.NotNil(t, a1.TriggeredAt)
	assert.Equal(t, now, *a1.TriggeredAt)

	// The other coin's alert is untouched even though its condition holds.
	a3, _ := col.FindByID("a3")
	assert.False(t, a3.Triggered)
}

func TestEvaluateTickTriggersAtMostOnce(t *testing.T) {
	now := time.Now()
	col := &models.AlertCollection{
		Alerts: []models.PriceAlert{
			{ID: "a1", CoinID: "bitcoin", Type: models.AlertAbove, TargetPrice: 50000, Enabled: true},
		},
	}

	first := evaluateTick(col, "bitcoin", 52000, now)
	require.Len(t, first, 1)

	// Condition still holds on the next tick; the alert must stay silent.
	second := evaluateTick(col, "bitcoin", 53000, now.Add(time.Minute))
	assert.Empty(t, second)

	a1, _ := col.FindByID("a1")
	assert.Equal(t, now, *a1.TriggeredAt)
}

func TestEvaluateTickSkipsDisabled(t *testing.T) {
	col := &models.AlertCollection{
		Alerts: []models.PriceAlert{
			{ID: "a1", CoinID: "bitcoin", Type: models.AlertAbove, TargetPrice: 50000, Enabled: false},
		},
	}

	events := evaluateTick(col, "bitcoin", 60000, time.Now())
	assert.Empty(t, events)

	a1, _ := col.FindByID("a1")
	assert.False(t, a1.Triggered)
}

func TestEvaluateTickMultipleAlertsOneTick(t *testing.T) {
	now := time.Now()
	col := &models.AlertCollection{
		Alerts: []models.PriceAlert{
			{ID: "a1", CoinID: "bitcoin", Type: models.AlertAbove, TargetPrice: 50000, Enabled: true},
			{ID: "a2", CoinID: "bitcoin", Type: models.AlertAbove, TargetPrice: 51000, Enabled: true},
			{ID: "a3", CoinID: "bitcoin", Type: models.AlertPercentChange, TargetPrice: 5, BasePrice: floatPtr(48000), Enabled: true},
		},
	}

	events := evaluateTick(col, "bitcoin", 52000, now)
	require.Len(t, events, 3)
	for _, a := range col.Alerts {
		assert.True(t, a.Triggered, a.ID)
	}
}
