package models

import "time"

// AlertType selects the alert trigger condition.
type AlertType string

const (
	AlertAbove         AlertType = "above"
	AlertBelow         AlertType = "below"
	AlertPercentChange AlertType = "percent_change"
)

// PriceAlert is a user-configured price trigger. A triggered alert is
// terminal: the evaluator never re-checks it unless explicitly reset.
type PriceAlert struct {
	ID          string     `json:"id"`
	CoinID      string     `json:"coin_id"`
	Symbol      string     `json:"symbol"`
	Name        string     `json:"name,omitempty"`
	Type        AlertType  `json:"type"`
	TargetPrice float64    `json:"target_price"`
	BasePrice   *float64   `json:"base_price,omitempty"` // required for percent_change
	Enabled     bool       `json:"enabled"`
	Triggered   bool       `json:"triggered"`
	CreatedAt   time.Time  `json:"created_at"`
	TriggeredAt *time.Time `json:"triggered_at,omitempty"`
}

// IsActive reports whether the evaluator should consider this alert.
func (a *PriceAlert) IsActive() bool {
	return a.Enabled && !a.Triggered
}

// AlertCollection is the whole alert set, replaced on every write.
type AlertCollection struct {
	Alerts    []PriceAlert `json:"alerts"`
	Version   int          `json:"version"`
	UpdatedAt time.Time    `json:"updated_at"`
}

// FindByID returns the alert with the given id and its index, or -1.
func (c *AlertCollection) FindByID(id string) (*PriceAlert, int) {
	for i := range c.Alerts {
		if c.Alerts[i].ID == id {
			return &c.Alerts[i], i
		}
	}
	return nil, -1
}

// Active returns the alerts the evaluator should consider.
func (c *AlertCollection) Active() []PriceAlert {
	var out []PriceAlert
	for _, a := range c.Alerts {
		if a.IsActive() {
			out = append(out, a)
		}
	}
	return out
}

// AlertEvent is the notification payload for a newly triggered alert.
type AlertEvent struct {
	Alert        PriceAlert `json:"alert"`
	CurrentPrice float64    `json:"current_price"`
	OccurredAt   time.Time  `json:"occurred_at"`
}
