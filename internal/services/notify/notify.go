// Package notify delivers triggered-alert notifications
package notify

import (
	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

// LogNotifier writes triggered alerts to the application log. Always wired, so
// a headless deployment still records every trigger.
type LogNotifier struct {
	logger *common.Logger
}

var _ interfaces.Notifier = (*LogNotifier)(nil)

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *common.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) AlertTriggered(event models.AlertEvent) {
	n.logger.Info().
		Str("alert_id", event.Alert.ID).
		Str("coin", event.Alert.CoinID).
		Str("symbol", event.Alert.Symbol).
		Str("type", string(event.Alert.Type)).
		Float64("target", event.Alert.TargetPrice).
		Float64("price", event.CurrentPrice).
		Msg("Price alert triggered")
}

// Fanout delivers each event to every wrapped notifier.
type Fanout []interfaces.Notifier

var _ interfaces.Notifier = (Fanout)(nil)

func (f Fanout) AlertTriggered(event models.AlertEvent) {
	for _, n := range f {
		n.AlertTriggered(event)
	}
}
