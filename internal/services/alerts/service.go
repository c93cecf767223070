package alerts

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

// Service implements interfaces.AlertService on top of the alert document
// store and the live market view.
type Service struct {
	storage  interfaces.StorageManager
	market   interfaces.MarketService
	notifier interfaces.Notifier
	logger   *common.Logger

	// rearmOnEnable controls whether re-enabling a triggered alert also
	// clears its triggered state.
	rearmOnEnable bool

	// mu serializes read-modify-write cycles on the alert document.
	mu sync.Mutex
}

var _ interfaces.AlertService = (*Service)(nil)

// NewService creates the alert service.
func NewService(storage interfaces.StorageManager, market interfaces.MarketService, notifier interfaces.Notifier, rearmOnEnable bool, logger *common.Logger) *Service {
	return &Service{
		storage:       storage,
		market:        market,
		notifier:      notifier,
		rearmOnEnable: rearmOnEnable,
		logger:        logger,
	}
}

// CreateAlert validates and stores a new alert. A percent_change alert
// without a base price is baselined at the coin's current price.
func (s *Service) CreateAlert(ctx context.Context, alert models.PriceAlert) (*models.PriceAlert, error) {
	alert.CoinID = strings.TrimSpace(alert.CoinID)
	if alert.CoinID == "" {
		return nil, fmt.Errorf("coin id is required")
	}
	switch alert.Type {
	case models.AlertAbove, models.AlertBelow:
		if alert.TargetPrice <= 0 {
			return nil, fmt.Errorf("target price must be positive for %s alerts", alert.Type)
		}
	case models.AlertPercentChange:
		if alert.TargetPrice == 0 {
			return nil, fmt.Errorf("target percent must be non-zero")
		}
		if alert.BasePrice == nil || *alert.BasePrice == 0 {
			price, ok := s.market.GetPrice(alert.CoinID)
			if !ok {
				return nil, fmt.Errorf("no base price available for %s", alert.CoinID)
			}
			alert.BasePrice = &price
		}
	default:
		return nil, fmt.Errorf("unknown alert type %q", alert.Type)
	}

	alert.ID = uuid.NewString()
	alert.Symbol = strings.ToUpper(alert.Symbol)
	alert.Enabled = true
	alert.Triggered = false
	alert.TriggeredAt = nil
	alert.CreatedAt = time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	col.Alerts = append(col.Alerts, alert)

	if err := s.save(ctx, col); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("alert_id", alert.ID).
		Str("coin", alert.CoinID).
		Str("type", string(alert.Type)).
		Float64("target", alert.TargetPrice).
		Msg("Alert created")

	return &alert, nil
}

// GetAlert returns one alert by id.
func (s *Service) GetAlert(ctx context.Context, id string) (*models.PriceAlert, error) {
	col, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	a, idx := col.FindByID(id)
	if idx < 0 {
		return nil, fmt.Errorf("alert %s not found", id)
	}
	out := *a
	return &out, nil
}

// ListAlerts returns all alerts, triggered and pending alike.
func (s *Service) ListAlerts(ctx context.Context) ([]models.PriceAlert, error) {
	col, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PriceAlert, len(col.Alerts))
	copy(out, col.Alerts)
	return out, nil
}

// UpdateAlert applies partial changes to an alert. Enabling a triggered alert
// re-arms it only when the service is configured to do so; otherwise the
// triggered state persists until an explicit reset.
func (s *Service) UpdateAlert(ctx context.Context, id string, enabled *bool, targetPrice *float64) (*models.PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	a, idx := col.FindByID(id)
	if idx < 0 {
		return nil, fmt.Errorf("alert %s not found", id)
	}

	if targetPrice != nil {
		a.TargetPrice = *targetPrice
	}
	if enabled != nil {
		if *enabled && !a.Enabled && a.Triggered && s.rearmOnEnable {
			a.Triggered = false
			a.TriggeredAt = nil
		}
		a.Enabled = *enabled
	}
	col.UpdatedAt = time.Now()

	if err := s.save(ctx, col); err != nil {
		return nil, err
	}

	out := *a
	return &out, nil
}

// ResetAlert re-arms a triggered alert. A percent_change alert is rebaselined
// at the coin's current price when one is known.
func (s *Service) ResetAlert(ctx context.Context, id string) (*models.PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	a, idx := col.FindByID(id)
	if idx < 0 {
		return nil, fmt.Errorf("alert %s not found", id)
	}

	a.Triggered = false
	a.TriggeredAt = nil
	if a.Type == models.AlertPercentChange {
		if price, ok := s.market.GetPrice(a.CoinID); ok && price > 0 {
			a.BasePrice = &price
		}
	}
	col.UpdatedAt = time.Now()

	if err := s.save(ctx, col); err != nil {
		return nil, err
	}

	s.logger.Info().Str("alert_id", id).Msg("Alert reset")

	out := *a
	return &out, nil
}

// DeleteAlert removes one alert by id.
func (s *Service) DeleteAlert(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return err
	}
	_, idx := col.FindByID(id)
	if idx < 0 {
		return fmt.Errorf("alert %s not found", id)
	}

	col.Alerts = append(col.Alerts[:idx], col.Alerts[idx+1:]...)
	col.UpdatedAt = time.Now()

	return s.save(ctx, col)
}

// DeleteByCoin removes every alert for a coin and returns how many were
// removed. Removing a coin from the watchlist calls this.
func (s *Service) DeleteByCoin(ctx context.Context, coinID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return 0, err
	}

	kept := col.Alerts[:0]
	removed := 0
	for _, a := range col.Alerts {
		if a.CoinID == coinID {
			removed++
			continue
		}
		kept = append(kept, a)
	}
	if removed == 0 {
		return 0, nil
	}

	col.Alerts = kept
	col.UpdatedAt = time.Now()
	if err := s.save(ctx, col); err != nil {
		return 0, err
	}

	s.logger.Info().Str("coin", coinID).Int("removed", removed).Msg("Alerts removed with coin")
	return removed, nil
}

// ReplaceAll swaps the stored collection for the given set of alerts.
func (s *Service) ReplaceAll(ctx context.Context, alerts []models.PriceAlert) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return err
	}

	col.Alerts = alerts
	col.UpdatedAt = time.Now()
	if err := s.save(ctx, col); err != nil {
		return err
	}

	s.logger.Info().Int("alerts", len(alerts)).Msg("Alert collection replaced")
	return nil
}

// CheckAll runs one evaluation cycle. Active alerts are grouped by coin so
// each coin's price is fetched once, every matching alert transitions to
// triggered exactly once, and the updated document is saved before
// notifications go out.
func (s *Service) CheckAll(ctx context.Context) ([]models.PriceAlert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	col, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	coinIDs := activeCoinIDs(col)
	if len(coinIDs) == 0 {
		return nil, nil
	}

	if err := s.market.RefreshCoins(ctx, coinIDs); err != nil {
		// Stale prices are still usable for this cycle.
		s.logger.Warn().Err(err).Msg("Price refresh failed, checking against cached prices")
	}
	prices := s.market.GetPrices(coinIDs)

	now := time.Now()
	var events []models.AlertEvent
	for _, coinID := range coinIDs {
		price, ok := prices[coinID]
		if !ok {
			continue
		}
		events = append(events, evaluateTick(col, coinID, price, now)...)
	}

	if len(events) == 0 {
		return nil, nil
	}

	if err := s.save(ctx, col); err != nil {
		return nil, fmt.Errorf("failed to persist triggered alerts: %w", err)
	}

	triggered := make([]models.PriceAlert, 0, len(events))
	for _, ev := range events {
		triggered = append(triggered, ev.Alert)
		s.logger.Info().
			Str("alert_id", ev.Alert.ID).
			Str("coin", ev.Alert.CoinID).
			Str("type", string(ev.Alert.Type)).
			Float64("price", ev.CurrentPrice).
			Msg("Alert triggered")
		if s.notifier != nil {
			s.notifier.AlertTriggered(ev)
		}
	}

	return triggered, nil
}

// activeCoinIDs returns the distinct coin ids of active alerts, in first-seen
// order.
func activeCoinIDs(col *models.AlertCollection) []string {
	seen := make(map[string]bool)
	var ids []string
	for i := range col.Alerts {
		a := &col.Alerts[i]
		if !a.IsActive() || seen[a.CoinID] {
			continue
		}
		seen[a.CoinID] = true
		ids = append(ids, a.CoinID)
	}
	return ids
}

func (s *Service) load(ctx context.Context) (*models.AlertCollection, error) {
	col, err := s.storage.AlertStore().GetAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load alerts: %w", err)
	}
	if col == nil {
		col = &models.AlertCollection{Version: 1}
	}
	return col, nil
}

func (s *Service) save(ctx context.Context, col *models.AlertCollection) error {
	if err := s.storage.AlertStore().SaveAlerts(ctx, col); err != nil {
		return fmt.Errorf("failed to save alerts: %w", err)
	}
	return nil
}
