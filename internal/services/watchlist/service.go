// Package watchlist manages the tracked-coin list
package watchlist

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

// exportVersion tags export envelopes so future shapes can be told apart.
const exportVersion = "1.0"

// Service implements interfaces.WatchlistService.
type Service struct {
	storage interfaces.StorageManager
	market  interfaces.MarketService
	alerts  interfaces.AlertService
	logger  *common.Logger

	// mu serializes read-modify-write cycles on the watchlist document.
	mu sync.Mutex
}

var _ interfaces.WatchlistService = (*Service)(nil)

// NewService creates the watchlist service.
func NewService(storage interfaces.StorageManager, market interfaces.MarketService, alerts interfaces.AlertService, logger *common.Logger) *Service {
	return &Service{
		storage: storage,
		market:  market,
		alerts:  alerts,
		logger:  logger,
	}
}

// GetWatchlist returns the watchlist, seeding an empty one with default
// categories on first use.
func (s *Service) GetWatchlist(ctx context.Context) (*models.Watchlist, error) {
	return s.load(ctx)
}

// AddItem adds a coin to the watchlist. Adding a coin that is already present
// updates its category and notes instead of duplicating it.
func (s *Service) AddItem(ctx context.Context, item models.WatchlistItem) (*models.Watchlist, error) {
	item.CoinID = strings.TrimSpace(item.CoinID)
	if item.CoinID == "" {
		return nil, fmt.Errorf("coin id is required")
	}
	item.Symbol = strings.ToUpper(item.Symbol)

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if existing, idx := w.FindByCoinID(item.CoinID); idx >= 0 {
		existing.Category = item.Category
		existing.Notes = item.Notes
	} else {
		item.AddedAt = time.Now()
		if price, ok := s.market.GetPrice(item.CoinID); ok {
			item.CurrentPrice = price
		}
		if coin, err := s.storage.MarketStore().GetCoin(ctx, item.CoinID); err == nil && coin != nil {
			item.PriceChange24h = coin.PriceChangePercent24h
		}
		w.Items = append(w.Items, item)
	}
	w.UpdatedAt = time.Now()

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	s.logger.Info().Str("coin", item.CoinID).Msg("Watchlist item added")
	return w, nil
}

// UpdateItem changes a tracked coin's category or notes.
func (s *Service) UpdateItem(ctx context.Context, coinID string, update models.WatchlistItem) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	item, idx := w.FindByCoinID(coinID)
	if idx < 0 {
		return nil, fmt.Errorf("coin %s is not on the watchlist", coinID)
	}

	item.Category = update.Category
	item.Notes = update.Notes
	w.UpdatedAt = time.Now()

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// RemoveItem removes a coin from the watchlist along with all of its alerts.
func (s *Service) RemoveItem(ctx context.Context, coinID string) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	_, idx := w.FindByCoinID(coinID)
	if idx < 0 {
		return nil, fmt.Errorf("coin %s is not on the watchlist", coinID)
	}

	w.Items = append(w.Items[:idx], w.Items[idx+1:]...)
	w.UpdatedAt = time.Now()

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	removed, err := s.alerts.DeleteByCoin(ctx, coinID)
	if err != nil {
		s.logger.Warn().Err(err).Str("coin", coinID).Msg("Failed to remove coin alerts")
	} else if removed > 0 {
		s.logger.Info().Str("coin", coinID).Int("alerts_removed", removed).Msg("Coin alerts removed with watchlist item")
	}

	return w, nil
}

// Clear removes all items and empties the alert collection, including alerts
// for coins no longer on the watchlist. Categories are kept.
func (s *Service) Clear(ctx context.Context) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	removed := len(w.Items)
	w.Items = []models.WatchlistItem{}
	w.UpdatedAt = time.Now()

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}

	if err := s.alerts.ReplaceAll(ctx, nil); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to clear alerts")
	}

	s.logger.Info().Int("items_removed", removed).Msg("Watchlist cleared")
	return w, nil
}

// AddCategory appends a new category. Duplicate names are rejected
// case-insensitively.
func (s *Service) AddCategory(ctx context.Context, category string) (*models.Watchlist, error) {
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, fmt.Errorf("category name is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if w.HasCategory(category) {
		return nil, fmt.Errorf("category %q already exists", category)
	}

	w.Categories = append(w.Categories, category)
	w.UpdatedAt = time.Now()

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// RemoveCategory removes a category. Items filed under it keep working, just
// uncategorized.
func (s *Service) RemoveCategory(ctx context.Context, category string) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	found := false
	kept := w.Categories[:0]
	for _, c := range w.Categories {
		if strings.EqualFold(c, category) {
			found = true
			continue
		}
		kept = append(kept, c)
	}
	if !found {
		return nil, fmt.Errorf("category %q not found", category)
	}
	w.Categories = kept

	for i := range w.Items {
		if strings.EqualFold(w.Items[i].Category, category) {
			w.Items[i].Category = ""
		}
	}
	w.UpdatedAt = time.Now()

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// RefreshPrices updates item prices from the live market view and 24h change
// from the stored market rows. Coins without a known price keep their last
// stored value.
func (s *Service) RefreshPrices(ctx context.Context) (*models.Watchlist, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if len(w.Items) == 0 {
		return w, nil
	}

	coinIDs := make([]string, 0, len(w.Items))
	for _, item := range w.Items {
		coinIDs = append(coinIDs, item.CoinID)
	}

	if err := s.market.RefreshCoins(ctx, coinIDs); err != nil {
		s.logger.Warn().Err(err).Msg("Price refresh failed, keeping stored prices")
	}
	prices := s.market.GetPrices(coinIDs)

	for i := range w.Items {
		if price, ok := prices[w.Items[i].CoinID]; ok {
			w.Items[i].CurrentPrice = price
		}
		if coin, err := s.storage.MarketStore().GetCoin(ctx, w.Items[i].CoinID); err == nil && coin != nil {
			w.Items[i].PriceChange24h = coin.PriceChangePercent24h
		}
	}
	w.UpdatedAt = time.Now()

	if err := s.save(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// Export serializes the watchlist and all alerts into a portable envelope.
func (s *Service) Export(ctx context.Context) ([]byte, error) {
	w, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	alerts, err := s.alerts.ListAlerts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to collect alerts for export: %w", err)
	}

	envelope := models.WatchlistExport{
		Watchlist:  w.Items,
		Categories: w.Categories,
		Alerts:     alerts,
		ExportedAt: time.Now(),
		Version:    exportVersion,
	}

	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export: %w", err)
	}
	return data, nil
}

// Import replaces the watchlist from an exported envelope. Malformed data is
// rejected before anything is written.
func (s *Service) Import(ctx context.Context, data []byte) error {
	var envelope models.WatchlistExport
	if err := json.Unmarshal(data, &envelope); err != nil {
		return fmt.Errorf("invalid export data: %w", err)
	}
	if envelope.Watchlist == nil {
		return fmt.Errorf("invalid export data: missing watchlist")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	w := models.NewWatchlist()
	w.Items = envelope.Watchlist
	if len(envelope.Categories) > 0 {
		w.Categories = envelope.Categories
	}
	w.UpdatedAt = time.Now()

	if err := s.save(ctx, w); err != nil {
		return err
	}

	if err := s.alerts.ReplaceAll(ctx, envelope.Alerts); err != nil {
		return fmt.Errorf("failed to restore alerts: %w", err)
	}

	s.logger.Info().
		Int("items", len(w.Items)).
		Int("alerts", len(envelope.Alerts)).
		Msg("Watchlist imported")
	return nil
}

func (s *Service) load(ctx context.Context) (*models.Watchlist, error) {
	w, err := s.storage.WatchlistStore().GetWatchlist(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load watchlist: %w", err)
	}
	if w == nil {
		w = models.NewWatchlist()
	}
	return w, nil
}

func (s *Service) save(ctx context.Context, w *models.Watchlist) error {
	if err := s.storage.WatchlistStore().SaveWatchlist(ctx, w); err != nil {
		return fmt.Errorf("failed to save watchlist: %w", err)
	}
	return nil
}
