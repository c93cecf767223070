// Package market maintains the live price view and serves market data
package market

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/models"
)

// quoteAsset is the exchange quote currency used to map streaming pairs back
// to aggregator coin ids (BTC -> BTCUSDT).
const quoteAsset = "USDT"

type priceEntry struct {
	price   float64
	updated time.Time
}

// Service merges aggregator snapshots and streaming exchange ticks into one
// price map, and caches market rows in storage behind freshness TTLs.
type Service struct {
	storage  interfaces.StorageManager
	gecko    interfaces.CoinGeckoClient
	logger   *common.Logger
	currency string

	mu      sync.RWMutex
	prices  map[string]priceEntry // coin id -> latest price
	symbols map[string]string     // exchange pair -> coin id

	trending   []*models.TrendingCoin
	trendingAt time.Time
}

var _ interfaces.MarketService = (*Service)(nil)

// NewService creates the market service.
func NewService(storage interfaces.StorageManager, gecko interfaces.CoinGeckoClient, currency string, logger *common.Logger) *Service {
	if currency == "" {
		currency = "usd"
	}
	return &Service{
		storage:  storage,
		gecko:    gecko,
		logger:   logger,
		currency: currency,
		prices:   make(map[string]priceEntry),
		symbols:  make(map[string]string),
	}
}

// RefreshTop pulls the top-coins markets page, stores the rows, and folds the
// prices into the live view.
func (s *Service) RefreshTop(ctx context.Context, limit int) error {
	coins, err := s.gecko.TopCoins(ctx, limit, s.currency)
	if err != nil {
		return fmt.Errorf("failed to fetch top coins: %w", err)
	}

	if err := s.storage.MarketStore().SaveCoins(ctx, coins); err != nil {
		return fmt.Errorf("failed to store market rows: %w", err)
	}

	now := time.Now()
	s.mu.Lock()
	for _, c := range coins {
		s.prices[c.ID] = priceEntry{price: c.CurrentPrice, updated: now}
		s.symbols[strings.ToUpper(c.Symbol)+quoteAsset] = c.ID
	}
	s.mu.Unlock()

	s.logger.Debug().Int("coins", len(coins)).Msg("Top coins refreshed")
	return nil
}

// RefreshCoins refreshes spot prices for specific coins. Coins the aggregator
// does not return are simply absent from the price map this cycle.
func (s *Service) RefreshCoins(ctx context.Context, coinIDs []string) error {
	if len(coinIDs) == 0 {
		return nil
	}

	prices, err := s.gecko.SimplePrice(ctx, coinIDs, s.currency)
	if err != nil {
		return fmt.Errorf("failed to fetch prices: %w", err)
	}

	now := time.Now()
	s.mu.Lock()
	for id, price := range prices {
		s.prices[id] = priceEntry{price: price, updated: now}
	}
	s.mu.Unlock()

	s.logger.Debug().Int("requested", len(coinIDs)).Int("resolved", len(prices)).Msg("Spot prices refreshed")
	return nil
}

// ApplyTick folds a streaming exchange tick into the price map. Ticks for
// pairs that no known coin maps to are dropped.
func (s *Service) ApplyTick(tick models.PriceTick) {
	s.mu.Lock()
	defer s.mu.Unlock()

	coinID, ok := s.symbols[strings.ToUpper(tick.Symbol)]
	if !ok {
		return
	}
	ts := tick.Timestamp
	if ts.IsZero() {
		ts = time.Now()
	}
	s.prices[coinID] = priceEntry{price: tick.Price, updated: ts}
}

// GetPrice returns the live price for a coin, if known.
func (s *Service) GetPrice(coinID string) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.prices[coinID]
	return e.price, ok
}

// GetPrices returns live prices for the given coins. Unknown coins are
// omitted from the result.
func (s *Service) GetPrices(coinIDs []string) map[string]float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]float64, len(coinIDs))
	for _, id := range coinIDs {
		if e, ok := s.prices[id]; ok {
			out[id] = e.price
		}
	}
	return out
}

// ListCoins returns stored market rows ordered by market cap rank, fetching
// from the aggregator when the store is empty.
func (s *Service) ListCoins(ctx context.Context, limit int) ([]*models.Coin, error) {
	coins, err := s.storage.MarketStore().ListCoins(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list coins: %w", err)
	}
	if len(coins) > 0 {
		return coins, nil
	}

	if err := s.RefreshTop(ctx, limit); err != nil {
		return nil, err
	}
	return s.storage.MarketStore().ListCoins(ctx, limit)
}

// GetCoin returns one market row, refreshing it from the aggregator when the
// stored copy is stale. A fetch failure falls back to the stale copy.
func (s *Service) GetCoin(ctx context.Context, coinID string) (*models.Coin, error) {
	cached, err := s.storage.MarketStore().GetCoin(ctx, coinID)
	if err != nil {
		return nil, fmt.Errorf("failed to read coin %s: %w", coinID, err)
	}
	if cached != nil && common.IsFresh(cached.LastUpdated, common.FreshnessCoin) {
		return cached, nil
	}

	coin, err := s.gecko.CoinByID(ctx, coinID, s.currency)
	if err != nil {
		if cached != nil {
			s.logger.Warn().Err(err).Str("coin", coinID).Msg("Coin refresh failed, serving stale copy")
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch coin %s: %w", coinID, err)
	}

	if err := s.storage.MarketStore().SaveCoin(ctx, coin); err != nil {
		return nil, fmt.Errorf("failed to store coin %s: %w", coinID, err)
	}

	s.mu.Lock()
	s.prices[coin.ID] = priceEntry{price: coin.CurrentPrice, updated: time.Now()}
	s.symbols[strings.ToUpper(coin.Symbol)+quoteAsset] = coin.ID
	s.mu.Unlock()

	return coin, nil
}

// Overview returns the global market overview, refreshed behind its TTL.
func (s *Service) Overview(ctx context.Context) (*models.MarketOverview, error) {
	cached, err := s.storage.MarketStore().GetOverview(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read market overview: %w", err)
	}
	if cached != nil && common.IsFresh(cached.UpdatedAt, common.FreshnessOverview) {
		return cached, nil
	}

	overview, err := s.gecko.Global(ctx)
	if err != nil {
		if cached != nil {
			s.logger.Warn().Err(err).Msg("Overview refresh failed, serving stale copy")
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch market overview: %w", err)
	}
	overview.UpdatedAt = time.Now()

	if err := s.storage.MarketStore().SaveOverview(ctx, overview); err != nil {
		return nil, fmt.Errorf("failed to store market overview: %w", err)
	}
	return overview, nil
}

// Trending returns trending search coins from a short-lived memory cache.
func (s *Service) Trending(ctx context.Context) ([]*models.TrendingCoin, error) {
	s.mu.RLock()
	if s.trending != nil && common.IsFresh(s.trendingAt, common.FreshnessTrending) {
		cached := s.trending
		s.mu.RUnlock()
		return cached, nil
	}
	s.mu.RUnlock()

	trending, err := s.gecko.Trending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch trending coins: %w", err)
	}

	s.mu.Lock()
	s.trending = trending
	s.trendingAt = time.Now()
	s.mu.Unlock()

	return trending, nil
}
