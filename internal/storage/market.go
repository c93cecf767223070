package storage

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/models"
)

const overviewKey = "overview"

// marketStorage implements interfaces.MarketStore using BadgerDB
type marketStorage struct {
	db     *BadgerDB
	logger *common.Logger
}

func newMarketStorage(db *BadgerDB, logger *common.Logger) *marketStorage {
	return &marketStorage{db: db, logger: logger}
}

func (s *marketStorage) GetCoin(ctx context.Context, coinID string) (*models.Coin, error) {
	var coin models.Coin
	err := s.db.store.Get(coinID, &coin)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get coin: %w", err)
	}
	return &coin, nil
}

func (s *marketStorage) SaveCoin(ctx context.Context, coin *models.Coin) error {
	if coin.ID == "" {
		return fmt.Errorf("coin id is required")
	}
	if coin.LastUpdated.IsZero() {
		coin.LastUpdated = time.Now()
	}
	if err := s.db.store.Upsert(coin.ID, coin); err != nil {
		return fmt.Errorf("failed to save coin: %w", err)
	}
	return nil
}

func (s *marketStorage) SaveCoins(ctx context.Context, coins []*models.Coin) error {
	for _, coin := range coins {
		if err := s.SaveCoin(ctx, coin); err != nil {
			return err
		}
	}
	s.logger.Debug().Int("coins", len(coins)).Msg("Market rows saved")
	return nil
}

func (s *marketStorage) ListCoins(ctx context.Context, limit int) ([]*models.Coin, error) {
	var coins []models.Coin
	if err := s.db.store.Find(&coins, nil); err != nil {
		return nil, fmt.Errorf("failed to list coins: %w", err)
	}

	sort.Slice(coins, func(i, j int) bool {
		return coins[i].MarketCapRank < coins[j].MarketCapRank
	})
	if limit > 0 && len(coins) > limit {
		coins = coins[:limit]
	}

	out := make([]*models.Coin, len(coins))
	for i := range coins {
		out[i] = &coins[i]
	}
	return out, nil
}

func (s *marketStorage) GetOverview(ctx context.Context) (*models.MarketOverview, error) {
	var o models.MarketOverview
	err := s.db.store.Get(overviewKey, &o)
	if err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get market overview: %w", err)
	}
	return &o, nil
}

func (s *marketStorage) SaveOverview(ctx context.Context, o *models.MarketOverview) error {
	if err := s.db.store.Upsert(overviewKey, o); err != nil {
		return fmt.Errorf("failed to save market overview: %w", err)
	}
	return nil
}
