// Package interfaces defines service contracts for Coindeck
package interfaces

import (
	"context"

	"github.com/coindeck/coindeck/internal/models"
)

// StorageManager coordinates all storage backends
type StorageManager interface {
	PortfolioStore() PortfolioStore
	WatchlistStore() WatchlistStore
	AlertStore() AlertStore
	MarketStore() MarketStore
	SettingsStore() SettingsStore

	// Lifecycle
	Close() error
}

// PortfolioStore persists portfolios and their transaction log.
type PortfolioStore interface {
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	SavePortfolio(ctx context.Context, p *models.Portfolio) error
	DeletePortfolio(ctx context.Context, id string) error
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)

	// Current-portfolio pointer; empty string when unset.
	GetCurrentID(ctx context.Context) (string, error)
	SetCurrentID(ctx context.Context, id string) error

	SaveTransaction(ctx context.Context, tx *models.Transaction) error
	ListTransactions(ctx context.Context, portfolioID string) ([]*models.Transaction, error)
	DeleteTransactions(ctx context.Context, portfolioID string) (int, error)
}

// WatchlistStore persists the watchlist as a single document,
// replaced whole on every write.
type WatchlistStore interface {
	GetWatchlist(ctx context.Context) (*models.Watchlist, error)
	SaveWatchlist(ctx context.Context, w *models.Watchlist) error
}

// AlertStore persists the alert collection as a single document,
// replaced whole on every write.
type AlertStore interface {
	GetAlerts(ctx context.Context) (*models.AlertCollection, error)
	SaveAlerts(ctx context.Context, c *models.AlertCollection) error
}

// MarketStore caches aggregator market rows and the global overview.
type MarketStore interface {
	GetCoin(ctx context.Context, coinID string) (*models.Coin, error)
	SaveCoin(ctx context.Context, coin *models.Coin) error
	SaveCoins(ctx context.Context, coins []*models.Coin) error
	ListCoins(ctx context.Context, limit int) ([]*models.Coin, error)

	GetOverview(ctx context.Context) (*models.MarketOverview, error)
	SaveOverview(ctx context.Context, o *models.MarketOverview) error
}

// SettingsStore persists the settings document.
type SettingsStore interface {
	GetSettings(ctx context.Context) (*models.Settings, error)
	SaveSettings(ctx context.Context, s *models.Settings) error
}
