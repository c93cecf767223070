// Package interfaces defines service contracts for Coindeck
package interfaces

import (
	"context"

	"github.com/coindeck/coindeck/internal/models"
)

// MarketService merges aggregator snapshots and exchange ticks into a single
// live price view, and serves market data to the API layer.
type MarketService interface {
	// RefreshTop pulls the top-coins markets page, updating the price map
	// and stored coin rows.
	RefreshTop(ctx context.Context, limit int) error

	// RefreshCoins refreshes spot prices for specific coins (alert checks,
	// watchlist updates). Coins the aggregator does not return are simply
	// absent from the price map this cycle.
	RefreshCoins(ctx context.Context, coinIDs []string) error

	// ApplyTick folds a streaming exchange tick into the price map.
	ApplyTick(tick models.PriceTick)

	// GetPrice returns the live price for a coin, if known.
	GetPrice(coinID string) (float64, bool)

	// GetPrices returns live prices for the given coins. Unknown coins are
	// omitted from the result.
	GetPrices(coinIDs []string) map[string]float64

	// ListCoins returns stored market rows ordered by market cap rank.
	ListCoins(ctx context.Context, limit int) ([]*models.Coin, error)

	// GetCoin returns one stored market row, refreshing it when stale.
	GetCoin(ctx context.Context, coinID string) (*models.Coin, error)

	// Overview returns the global market overview.
	Overview(ctx context.Context) (*models.MarketOverview, error)

	// Trending returns trending search coins.
	Trending(ctx context.Context) ([]*models.TrendingCoin, error)
}

// PortfolioService manages simulated portfolios and their analytics.
type PortfolioService interface {
	CreatePortfolio(ctx context.Context, name, description string) (*models.Portfolio, error)
	GetPortfolio(ctx context.Context, id string) (*models.Portfolio, error)
	ListPortfolios(ctx context.Context) ([]*models.Portfolio, error)
	UpdatePortfolio(ctx context.Context, id, name, description string) (*models.Portfolio, error)
	DeletePortfolio(ctx context.Context, id string) error

	// CurrentPortfolio returns the portfolio marked current, or nil.
	CurrentPortfolio(ctx context.Context) (*models.Portfolio, error)
	SetCurrentPortfolio(ctx context.Context, id string) error

	// AddTransaction folds a buy/sell into the portfolio's holdings and
	// records it in the transaction log.
	AddTransaction(ctx context.Context, tx models.Transaction) (*models.Portfolio, error)
	ListTransactions(ctx context.Context, portfolioID string) ([]*models.Transaction, error)

	// Snapshot computes the analytics snapshot at live prices. Returns nil
	// (no error) for a portfolio with zero holdings.
	Snapshot(ctx context.Context, id string) (*models.PortfolioSnapshot, error)

	// RenderAllocationChart renders the allocation donut as PNG bytes.
	RenderAllocationChart(ctx context.Context, id string) ([]byte, error)
}

// WatchlistService manages the tracked-coin list.
type WatchlistService interface {
	GetWatchlist(ctx context.Context) (*models.Watchlist, error)
	AddItem(ctx context.Context, item models.WatchlistItem) (*models.Watchlist, error)
	UpdateItem(ctx context.Context, coinID string, update models.WatchlistItem) (*models.Watchlist, error)
	RemoveItem(ctx context.Context, coinID string) (*models.Watchlist, error)
	AddCategory(ctx context.Context, category string) (*models.Watchlist, error)
	RemoveCategory(ctx context.Context, category string) (*models.Watchlist, error)

	// Clear removes every item along with the alerts attached to them.
	// Categories are kept.
	Clear(ctx context.Context) (*models.Watchlist, error)

	// RefreshPrices updates item prices from the market service.
	RefreshPrices(ctx context.Context) (*models.Watchlist, error)

	// Export serializes the watchlist (with alerts) to a JSON blob.
	Export(ctx context.Context) ([]byte, error)

	// Import replaces the watchlist from an exported blob. Malformed data
	// is reported as an error from this operation only.
	Import(ctx context.Context, data []byte) error
}

// AlertService manages price alerts and runs evaluation cycles.
type AlertService interface {
	CreateAlert(ctx context.Context, alert models.PriceAlert) (*models.PriceAlert, error)
	GetAlert(ctx context.Context, id string) (*models.PriceAlert, error)
	ListAlerts(ctx context.Context) ([]models.PriceAlert, error)
	UpdateAlert(ctx context.Context, id string, enabled *bool, targetPrice *float64) (*models.PriceAlert, error)
	DeleteAlert(ctx context.Context, id string) error

	// ResetAlert re-arms a triggered alert.
	ResetAlert(ctx context.Context, id string) (*models.PriceAlert, error)

	// DeleteByCoin removes all alerts for a coin (watchlist removal).
	DeleteByCoin(ctx context.Context, coinID string) (int, error)

	// ReplaceAll swaps in a whole new alert collection. Watchlist import
	// restores exported alerts through it; a bulk clear passes nil.
	ReplaceAll(ctx context.Context, alerts []models.PriceAlert) error

	// CheckAll runs one evaluation cycle over all active alerts, grouped by
	// coin, and returns the alerts that transitioned to triggered.
	CheckAll(ctx context.Context) ([]models.PriceAlert, error)
}

// SettingsService manages the user preferences document.
type SettingsService interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, settings models.Settings) (*models.Settings, error)
}

// Notifier consumes newly triggered alerts. Implementations are best-effort
// and must never fail the evaluation cycle.
type Notifier interface {
	AlertTriggered(event models.AlertEvent)
}
