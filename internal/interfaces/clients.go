// Package interfaces defines service contracts for Coindeck
package interfaces

import (
	"context"

	"github.com/coindeck/coindeck/internal/models"
)

// CoinGeckoClient provides access to the market-data aggregator API
type CoinGeckoClient interface {
	// TopCoins retrieves top coins by market cap
	TopCoins(ctx context.Context, limit int, currency string) ([]*models.Coin, error)

	// CoinByID retrieves a single coin's market data
	CoinByID(ctx context.Context, coinID string, currency string) (*models.Coin, error)

	// SimplePrice retrieves spot prices for the given coin ids
	SimplePrice(ctx context.Context, coinIDs []string, currency string) (map[string]float64, error)

	// OHLC retrieves candle data for a coin over the given number of days
	OHLC(ctx context.Context, coinID string, days int, currency string) ([]models.Candle, error)

	// Global retrieves the global market overview
	Global(ctx context.Context) (*models.MarketOverview, error)

	// Trending retrieves trending search coins
	Trending(ctx context.Context) ([]*models.TrendingCoin, error)
}

// BinanceClient provides access to the exchange REST API
type BinanceClient interface {
	// TickerPrice retrieves the current price for an exchange pair
	TickerPrice(ctx context.Context, symbol string) (float64, error)

	// Ticker24h retrieves 24h rolling statistics for an exchange pair
	Ticker24h(ctx context.Context, symbol string) (*models.Ticker24h, error)

	// Klines retrieves candle data for an exchange pair
	Klines(ctx context.Context, symbol, interval string, limit int) ([]models.Candle, error)
}

// TickStream delivers streaming exchange price updates.
type TickStream interface {
	// Subscribe starts streaming ticks for the given pairs until ctx is
	// cancelled. The callback runs on the stream's reader goroutine.
	Subscribe(ctx context.Context, symbols []string, fn func(models.PriceTick)) error
}
