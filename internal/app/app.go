// Package app wires configuration, storage, clients, and services together.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/coindeck/coindeck/internal/clients/binance"
	"github.com/coindeck/coindeck/internal/clients/coingecko"
	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/services/alerts"
	"github.com/coindeck/coindeck/internal/services/market"
	"github.com/coindeck/coindeck/internal/services/notify"
	"github.com/coindeck/coindeck/internal/services/portfolio"
	"github.com/coindeck/coindeck/internal/services/settings"
	"github.com/coindeck/coindeck/internal/services/watchlist"
	"github.com/coindeck/coindeck/internal/storage"
)

// App holds all initialized services and clients. It is the shared core
// behind cmd/coindeck-server.
type App struct {
	Config  *common.Config
	Logger  *common.Logger
	Storage interfaces.StorageManager

	CoinGeckoClient interfaces.CoinGeckoClient
	BinanceClient   interfaces.BinanceClient
	TickStream      interfaces.TickStream

	MarketService    interfaces.MarketService
	PortfolioService interfaces.PortfolioService
	WatchlistService interfaces.WatchlistService
	AlertService     interfaces.AlertService
	SettingsService  interfaces.SettingsService
	Hub              *notify.Hub

	StartupTime time.Time

	backgroundCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients, and services.
// configPath may be empty, in which case the default resolution is used.
func NewApp(configPath string) (*App, error) {
	binDir := getBinaryDir()

	if configPath == "" {
		configPath = os.Getenv("COINDECK_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "coindeck.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/coindeck.toml" // fallback for development
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}

	logger := common.NewLogger(config.Logging.Level)

	storageManager, err := storage.NewManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	geckoClient := coingecko.NewClient(config.Clients.CoinGecko.APIKey,
		coingecko.WithBaseURL(config.Clients.CoinGecko.BaseURL),
		coingecko.WithLogger(logger),
		coingecko.WithRateLimit(config.Clients.CoinGecko.RateLimit),
		coingecko.WithTimeout(config.Clients.CoinGecko.GetTimeout()),
	)

	binanceClient := binance.NewClient(
		binance.WithBaseURL(config.Clients.Binance.BaseURL),
		binance.WithLogger(logger),
		binance.WithRateLimit(config.Clients.Binance.RateLimit),
		binance.WithTimeout(config.Clients.Binance.GetTimeout()),
	)

	tickStream := binance.NewStream(
		binance.WithStreamURL(config.Clients.Binance.StreamURL),
		binance.WithStreamLogger(logger),
	)

	hub := notify.NewHub(logger)
	notifier := notify.Fanout{notify.NewLogNotifier(logger), hub}

	marketService := market.NewService(storageManager, geckoClient, "usd", logger)
	alertService := alerts.NewService(storageManager, marketService, notifier, config.Alerts.RearmOnEnable, logger)
	portfolioService := portfolio.NewService(storageManager, marketService, logger)
	watchlistService := watchlist.NewService(storageManager, marketService, alertService, logger)
	settingsService := settings.NewService(storageManager, logger)

	logger.Info().
		Str("version", common.GetVersion()).
		Str("environment", config.Environment).
		Msg("Coindeck initialized")

	return &App{
		Config:           config,
		Logger:           logger,
		Storage:          storageManager,
		CoinGeckoClient:  geckoClient,
		BinanceClient:    binanceClient,
		TickStream:       tickStream,
		MarketService:    marketService,
		PortfolioService: portfolioService,
		WatchlistService: watchlistService,
		AlertService:     alertService,
		SettingsService:  settingsService,
		Hub:              hub,
		StartupTime:      time.Now(),
	}, nil
}

// StartBackground launches the refresh schedulers and the exchange tick
// stream. Safe to call once.
func (a *App) StartBackground() {
	ctx, cancel := context.WithCancel(context.Background())
	a.backgroundCancel = cancel

	go startPriceScheduler(ctx, a.MarketService, a.WatchlistService, a.AlertService, a.Hub, a.Logger, a.Config.Refresh.GetPriceInterval(), a.Config.Refresh.TopCoins)
	go startAlertScheduler(ctx, a.AlertService, a.Logger, a.Config.Refresh.GetAlertInterval())
	go startTickStream(ctx, a.TickStream, a.MarketService, a.Storage, a.Logger)

	a.Logger.Info().
		Dur("price_interval", a.Config.Refresh.GetPriceInterval()).
		Dur("alert_interval", a.Config.Refresh.GetAlertInterval()).
		Msg("Background refresh started")
}

// Shutdown stops background work and closes storage.
func (a *App) Shutdown() error {
	if a.backgroundCancel != nil {
		a.backgroundCancel()
	}
	if a.Hub != nil {
		a.Hub.Close()
	}
	if a.Storage != nil {
		if err := a.Storage.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}
	a.Logger.Info().Msg("Coindeck shut down")
	return nil
}
