package app

import (
	"context"
	"strings"
	"time"

	"github.com/coindeck/coindeck/internal/common"
	"github.com/coindeck/coindeck/internal/interfaces"
	"github.com/coindeck/coindeck/internal/services/notify"
)

// startPriceScheduler refreshes the top-coins price map and watchlist prices
// on a fixed interval, pushing updates to connected clients. An alert check
// is chained after every completed refresh so triggers fire on fresh prices.
func startPriceScheduler(ctx context.Context, marketService interfaces.MarketService, watchlistService interfaces.WatchlistService, alertService interfaces.AlertService, hub *notify.Hub, logger *common.Logger, interval time.Duration, topCoins int) {
	// One refresh on startup so the first requests have data.
	refreshPrices(ctx, marketService, watchlistService, alertService, hub, logger, topCoins)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Price scheduler: stopped")
			return
		case <-ticker.C:
			refreshPrices(ctx, marketService, watchlistService, alertService, hub, logger, topCoins)
		}
	}
}

func refreshPrices(ctx context.Context, marketService interfaces.MarketService, watchlistService interfaces.WatchlistService, alertService interfaces.AlertService, hub *notify.Hub, logger *common.Logger, topCoins int) {
	start := time.Now()

	if err := marketService.RefreshTop(ctx, topCoins); err != nil {
		logger.Warn().Err(err).Msg("Price refresh: top coins failed")
		return
	}

	w, err := watchlistService.RefreshPrices(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("Price refresh: watchlist update failed")
		return
	}

	if hub != nil && hub.ClientCount() > 0 {
		prices := make(map[string]float64, len(w.Items))
		for _, item := range w.Items {
			prices[item.CoinID] = item.CurrentPrice
		}
		hub.Broadcast("price_update", prices)
	}

	if triggered, err := alertService.CheckAll(ctx); err != nil {
		logger.Warn().Err(err).Msg("Price refresh: chained alert check failed")
	} else if len(triggered) > 0 {
		logger.Info().Int("triggered", len(triggered)).Msg("Price refresh: alerts triggered")
	}

	logger.Info().
		Int("watchlist", len(w.Items)).
		Dur("elapsed", time.Since(start)).
		Msg("Price refresh: complete")
}

// startAlertScheduler runs a full alert evaluation cycle on a fixed interval,
// independent of the chained check, so alerts still fire when the markets
// refresh is failing and ticks are the only price source. CheckAll fetches
// its own prices and notifies through the wired notifiers.
func startAlertScheduler(ctx context.Context, alertService interfaces.AlertService, logger *common.Logger, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info().Msg("Alert scheduler: stopped")
			return
		case <-ticker.C:
			start := time.Now()
			triggered, err := alertService.CheckAll(ctx)
			if err != nil {
				logger.Warn().Err(err).Msg("Alert check: cycle failed")
				continue
			}
			if len(triggered) > 0 {
				logger.Info().
					Int("triggered", len(triggered)).
					Dur("elapsed", time.Since(start)).
					Msg("Alert check: complete")
			}
		}
	}
}

// startTickStream feeds live exchange ticks into the price map. It waits for
// the first markets refresh so it knows which pairs to subscribe to.
func startTickStream(ctx context.Context, stream interfaces.TickStream, marketService interfaces.MarketService, storage interfaces.StorageManager, logger *common.Logger) {
	const streamPairs = 20 // only the top coins trade actively enough to stream

	for {
		if ctx.Err() != nil {
			return
		}

		coins, err := storage.MarketStore().ListCoins(ctx, streamPairs)
		if err != nil || len(coins) == 0 {
			select {
			case <-ctx.Done():
				return
			case <-time.After(10 * time.Second):
			}
			continue
		}

		symbols := make([]string, 0, len(coins))
		for _, c := range coins {
			symbols = append(symbols, strings.ToUpper(c.Symbol)+"USDT")
		}

		logger.Info().Int("pairs", len(symbols)).Msg("Tick stream: subscribing")

		// Subscribe reconnects internally and only returns on cancellation.
		if err := stream.Subscribe(ctx, symbols, marketService.ApplyTick); err != nil && ctx.Err() == nil {
			logger.Warn().Err(err).Msg("Tick stream: subscription ended, retrying")
		}
	}
}
