package server

import (
	"net/http"
	"time"
)

// registerRoutes sets up all REST API routes on the mux.
func (s *Server) registerRoutes(mux *http.ServeMux) {
	// System
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/version", s.handleVersion)
	mux.HandleFunc("/api/shutdown", s.handleShutdown)

	// Market data
	mux.HandleFunc("/api/market/coins", s.handleMarketCoins)
	mux.HandleFunc("/api/market/coins/", s.routeMarketCoins)
	mux.HandleFunc("/api/market/prices", s.handleMarketPrices)
	mux.HandleFunc("/api/market/overview", s.handleMarketOverview)
	mux.HandleFunc("/api/market/trending", s.handleMarketTrending)
	mux.HandleFunc("/api/market/ticker/", s.handleMarketTicker)

	// Portfolios
	mux.HandleFunc("/api/portfolios/current", s.handlePortfolioCurrent)
	mux.HandleFunc("/api/portfolios/", s.routePortfolios)
	mux.HandleFunc("/api/portfolios", s.handlePortfolios)

	// Watchlist
	mux.HandleFunc("/api/watchlist", s.handleWatchlist)
	mux.HandleFunc("/api/watchlist/items", s.handleWatchlistItems)
	mux.HandleFunc("/api/watchlist/items/", s.handleWatchlistItem)
	mux.HandleFunc("/api/watchlist/categories", s.handleWatchlistCategories)
	mux.HandleFunc("/api/watchlist/categories/", s.handleWatchlistCategory)
	mux.HandleFunc("/api/watchlist/refresh", s.handleWatchlistRefresh)
	mux.HandleFunc("/api/watchlist/export", s.handleWatchlistExport)
	mux.HandleFunc("/api/watchlist/import", s.handleWatchlistImport)

	// Alerts
	mux.HandleFunc("/api/alerts/check", s.handleAlertsCheck)
	mux.HandleFunc("/api/alerts/", s.routeAlerts)
	mux.HandleFunc("/api/alerts", s.handleAlerts)

	// Settings
	mux.HandleFunc("/api/settings", s.handleSettings)

	// Live updates
	mux.HandleFunc("/ws", s.app.Hub.HandleWS)
}

// handleShutdown handles POST /api/shutdown (dev mode only).
func (s *Server) handleShutdown(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	if s.app.Config.IsProduction() {
		WriteError(w, http.StatusForbidden, "Shutdown endpoint disabled in production")
		return
	}

	s.logger.Info().Msg("Shutdown requested via HTTP endpoint")

	w.WriteHeader(http.StatusOK)
	w.Write([]byte("Shutting down gracefully...\n"))

	if flusher, ok := w.(http.Flusher); ok {
		flusher.Flush()
	}

	if s.shutdownChan != nil {
		go func() {
			time.Sleep(100 * time.Millisecond)
			s.shutdownChan <- struct{}{}
		}()
	}
}
