package server

import (
	"net/http"
	"strconv"
	"strings"
)

// handleMarketCoins handles GET /api/market/coins.
func (s *Server) handleMarketCoins(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	limit := 100
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 || n > 250 {
			WriteError(w, http.StatusBadRequest, "limit must be between 1 and 250")
			return
		}
		limit = n
	}

	coins, err := s.app.MarketService.ListCoins(r.Context(), limit)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, coins)
}

// routeMarketCoins dispatches /api/market/coins/{id} and
// /api/market/coins/{id}/ohlc.
func (s *Server) routeMarketCoins(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(r.URL.Path, "/ohlc") {
		s.handleMarketOHLC(w, r)
		return
	}
	s.handleMarketCoin(w, r)
}

// handleMarketCoin handles GET /api/market/coins/{id}.
func (s *Server) handleMarketCoin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	coinID := PathParam(r, "/api/market/coins/", "")
	if coinID == "" {
		WriteError(w, http.StatusBadRequest, "coin id is required")
		return
	}

	coin, err := s.app.MarketService.GetCoin(r.Context(), coinID)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, coin)
}

// handleMarketOHLC handles GET /api/market/coins/{id}/ohlc?days=N.
func (s *Server) handleMarketOHLC(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	coinID := PathParam(r, "/api/market/coins/", "/ohlc")
	if coinID == "" {
		WriteError(w, http.StatusBadRequest, "coin id is required")
		return
	}

	days := 1
	if v := r.URL.Query().Get("days"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			WriteError(w, http.StatusBadRequest, "days must be a positive integer")
			return
		}
		days = n
	}

	candles, err := s.app.CoinGeckoClient.OHLC(r.Context(), coinID, days, "usd")
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, candles)
}

// handleMarketPrices handles GET /api/market/prices?ids=a,b,c.
func (s *Server) handleMarketPrices(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	ids := r.URL.Query().Get("ids")
	if ids == "" {
		WriteError(w, http.StatusBadRequest, "ids query parameter is required")
		return
	}

	coinIDs := strings.Split(ids, ",")
	prices := s.app.MarketService.GetPrices(coinIDs)
	WriteJSON(w, http.StatusOK, prices)
}

// handleMarketOverview handles GET /api/market/overview.
func (s *Server) handleMarketOverview(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	overview, err := s.app.MarketService.Overview(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, overview)
}

// handleMarketTrending handles GET /api/market/trending.
func (s *Server) handleMarketTrending(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	trending, err := s.app.MarketService.Trending(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, trending)
}

// handleMarketTicker handles GET /api/market/ticker/{symbol} with 24h
// exchange statistics.
func (s *Server) handleMarketTicker(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	symbol := PathParam(r, "/api/market/ticker/", "")
	if symbol == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required")
		return
	}

	ticker, err := s.app.BinanceClient.Ticker24h(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, ticker)
}
