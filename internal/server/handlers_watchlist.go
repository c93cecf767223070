package server

import (
	"io"
	"net/http"

	"github.com/coindeck/coindeck/internal/models"
)

// handleWatchlist handles GET and DELETE /api/watchlist.
func (s *Server) handleWatchlist(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		wl, err := s.app.WatchlistService.GetWatchlist(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	case http.MethodDelete:
		wl, err := s.app.WatchlistService.Clear(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handleWatchlistItems handles POST /api/watchlist/items.
func (s *Server) handleWatchlistItems(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var item models.WatchlistItem
	if !DecodeJSON(w, r, &item) {
		return
	}

	wl, err := s.app.WatchlistService.AddItem(r.Context(), item)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, wl)
}

// handleWatchlistItem handles PUT and DELETE /api/watchlist/items/{coinID}.
func (s *Server) handleWatchlistItem(w http.ResponseWriter, r *http.Request) {
	coinID := PathParam(r, "/api/watchlist/items/", "")
	if coinID == "" {
		WriteError(w, http.StatusBadRequest, "coin id is required")
		return
	}

	switch r.Method {
	case http.MethodPut:
		var update models.WatchlistItem
		if !DecodeJSON(w, r, &update) {
			return
		}
		wl, err := s.app.WatchlistService.UpdateItem(r.Context(), coinID, update)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	case http.MethodDelete:
		wl, err := s.app.WatchlistService.RemoveItem(r.Context(), coinID)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, wl)

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodDelete)
	}
}

// handleWatchlistCategories handles POST /api/watchlist/categories.
func (s *Server) handleWatchlistCategories(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Category string `json:"category"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	wl, err := s.app.WatchlistService.AddCategory(r.Context(), req.Category)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusCreated, wl)
}

// handleWatchlistCategory handles DELETE /api/watchlist/categories/{name}.
func (s *Server) handleWatchlistCategory(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}

	category := PathParam(r, "/api/watchlist/categories/", "")
	if category == "" {
		WriteError(w, http.StatusBadRequest, "category is required")
		return
	}

	wl, err := s.app.WatchlistService.RemoveCategory(r.Context(), category)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, wl)
}

// handleWatchlistRefresh handles POST /api/watchlist/refresh.
func (s *Server) handleWatchlistRefresh(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	wl, err := s.app.WatchlistService.RefreshPrices(r.Context())
	if err != nil {
		WriteError(w, http.StatusBadGateway, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, wl)
}

// handleWatchlistExport handles GET /api/watchlist/export.
func (s *Server) handleWatchlistExport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	data, err := s.app.WatchlistService.Export(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="watchlist-export.json"`)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// handleWatchlistImport handles POST /api/watchlist/import.
func (s *Server) handleWatchlistImport(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		WriteError(w, http.StatusBadRequest, "failed to read request body")
		return
	}

	if err := s.app.WatchlistService.Import(r.Context(), data); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	wl, err := s.app.WatchlistService.GetWatchlist(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, wl)
}
