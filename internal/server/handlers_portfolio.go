package server

import (
	"net/http"
	"strings"

	"github.com/coindeck/coindeck/internal/models"
)

type portfolioRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// handlePortfolios handles GET and POST /api/portfolios.
func (s *Server) handlePortfolios(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		portfolios, err := s.app.PortfolioService.ListPortfolios(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, portfolios)

	case http.MethodPost:
		var req portfolioRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.PortfolioService.CreatePortfolio(r.Context(), req.Name, req.Description)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, p)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePortfolioCurrent handles GET and PUT /api/portfolios/current.
func (s *Server) handlePortfolioCurrent(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		p, err := s.app.PortfolioService.CurrentPortfolio(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if p == nil {
			WriteError(w, http.StatusNotFound, "no current portfolio")
			return
		}
		WriteJSON(w, http.StatusOK, p)

	case http.MethodPut:
		var req struct {
			ID string `json:"id"`
		}
		if !DecodeJSON(w, r, &req) {
			return
		}
		if err := s.app.PortfolioService.SetCurrentPortfolio(r.Context(), req.ID); err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"current": req.ID})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}

// routePortfolios dispatches /api/portfolios/{id} and its subresources.
func (s *Server) routePortfolios(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/portfolios/")
	switch {
	case strings.HasSuffix(rest, "/transactions"):
		s.handlePortfolioTransactions(w, r)
	case strings.HasSuffix(rest, "/summary"):
		s.handlePortfolioSummary(w, r)
	case strings.HasSuffix(rest, "/chart"):
		s.handlePortfolioChart(w, r)
	default:
		s.handlePortfolio(w, r)
	}
}

// handlePortfolio handles GET, PUT, DELETE /api/portfolios/{id}.
func (s *Server) handlePortfolio(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/portfolios/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "portfolio id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		p, err := s.app.PortfolioService.GetPortfolio(r.Context(), id)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, p)

	case http.MethodPut:
		var req portfolioRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		p, err := s.app.PortfolioService.UpdatePortfolio(r.Context(), id, req.Name, req.Description)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, p)

	case http.MethodDelete:
		if err := s.app.PortfolioService.DeletePortfolio(r.Context(), id); err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut, http.MethodDelete)
	}
}

// handlePortfolioTransactions handles GET and POST
// /api/portfolios/{id}/transactions.
func (s *Server) handlePortfolioTransactions(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/portfolios/", "/transactions")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "portfolio id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		txs, err := s.app.PortfolioService.ListTransactions(r.Context(), id)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, txs)

	case http.MethodPost:
		var tx models.Transaction
		if !DecodeJSON(w, r, &tx) {
			return
		}
		tx.PortfolioID = id

		p, err := s.app.PortfolioService.AddTransaction(r.Context(), tx)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, p)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handlePortfolioSummary handles GET /api/portfolios/{id}/summary.
func (s *Server) handlePortfolioSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/portfolios/", "/summary")
	snapshot, err := s.app.PortfolioService.Snapshot(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if snapshot == nil {
		// An empty portfolio has no analytics; not an error.
		WriteJSON(w, http.StatusOK, map[string]interface{}{"portfolio_id": id, "empty": true})
		return
	}
	WriteJSON(w, http.StatusOK, snapshot)
}

// handlePortfolioChart handles GET /api/portfolios/{id}/chart with PNG output.
func (s *Server) handlePortfolioChart(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}

	id := PathParam(r, "/api/portfolios/", "/chart")
	png, err := s.app.PortfolioService.RenderAllocationChart(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}
