package server

import (
	"net/http"
	"strings"

	"github.com/coindeck/coindeck/internal/models"
)

// handleAlerts handles GET and POST /api/alerts.
func (s *Server) handleAlerts(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		alerts, err := s.app.AlertService.ListAlerts(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, alerts)

	case http.MethodPost:
		var alert models.PriceAlert
		if !DecodeJSON(w, r, &alert) {
			return
		}
		created, err := s.app.AlertService.CreateAlert(r.Context(), alert)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// routeAlerts dispatches /api/alerts/{id} and /api/alerts/{id}/reset.
func (s *Server) routeAlerts(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/alerts/")
	if strings.HasSuffix(rest, "/reset") {
		s.handleAlertReset(w, r)
		return
	}
	s.handleAlert(w, r)
}

type alertUpdateRequest struct {
	Enabled     *bool    `json:"enabled"`
	TargetPrice *float64 `json:"target_price"`
}

// handleAlert handles GET, PATCH, DELETE /api/alerts/{id}.
func (s *Server) handleAlert(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/alerts/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "alert id is required")
		return
	}

	switch r.Method {
	case http.MethodGet:
		alert, err := s.app.AlertService.GetAlert(r.Context(), id)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, alert)

	case http.MethodPatch:
		var req alertUpdateRequest
		if !DecodeJSON(w, r, &req) {
			return
		}
		alert, err := s.app.AlertService.UpdateAlert(r.Context(), id, req.Enabled, req.TargetPrice)
		if err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, alert)

	case http.MethodDelete:
		if err := s.app.AlertService.DeleteAlert(r.Context(), id); err != nil {
			if isNotFound(err) {
				WriteError(w, http.StatusNotFound, err.Error())
				return
			}
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"deleted": id})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPatch, http.MethodDelete)
	}
}

// handleAlertReset handles POST /api/alerts/{id}/reset.
func (s *Server) handleAlertReset(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	id := PathParam(r, "/api/alerts/", "/reset")
	alert, err := s.app.AlertService.ResetAlert(r.Context(), id)
	if err != nil {
		if isNotFound(err) {
			WriteError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, alert)
}

// handleAlertsCheck handles POST /api/alerts/check, running one evaluation
// cycle on demand.
func (s *Server) handleAlertsCheck(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	triggered, err := s.app.AlertService.CheckAll(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"triggered": triggered,
		"count":     len(triggered),
	})
}
