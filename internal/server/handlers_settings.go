package server

import (
	"net/http"

	"github.com/coindeck/coindeck/internal/models"
)

// handleSettings handles GET and PUT /api/settings.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := s.app.SettingsService.Get(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, settings)

	case http.MethodPut:
		var settings models.Settings
		if !DecodeJSON(w, r, &settings) {
			return
		}
		updated, err := s.app.SettingsService.Update(r.Context(), settings)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, updated)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPut)
	}
}
