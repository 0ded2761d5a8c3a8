package api

import (
	"encoding/json"
	"net/http"
)

// handleGetSettings returns all stored settings. Credential-class keys
// never appear here; they stay encrypted at rest.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	values, err := s.settings.All(r.Context())
	if err != nil {
		s.logger.Error("loading settings", "error", err)
		writeInternalError(w, "could not load settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"settings": values})
}

// handleSaveSettings upserts the submitted settings in one call.
func (s *Server) handleSaveSettings(w http.ResponseWriter, r *http.Request) {
	var values map[string]any
	if err := json.NewDecoder(r.Body).Decode(&values); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if len(values) == 0 {
		writeBadRequest(w, "no settings supplied")
		return
	}

	if err := s.settings.SetMany(r.Context(), values); err != nil {
		s.logger.Error("saving settings", "error", err)
		writeInternalError(w, "could not save settings")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"saved": len(values)})
}
