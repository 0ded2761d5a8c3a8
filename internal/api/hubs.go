package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homedeck/homedeck/internal/hub"
)

// connectHubRequest is the body for POST /hubs.
type connectHubRequest struct {
	URL  string `json:"url" validate:"required,url"`
	Name string `json:"name" validate:"required,min=1,max=64"`
	Type string `json:"type" validate:"required,oneof=local cloud remote"`
}

// handleListHubs returns all registered hubs.
func (s *Server) handleListHubs(w http.ResponseWriter, r *http.Request) {
	hubs, err := s.hubs.List(r.Context())
	if err != nil {
		s.logger.Error("listing hubs", "error", err)
		writeInternalError(w, "could not list hubs")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"hubs": hubs})
}

// handleConnectHub probes and registers a new hub.
func (s *Server) handleConnectHub(w http.ResponseWriter, r *http.Request) {
	var req connectHubRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeValidationError(w, "url, name and type (local|cloud|remote) are required")
		return
	}

	h, err := s.hubs.Connect(r.Context(), req.URL, req.Name, hub.Type(req.Type))
	if err != nil {
		switch {
		case errors.Is(err, hub.ErrProbeFailed):
			writeError(w, http.StatusBadGateway, ErrCodeHubGone, "hub did not answer its health check")
		case errors.Is(err, hub.ErrInvalidURL), errors.Is(err, hub.ErrInvalidName), errors.Is(err, hub.ErrInvalidType):
			writeValidationError(w, err.Error())
		default:
			s.logger.Error("connecting hub", "error", err)
			writeInternalError(w, "could not register hub")
		}
		return
	}
	writeJSON(w, http.StatusCreated, h)
}

// handleCurrentHub returns the currently selected hub.
func (s *Server) handleCurrentHub(w http.ResponseWriter, _ *http.Request) {
	current := s.hubs.Current()
	if current == nil {
		writeNotFound(w, "no hub selected")
		return
	}
	writeJSON(w, http.StatusOK, current)
}

// handleGetHub returns a single hub.
func (s *Server) handleGetHub(w http.ResponseWriter, r *http.Request) {
	h, err := s.hubs.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, hub.ErrHubNotFound) {
			writeNotFound(w, "hub not found")
			return
		}
		s.logger.Error("getting hub", "error", err)
		writeInternalError(w, "could not load hub")
		return
	}
	writeJSON(w, http.StatusOK, h)
}

// handleSelectHub makes a hub current.
func (s *Server) handleSelectHub(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.hubs.SetCurrent(r.Context(), id); err != nil {
		if errors.Is(err, hub.ErrHubNotFound) {
			writeNotFound(w, "hub not found")
			return
		}
		s.logger.Error("selecting hub", "error", err)
		writeInternalError(w, "could not select hub")
		return
	}
	writeJSON(w, http.StatusOK, s.hubs.Current())
}

// handleRemoveHub deletes a hub.
func (s *Server) handleRemoveHub(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.hubs.Remove(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, hub.ErrLocalHubProtected):
			writeError(w, http.StatusConflict, ErrCodeConflict, "the local hub cannot be removed")
		case errors.Is(err, hub.ErrHubNotFound):
			writeNotFound(w, "hub not found")
		default:
			s.logger.Error("removing hub", "error", err)
			writeInternalError(w, "could not remove hub")
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"removed": id, "current": s.hubs.Current()})
}
