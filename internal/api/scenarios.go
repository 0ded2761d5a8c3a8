package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/homedeck/homedeck/internal/hubclient"
	"github.com/homedeck/homedeck/internal/scenario"
)

// scenarioRequest is the body for creating or updating a scenario.
type scenarioRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=64"`
	Description string   `json:"description" validate:"max=256"`
	Actions     []string `json:"actions"`
	Enabled     bool     `json:"enabled"`
}

// deleteScenarioRequest carries the confirmation flag for deletion.
type deleteScenarioRequest struct {
	Confirmed bool `json:"confirmed"`
}

// handleListScenarios returns all scenarios.
func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.scenarios.List(r.Context())
	if err != nil {
		s.logger.Error("listing scenarios", "error", err)
		writeInternalError(w, "could not list scenarios")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"scenarios": scenarios})
}

// handleCreateScenario persists a new scenario.
func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeValidationError(w, "name is required")
		return
	}

	sc := &scenario.Scenario{
		Name:        req.Name,
		Description: req.Description,
		Actions:     req.Actions,
		Enabled:     req.Enabled,
	}
	if err := s.scenarios.Create(r.Context(), sc); err != nil {
		if errors.Is(err, scenario.ErrScenarioExists) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "a scenario with this ID already exists")
			return
		}
		s.logger.Error("creating scenario", "error", err)
		writeInternalError(w, "could not create scenario")
		return
	}
	writeJSON(w, http.StatusCreated, sc)
}

// handleGetScenario returns a single scenario.
func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scenarios.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, scenario.ErrScenarioNotFound) {
			writeNotFound(w, "scenario not found")
			return
		}
		s.logger.Error("getting scenario", "error", err)
		writeInternalError(w, "could not load scenario")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// handleUpdateScenario replaces a scenario's editable fields.
func (s *Server) handleUpdateScenario(w http.ResponseWriter, r *http.Request) {
	var req scenarioRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeValidationError(w, "name is required")
		return
	}

	sc := &scenario.Scenario{
		ID:          chi.URLParam(r, "id"),
		Name:        req.Name,
		Description: req.Description,
		Actions:     req.Actions,
		Enabled:     req.Enabled,
	}
	if err := s.scenarios.Update(r.Context(), sc); err != nil {
		if errors.Is(err, scenario.ErrScenarioNotFound) {
			writeNotFound(w, "scenario not found")
			return
		}
		s.logger.Error("updating scenario", "error", err)
		writeInternalError(w, "could not update scenario")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}

// handleDeleteScenario removes a scenario. Deletion requires an explicit
// confirmation flag; without it nothing changes.
func (s *Server) handleDeleteScenario(w http.ResponseWriter, r *http.Request) {
	confirmed, _ := strconv.ParseBool(r.URL.Query().Get("confirmed"))
	if !confirmed && r.Body != nil {
		var req deleteScenarioRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			confirmed = req.Confirmed
		}
	}

	id := chi.URLParam(r, "id")
	if err := s.scenarios.Delete(r.Context(), id, confirmed); err != nil {
		if errors.Is(err, scenario.ErrScenarioNotFound) {
			writeNotFound(w, "scenario not found")
			return
		}
		s.logger.Error("deleting scenario", "error", err)
		writeInternalError(w, "could not delete scenario")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "deleted": confirmed})
}

// handleExecuteScenario runs a scenario on the current hub.
func (s *Server) handleExecuteScenario(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.scenarios.Execute(r.Context(), id); err != nil {
		var apiErr *hubclient.APIError
		if errors.As(err, &apiErr) {
			writeError(w, http.StatusBadGateway, ErrCodeHubGone, apiErr.Message)
			return
		}
		if hubclient.IsConnError(err) {
			writeError(w, http.StatusBadGateway, ErrCodeHubGone, "hub unreachable")
			return
		}
		s.logger.Error("executing scenario", "error", err)
		writeInternalError(w, "could not execute scenario")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"id": id, "executed": true})
}

// handleToggleScenario flips a scenario's enabled flag.
func (s *Server) handleToggleScenario(w http.ResponseWriter, r *http.Request) {
	sc, err := s.scenarios.Toggle(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		if errors.Is(err, scenario.ErrScenarioNotFound) {
			writeNotFound(w, "scenario not found")
			return
		}
		s.logger.Error("toggling scenario", "error", err)
		writeInternalError(w, "could not toggle scenario")
		return
	}
	writeJSON(w, http.StatusOK, sc)
}
