package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/homedeck/homedeck/internal/command"
	"github.com/homedeck/homedeck/internal/directory"
	"github.com/homedeck/homedeck/internal/hubclient"
)

// deviceView is a directory device plus its projected control.
type deviceView struct {
	hubclient.Device
	Control directory.ControlKind `json:"control"`
}

// actionRequest is the body for POST /devices/{id}/action.
type actionRequest struct {
	Command string         `json:"command" validate:"required,min=1,max=64"`
	Params  map[string]any `json:"params"`
}

// colorRequest is the body for POST /devices/{id}/color.
type colorRequest struct {
	Color string `json:"color" validate:"required"`
}

// levelRequest is the body for brightness and volume endpoints.
type levelRequest struct {
	Level int `json:"level" validate:"gte=0,lte=100"`
}

// handleListDevices returns the cached device list with counts.
func (s *Server) handleListDevices(w http.ResponseWriter, _ *http.Request) {
	devices := s.directory.Devices()
	views := make([]deviceView, 0, len(devices))
	for _, d := range devices {
		views = append(views, deviceView{Device: d, Control: directory.ControlFor(d)})
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"devices": views,
		"counts":  s.directory.Counts(),
	})
}

// handleGetDevice returns a single cached device.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	d, err := s.directory.Get(chi.URLParam(r, "id"))
	if err != nil {
		writeNotFound(w, "device not found")
		return
	}
	writeJSON(w, http.StatusOK, deviceView{Device: d, Control: directory.ControlFor(d)})
}

// handleRefreshDevices re-reads the device list from the hub.
func (s *Server) handleRefreshDevices(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.Refresh(r.Context()); err != nil {
		writeError(w, http.StatusBadGateway, ErrCodeHubGone, "hub unreachable; device list cleared")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": s.directory.Counts()})
}

// handleScanDevices triggers hub discovery and refreshes afterwards.
func (s *Server) handleScanDevices(w http.ResponseWriter, r *http.Request) {
	if err := s.directory.Scan(r.Context()); err != nil {
		if errors.Is(err, directory.ErrScanInProgress) {
			writeError(w, http.StatusConflict, ErrCodeConflict, "a scan is already in progress")
			return
		}
		writeError(w, http.StatusBadGateway, ErrCodeHubGone, "scan failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"counts": s.directory.Counts()})
}

// handleDeviceAction sends a raw command to a device.
func (s *Server) handleDeviceAction(w http.ResponseWriter, r *http.Request) {
	var req actionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeValidationError(w, "command is required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.dispatcher.Control(r.Context(), id, req.Command, req.Params); err != nil {
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dispatched": true})
}

// handleDeviceColor sets a device colour from a hex string.
func (s *Server) handleDeviceColor(w http.ResponseWriter, r *http.Request) {
	var req colorRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeValidationError(w, "color is required")
		return
	}

	id := chi.URLParam(r, "id")
	if err := s.dispatcher.SetColor(r.Context(), id, req.Color); err != nil {
		if errors.Is(err, command.ErrInvalidColor) {
			writeValidationError(w, "color must be #RRGGBB")
			return
		}
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dispatched": true})
}

// handleDeviceBrightness sets a brightness level.
func (s *Server) handleDeviceBrightness(w http.ResponseWriter, r *http.Request) {
	s.handleLevel(w, r, s.dispatcher.SetBrightness)
}

// handleDeviceVolume sets a volume level.
func (s *Server) handleDeviceVolume(w http.ResponseWriter, r *http.Request) {
	s.handleLevel(w, r, s.dispatcher.SetVolume)
}

func (s *Server) handleLevel(w http.ResponseWriter, r *http.Request, send func(ctx context.Context, id string, level int) error) {
	var req levelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := s.validate.Struct(&req); err != nil {
		writeValidationError(w, "level must be between 0 and 100")
		return
	}

	id := chi.URLParam(r, "id")
	if err := send(r.Context(), id, req.Level); err != nil {
		if errors.Is(err, command.ErrLevelOutOfRange) {
			writeValidationError(w, "level must be between 0 and 100")
			return
		}
		s.writeDispatchError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"dispatched": true})
}

// writeDispatchError maps hub client failures onto API responses.
func (s *Server) writeDispatchError(w http.ResponseWriter, err error) {
	var apiErr *hubclient.APIError
	if errors.As(err, &apiErr) {
		writeError(w, http.StatusBadGateway, ErrCodeHubGone, apiErr.Message)
		return
	}
	if hubclient.IsConnError(err) {
		writeError(w, http.StatusBadGateway, ErrCodeHubGone, "hub unreachable")
		return
	}
	s.logger.Error("dispatching command", "error", err)
	writeInternalError(w, "command failed")
}
