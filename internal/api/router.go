package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// buildRouter creates the HTTP router with all routes and middleware.
func (s *Server) buildRouter() http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(s.requestIDMiddleware)
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(s.corsMiddleware)
	r.Use(s.bodySizeLimitMiddleware)
	r.Use(s.rateLimitMiddleware)

	// API v1 routes
	r.Route("/api/v1", func(r chi.Router) {
		// Health check and login (no auth required)
		r.Get("/health", s.handleHealth)
		r.Post("/auth/login", s.handleLogin)

		// Protected routes
		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			// Hub endpoints
			r.Route("/hubs", func(r chi.Router) {
				r.Get("/", s.handleListHubs)
				r.Post("/", s.handleConnectHub)
				r.Get("/current", s.handleCurrentHub)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetHub)
					r.Delete("/", s.handleRemoveHub)
					r.Post("/select", s.handleSelectHub)
				})
			})

			// Device endpoints
			r.Route("/devices", func(r chi.Router) {
				r.Get("/", s.handleListDevices)
				r.Post("/refresh", s.handleRefreshDevices)
				r.Post("/scan", s.handleScanDevices)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetDevice)
					r.Post("/action", s.handleDeviceAction)
					r.Post("/color", s.handleDeviceColor)
					r.Post("/brightness", s.handleDeviceBrightness)
					r.Post("/volume", s.handleDeviceVolume)
				})
			})

			// Scenario endpoints
			r.Route("/scenarios", func(r chi.Router) {
				r.Get("/", s.handleListScenarios)
				r.Post("/", s.handleCreateScenario)

				r.Route("/{id}", func(r chi.Router) {
					r.Get("/", s.handleGetScenario)
					r.Put("/", s.handleUpdateScenario)
					r.Delete("/", s.handleDeleteScenario)
					r.Post("/execute", s.handleExecuteScenario)
					r.Post("/toggle", s.handleToggleScenario)
				})
			})

			// Status and notifications
			r.Get("/status", s.handleStatus)
			r.Route("/notifications", func(r chi.Router) {
				r.Get("/", s.handleListNotifications)
				r.Delete("/", s.handleClearNotifications)
				r.Delete("/{id}", s.handleDismissNotification)
			})

			// Settings
			r.Route("/settings", func(r chi.Router) {
				r.Get("/", s.handleGetSettings)
				r.Post("/", s.handleSaveSettings)
			})

			// Offline cache maintenance
			r.Delete("/cache", s.handleClearCache)

			// WebSocket push of status + notification events
			r.Get("/ws", s.handleWebSocket)
		})
	})

	// Everything else is the hub's own surface, proxied through the
	// offline cache layer: voice, wifi, spotify, chat, and the
	// dashboard's static assets.
	if s.offline != nil {
		r.NotFound(s.offline.ServeHTTP)
	}

	return r
}

// handleHealth returns the gateway health status.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"version": s.version,
	})
}
