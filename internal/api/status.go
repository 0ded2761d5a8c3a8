package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// handleStatus returns the latest poller snapshot.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.poller.Status())
}

// handleListNotifications returns the live notifications, oldest first.
func (s *Server) handleListNotifications(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"notifications": s.notifier.List()})
}

// handleDismissNotification removes a single notification. Dismissing
// an already-expired ID succeeds quietly.
func (s *Server) handleDismissNotification(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.notifier.Dismiss(id)
	writeJSON(w, http.StatusOK, map[string]any{"dismissed": id})
}

// handleClearNotifications removes all notifications.
func (s *Server) handleClearNotifications(w http.ResponseWriter, _ *http.Request) {
	s.notifier.Clear()
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}

// handleClearCache empties the offline cache's active generation.
func (s *Server) handleClearCache(w http.ResponseWriter, _ *http.Request) {
	if s.offline != nil {
		s.offline.Clear()
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": true})
}
