package session

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	sessionService "github.com/studyforge/courserag/internal/service/session"
)

// Handler serves session lifecycle endpoints.
type Handler struct {
	sessions *sessionService.Service
}

// New creates the session handler.
func New(sessions *sessionService.Service) *Handler {
	return &Handler{sessions: sessions}
}

// RegisterRoutes mounts the session routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Delete("/sessions/{sessionID}", h.handleClearSession)
}

// handleClearSession empties a session's history so the client can
// start a fresh conversation under the same identifier. Clearing an
// unknown session succeeds without creating it.
func (h *Handler) handleClearSession(w http.ResponseWriter, r *http.Request) {
	h.sessions.ClearSession(chi.URLParam(r, "sessionID"))
	w.WriteHeader(http.StatusNoContent)
}
