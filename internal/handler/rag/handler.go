package rag

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	ragService "github.com/studyforge/courserag/internal/service/rag"
	sessionService "github.com/studyforge/courserag/internal/service/session"
	"github.com/studyforge/courserag/pkg/utils"
)

// Handler serves the query and course-analytics endpoints.
type Handler struct {
	ragSvc   *ragService.Service
	sessions *sessionService.Service
}

// New creates the RAG handler.
func New(ragSvc *ragService.Service, sessions *sessionService.Service) *Handler {
	return &Handler{ragSvc: ragSvc, sessions: sessions}
}

// RegisterRoutes mounts the RAG routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/query", h.handleQuery)
	r.Get("/courses", h.handleCourses)
	r.Get("/courses/{courseTitle}/outline", h.handleOutline)
}

// queryRequest uses a pointer for the query field so a missing key is
// distinguishable from an empty string; only the former is rejected.
type queryRequest struct {
	Query     *string `json:"query"`
	SessionID string  `json:"session_id"`
}

type queryResponse struct {
	Answer    string   `json:"answer"`
	Sources   []string `json:"sources"`
	SessionID string   `json:"session_id"`
}

func (h *Handler) handleQuery(w http.ResponseWriter, r *http.Request) {
	var payload queryRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}
	if payload.Query == nil {
		utils.RespondError(w, http.StatusUnprocessableEntity, "query is required")
		return
	}

	sessionID := payload.SessionID
	if sessionID == "" {
		sessionID = h.sessions.CreateSession()
	}

	answer, sources, err := h.ragSvc.Query(r.Context(), *payload.Query, sessionID)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sources == nil {
		sources = []string{}
	}

	utils.RespondJSON(w, http.StatusOK, queryResponse{
		Answer:    answer,
		Sources:   sources,
		SessionID: sessionID,
	})
}

func (h *Handler) handleCourses(w http.ResponseWriter, r *http.Request) {
	analytics, err := h.ragSvc.CourseAnalytics(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if analytics.CourseTitles == nil {
		analytics.CourseTitles = []string{}
	}

	utils.RespondJSON(w, http.StatusOK, analytics)
}

func (h *Handler) handleOutline(w http.ResponseWriter, r *http.Request) {
	title := chi.URLParam(r, "courseTitle")
	if unescaped, err := url.PathUnescape(title); err == nil {
		title = unescaped
	}

	outline, err := h.ragSvc.CourseOutline(r.Context(), title)
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]string{
		"course_title": title,
		"outline":      outline,
	})
}
