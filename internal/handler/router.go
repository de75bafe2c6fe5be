package handler

import (
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	ragHandler "github.com/studyforge/courserag/internal/handler/rag"
	sessionHandler "github.com/studyforge/courserag/internal/handler/session"
	"github.com/studyforge/courserag/internal/handler/stream"
	middlewarePkg "github.com/studyforge/courserag/internal/middleware"
	aiService "github.com/studyforge/courserag/internal/service/ai"
	ragService "github.com/studyforge/courserag/internal/service/rag"
	sessionService "github.com/studyforge/courserag/internal/service/session"
	"github.com/studyforge/courserag/internal/service/tools"
	"github.com/studyforge/courserag/pkg/utils"
)

// NewRouter wires HTTP routes to core services. aiSvc may be nil when
// the AI layer is not configured; streaming is then unavailable.
func NewRouter(ragSvc *ragService.Service, sessions *sessionService.Service, aiSvc *aiService.Service, toolManager *tools.Manager) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		utils.RespondJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "Course RAG API is running",
		})
	})

	var streamHandler *stream.Handler
	if aiSvc != nil {
		streamHandler = stream.New(aiSvc, sessions, toolManager)
	}

	r.Route("/api", func(api chi.Router) {
		ragHandler.New(ragSvc, sessions).RegisterRoutes(api)
		sessionHandler.New(sessions).RegisterRoutes(api)

		api.Get("/stream", func(w http.ResponseWriter, r *http.Request) {
			if streamHandler == nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "ai streaming unavailable")
				return
			}

			query := r.URL.Query().Get("query")
			if query == "" {
				utils.RespondError(w, http.StatusBadRequest, "query parameter is required")
				return
			}
			sessionID := r.URL.Query().Get("session_id")
			if sessionID == "" {
				sessionID = sessions.CreateSession()
			}

			if err := streamHandler.HandleStreamRequest(r.Context(), w, sessionID, query); err != nil {
				log.Printf("[stream] error handling request: %v", err)
			}
		})
	})

	return r
}
