package stream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"

	"github.com/cloudwego/eino/schema"

	aiService "github.com/studyforge/courserag/internal/service/ai"
	sessionService "github.com/studyforge/courserag/internal/service/session"
	"github.com/studyforge/courserag/internal/service/tools"
	"github.com/studyforge/courserag/pkg/utils"
)

// Handler streams answers over Server-Sent Events.
type Handler struct {
	aiSvc    *aiService.Service
	sessions *sessionService.Service
	tools    *tools.Manager
}

// New creates a stream handler.
func New(aiSvc *aiService.Service, sessions *sessionService.Service, toolManager *tools.Manager) *Handler {
	return &Handler{aiSvc: aiSvc, sessions: sessions, tools: toolManager}
}

// StreamResponse is one SSE frame.
type StreamResponse struct {
	Event     string   `json:"event"`
	Content   string   `json:"content,omitempty"`
	SessionID string   `json:"session_id,omitempty"`
	Sources   []string `json:"sources,omitempty"`
	Finished  bool     `json:"finished,omitempty"`
	Error     string   `json:"error,omitempty"`
}

// HandleStreamRequest retrieves context, streams the generated answer,
// and records the exchange on completion when a session id is present.
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID, query string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	history, _ := h.sessions.ConversationHistory(sessionID)

	searchContext, err := h.tools.Execute(ctx, "search_course_content", map[string]any{"query": query})
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("retrieval failed: %v", err))
		return err
	}

	h.sendSSE(w, flusher, StreamResponse{Event: "start", SessionID: sessionID})

	answer, err := h.dispatchAIResponse(ctx, w, flusher, sessionID, query, history, searchContext)
	if err != nil {
		h.sendSSEError(w, flusher, fmt.Sprintf("AI generation failed: %v", err))
		return err
	}

	sources := h.tools.LastSources()
	h.tools.ResetSources()

	if sessionID != "" {
		h.sessions.AddExchange(sessionID, query, answer)
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Sources:   sources,
		Finished:  true,
	})

	log.Printf("[stream] completed response for session=%s", sessionID)
	return nil
}

// dispatchAIResponse streams when streaming is configured, otherwise
// sends the full answer as a single message frame.
func (h *Handler) dispatchAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID, query, history, searchContext string) (string, error) {
	if h.aiSvc.StreamingEnabled() {
		return h.streamAIResponse(ctx, w, flusher, sessionID, query, history, searchContext)
	}

	answer, err := h.aiSvc.GenerateResponse(ctx, query, history, searchContext)
	if err != nil {
		return "", err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   answer,
	})
	return answer, nil
}

func (h *Handler) streamAIResponse(ctx context.Context, w http.ResponseWriter, flusher http.Flusher, sessionID, query, history, searchContext string) (string, error) {
	stream, err := h.aiSvc.StreamResponse(ctx, query, history, searchContext)
	if err != nil {
		return "", err
	}
	defer stream.Close()

	chunks := make([]*schema.Message, 0, 8)

	for {
		chunk, recvErr := stream.Recv()
		if errors.Is(recvErr, io.EOF) {
			break
		}
		if recvErr != nil {
			return "", recvErr
		}
		if chunk == nil {
			continue
		}

		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			h.sendSSE(w, flusher, StreamResponse{
				Event:     "delta",
				SessionID: sessionID,
				Content:   chunk.Content,
			})
		}
	}

	response, err := schema.ConcatMessages(chunks)
	if err != nil {
		return "", err
	}

	h.sendSSE(w, flusher, StreamResponse{
		Event:     "message",
		SessionID: sessionID,
		Content:   response.Content,
	})
	return response.Content, nil
}

// sendSSE writes one Server-Sent Event frame.
func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEChunk(w, flusher, response)
}

func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, message string) {
	h.sendSSE(w, flusher, StreamResponse{Event: "error", Error: message, Finished: true})
}
