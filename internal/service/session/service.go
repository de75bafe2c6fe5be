package session

import (
	"fmt"
	"strings"
	"sync"
	"unicode"

	"github.com/studyforge/courserag/internal/model/chat"
)

// DefaultMaxHistory bounds retained exchanges when no limit is configured.
const DefaultMaxHistory = 5

// Service owns per-session conversation history. Session identifiers
// are minted from a monotonic counter and histories are truncated to
// the configured number of exchanges after every append.
type Service struct {
	maxHistory int

	mu       sync.RWMutex
	counter  int
	sessions map[string]*history
}

// history serializes mutations per session so unrelated sessions never
// contend on one lock.
type history struct {
	mu       sync.Mutex
	messages []chat.Message
}

// NewService bootstraps the in-memory session service. A non-positive
// maxHistory falls back to DefaultMaxHistory.
func NewService(maxHistory int) *Service {
	if maxHistory <= 0 {
		maxHistory = DefaultMaxHistory
	}
	return &Service{
		maxHistory: maxHistory,
		sessions:   make(map[string]*history),
	}
}

// MaxHistory reports the configured exchange cap.
func (s *Service) MaxHistory() int {
	return s.maxHistory
}

// CreateSession mints the next identifier ("session_1", "session_2",
// ...) and registers an empty history for it.
func (s *Service) CreateSession() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.counter++
	id := fmt.Sprintf("session_%d", s.counter)
	s.sessions[id] = &history{}
	return id
}

// AddMessage appends one turn to the session's history, creating the
// session silently when the identifier is unknown. The role is not
// validated. After appending, the history is truncated to the last
// 2*maxHistory messages, oldest dropped first.
func (s *Service) AddMessage(sessionID string, role chat.Role, content string) {
	h := s.getOrCreate(sessionID)

	h.mu.Lock()
	defer h.mu.Unlock()

	h.messages = append(h.messages, chat.Message{Role: role, Content: content})

	limit := 2 * s.maxHistory
	if len(h.messages) > limit {
		h.messages = h.messages[len(h.messages)-limit:]
	}
}

// AddExchange records one question/answer pair: the user turn followed
// by the assistant turn.
func (s *Service) AddExchange(sessionID, userText, assistantText string) {
	s.AddMessage(sessionID, chat.RoleUser, userText)
	s.AddMessage(sessionID, chat.RoleAssistant, assistantText)
}

// ConversationHistory renders the retained history as one line per
// message ("User: ..." / "Assistant: ..."), oldest first. The second
// return value is false when there is nothing to render: empty session
// identifier, unknown session, or a session with no messages. Callers
// must omit history from prompts in that case rather than pass an
// empty string.
func (s *Service) ConversationHistory(sessionID string) (string, bool) {
	if sessionID == "" {
		return "", false
	}

	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return "", false
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	if len(h.messages) == 0 {
		return "", false
	}

	lines := make([]string, 0, len(h.messages))
	for _, msg := range h.messages {
		lines = append(lines, roleLabel(msg.Role)+": "+msg.Content)
	}
	return strings.Join(lines, "\n"), true
}

// Messages returns a copy of the retained turns for a session.
func (s *Service) Messages(sessionID string) []chat.Message {
	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	copied := make([]chat.Message, len(h.messages))
	copy(copied, h.messages)
	return copied
}

// ClearSession empties an existing session's history. The identifier
// stays registered and usable. Unknown identifiers are a strict no-op:
// clearing never creates a session, unlike AddMessage.
func (s *Service) ClearSession(sessionID string) {
	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return
	}

	h.mu.Lock()
	h.messages = nil
	h.mu.Unlock()
}

func (s *Service) getOrCreate(sessionID string) *history {
	s.mu.RLock()
	h, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if ok {
		return h
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.sessions[sessionID]; ok {
		return h
	}
	h = &history{}
	s.sessions[sessionID] = h
	return h
}

// roleLabel renders the prompt-facing form of a role. Unrecognized
// roles are kept and capitalized since AddMessage never rejects them.
func roleLabel(role chat.Role) string {
	switch role {
	case chat.RoleUser:
		return "User"
	case chat.RoleAssistant:
		return "Assistant"
	}
	if role == "" {
		return ""
	}
	r := []rune(string(role))
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}
