// Package session holds the per-process conversation identity: who is
// talking to whom, the decision model's priming, and the bounded
// in-memory chat history shared by the responders. A Session is
// created once at startup and read by every turn; only the history has
// internal mutation, guarded by its own lock.
package session

import (
	"fmt"
	"sync"

	"github.com/Arya182-ui/supriya/internal/llm"
)

// DefaultHistoryLimit bounds the in-memory chat history. Older turns
// fall off; nothing is persisted.
const DefaultHistoryLimit = 40

// Session identifies the conversation participants.
type Session struct {
	// Username is the person being assisted.
	Username string
	// AssistantName is the assistant's spoken name.
	AssistantName string

	history *History
}

// Option configures a Session.
type Option func(*Session)

// WithHistoryLimit overrides the history bound.
func WithHistoryLimit(limit int) Option {
	return func(s *Session) {
		if limit > 0 {
			s.history = NewHistory(limit)
		}
	}
}

// New creates a Session with an empty history.
func New(username, assistantName string, opts ...Option) *Session {
	if username == "" {
		username = "Arya"
	}
	if assistantName == "" {
		assistantName = "Supriya"
	}
	s := &Session{
		Username:      username,
		AssistantName: assistantName,
		history:       NewHistory(DefaultHistoryLimit),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// History returns the session's shared chat history.
func (s *Session) History() *History {
	return s.history
}

// ChatSystemPrompt is the system prompt for the conversational
// responder.
func (s *Session) ChatSystemPrompt() string {
	return fmt.Sprintf(`Hello, I am %s. You are a very accurate and advanced AI chatbot named %s, which also has real-time up-to-date information from the internet.
*** Do not talk too much; just answer the question concisely. ***
*** Reply in only English, even if the question is in another language. ***
*** Do not provide notes in the output or mention your training data. ***`, s.Username, s.AssistantName)
}

// SearchSystemPrompt is the system prompt for the live-search
// responder, which answers from provided search results.
func (s *Session) SearchSystemPrompt() string {
	return fmt.Sprintf(`Hello, I am %s. You are a very accurate and advanced AI chatbot named %s which has real-time up-to-date information from the internet.
*** Provide answers in a professional way, make sure to add full stops, commas, question marks, and use proper grammar. ***
*** Just answer the question from the provided data in a professional way. ***`, s.Username, s.AssistantName)
}

// History is a bounded, thread-safe chat transcript.
type History struct {
	mu    sync.RWMutex
	limit int
	msgs  []llm.Message
}

// NewHistory creates a History retaining at most limit messages.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Append records one message, evicting the oldest beyond the limit.
func (h *History) Append(role, content string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.msgs = append(h.msgs, llm.Message{Role: role, Content: content})
	if len(h.msgs) > h.limit {
		h.msgs = h.msgs[len(h.msgs)-h.limit:]
	}
}

// Messages returns a copy of the transcript, oldest first.
func (h *History) Messages() []llm.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]llm.Message, len(h.msgs))
	copy(out, h.msgs)
	return out
}

// Len returns the number of retained messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.msgs)
}
