// Package session keeps per-conversation message history.
//
// History is append-only: a turn either appends its user/assistant pair or
// leaves the history untouched. Persistence is deliberately in-memory; the
// caller guarantees a single writer per session, while different sessions
// may run concurrently.
package session

import (
	"sync"

	"github.com/google/uuid"

	"github.com/frontdesk-ai/frontdesk/internal/llm"
)

// History is the ordered message sequence of one session.
type History struct {
	mu       sync.RWMutex
	messages []llm.Message
}

// NewHistory creates an empty history.
func NewHistory() *History {
	return &History{}
}

// Messages returns a copy of all messages.
func (h *History) Messages() []llm.Message {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]llm.Message, len(h.messages))
	copy(out, h.messages)
	return out
}

// Append adds messages to the end of the history.
func (h *History) Append(msgs ...llm.Message) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, msgs...)
}

// Len returns the number of messages.
func (h *History) Len() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.messages)
}

// Store maps session identifiers to their histories.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*History
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*History)}
}

// NewSessionID allocates a fresh session identifier.
func (s *Store) NewSessionID() string {
	return uuid.NewString()
}

// Get returns the history for id, creating it on first use.
func (s *Store) Get(id string) *History {
	s.mu.Lock()
	defer s.mu.Unlock()
	h, ok := s.sessions[id]
	if !ok {
		h = NewHistory()
		s.sessions[id] = h
	}
	return h
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}
