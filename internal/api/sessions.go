package api

import (
	"sync"

	"github.com/google/uuid"

	"github.com/memomind/memomind/internal/chat"
)

// sessionEntry pairs a session with its own lock. chat.Session is not
// safe for concurrent use, so each exchange holds the entry lock for
// the duration of the model call.
type sessionEntry struct {
	mu   sync.Mutex
	sess *chat.Session
}

// SessionStore is an in-memory registry of active conversations.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*sessionEntry
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*sessionEntry)}
}

// Create starts a new session and returns it.
func (s *SessionStore) Create() *chat.Session {
	id := uuid.NewString()
	sess := chat.NewSession(id)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = &sessionEntry{sess: sess}
	return sess
}

// With runs fn while holding the session's lock. It returns false when
// the session does not exist.
func (s *SessionStore) With(id string, fn func(*chat.Session)) bool {
	s.mu.RLock()
	entry, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return false
	}
	entry.mu.Lock()
	defer entry.mu.Unlock()
	fn(entry.sess)
	return true
}

// Delete removes a session.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
}

// Len reports how many sessions are live.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}
