package memory

import (
	"sync"

	"trivia-session-service/internal/quiz"
)

// SessionRegistry is an in-memory implementation of quiz.SessionRegistry.
type SessionRegistry struct {
	mu       sync.RWMutex
	sessions map[string]*quiz.Session
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		sessions: make(map[string]*quiz.Session),
	}
}

func (r *SessionRegistry) Put(session *quiz.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
}

func (r *SessionRegistry) Get(sessionID string) (*quiz.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[sessionID]
	return session, ok
}

func (r *SessionRegistry) Delete(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
}
