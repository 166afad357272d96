package redis

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"trivia-session-service/internal/quiz"
)

// SessionRegistry is a Redis-aware implementation of quiz.SessionRegistry.
// Notes:
//   - The live engines stay in a local map; a session state machine holds
//     running timers and cannot be serialized mid-question.
//   - Redis marks session liveness so operators can see active sessions
//     across instances (and it could be extended to route reconnects).
type SessionRegistry struct {
	client *redis.Client
	ttl    time.Duration

	mu       sync.RWMutex
	sessions map[string]*quiz.Session
}

func NewSessionRegistry(client *redis.Client, ttl time.Duration) *SessionRegistry {
	return &SessionRegistry{
		client:   client,
		ttl:      ttl,
		sessions: make(map[string]*quiz.Session),
	}
}

func (r *SessionRegistry) Put(session *quiz.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[session.ID()] = session
	// best-effort liveness marker
	_ = r.client.Set(context.Background(), r.key(session.ID()), session.User(), r.ttl).Err()
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
	if _, ok := r.sessions[sessionID]; !ok {
		return
	}
	delete(r.sessions, sessionID)
	_ = r.client.Del(context.Background(), r.key(sessionID)).Err()
}

func (r *SessionRegistry) key(sessionID string) string {
	return "quiz:session:" + sessionID
}
