package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// SessionStore issues opaque login tokens that expire after a fixed TTL.
type SessionStore struct {
	ttl      time.Duration
	now      func() time.Time
	mu       sync.Mutex
	sessions map[string]time.Time
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{ttl: ttl, now: time.Now, sessions: make(map[string]time.Time)}
}

// Create starts a session and returns its token and expiry.
func (s *SessionStore) Create() (string, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.prune()
	token := uuid.NewString()
	expires := s.now().Add(s.ttl)
	s.sessions[token] = expires
	return token, expires
}

// Valid reports whether token belongs to a live session.
func (s *SessionStore) Valid(token string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	expires, ok := s.sessions[token]
	if !ok {
		return false
	}
	if !s.now().Before(expires) {
		delete(s.sessions, token)
		return false
	}
	return true
}

// Revoke ends one session.
func (s *SessionStore) Revoke(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
}

// RevokeAll ends every session, used after a password change.
func (s *SessionStore) RevokeAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions = make(map[string]time.Time)
}

func (s *SessionStore) prune() {
	now := s.now()
	for token, expires := range s.sessions {
		if !now.Before(expires) {
			delete(s.sessions, token)
		}
	}
}
