package memory

import (
	"context"
	"sync"

	"github.com/custodia-labs/dorkdesk-core/internal/core/domain"
	"github.com/custodia-labs/dorkdesk-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore in process memory.
// Used when no Redis is configured; sessions do not survive restarts,
// which is acceptable for a single-analyst instance.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	byToken  map[string]string
}

// NewSessionStore creates an in-memory SessionStore
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: map[string]*domain.Session{},
		byToken:  map[string]string{},
	}
}

// Save stores a session; already-expired sessions are ignored
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	if session.IsExpired() {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if old, ok := s.sessions[session.ID]; ok {
		delete(s.byToken, old.Token)
	}
	s.sessions[session.ID] = session
	s.byToken[session.Token] = session.ID
	return nil
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	if session.IsExpired() {
		_ = s.Delete(ctx, id)
		return nil, domain.ErrNotFound
	}
	return session, nil
}

// GetByToken retrieves a session by token value
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	s.mu.RLock()
	id, ok := s.byToken[token]
	s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrNotFound
	}
	return s.Get(ctx, id)
}

// Delete deletes a session; unknown IDs are a no-op
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session, ok := s.sessions[id]; ok {
		delete(s.byToken, session.Token)
		delete(s.sessions, id)
	}
	return nil
}

// DeleteByToken deletes a session by token; unknown tokens are a no-op
func (s *SessionStore) DeleteByToken(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if id, ok := s.byToken[token]; ok {
		delete(s.sessions, id)
		delete(s.byToken, token)
	}
	return nil
}
