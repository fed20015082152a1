package memory

import (
	"context"
	"sync"
	"time"

	"github.com/jhoicas/stockmanager-api/internal/application/wizard"
)

var _ wizard.SessionStore = (*SessionStore)(nil)

type sessionEntry struct {
	session   wizard.Session
	expiresAt time.Time
}

// SessionStore sesiones del asistente en memoria con expiración perezosa.
type SessionStore struct {
	mu      sync.Mutex
	entries map[string]sessionEntry
	now     func() time.Time
}

// NewSessionStore crea el almacén. now puede ser nil (usa time.Now).
func NewSessionStore(now func() time.Time) *SessionStore {
	if now == nil {
		now = time.Now
	}
	return &SessionStore{entries: map[string]sessionEntry{}, now: now}
}

// Get devuelve la sesión o nil si no existe o expiró.
func (s *SessionStore) Get(_ context.Context, conversationID string) (*wizard.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[conversationID]
	if !ok {
		return nil, nil
	}
	if !s.now().Before(e.expiresAt) {
		delete(s.entries, conversationID)
		return nil, nil
	}
	session := e.session
	return &session, nil
}

// Take devuelve la sesión y la borra bajo el mismo lock.
func (s *SessionStore) Take(_ context.Context, conversationID string) (*wizard.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[conversationID]
	if !ok {
		return nil, nil
	}
	delete(s.entries, conversationID)
	if !s.now().Before(e.expiresAt) {
		return nil, nil
	}
	session := e.session
	return &session, nil
}

// Save guarda la sesión renovando su expiración.
func (s *SessionStore) Save(_ context.Context, session wizard.Session, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[session.ConversationID] = sessionEntry{session: session, expiresAt: s.now().Add(ttl)}
	return nil
}

// Delete descarta la sesión.
func (s *SessionStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, conversationID)
	return nil
}
