package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemorySessionStore is an in-process session store for deployments
// without Redis. Sessions do not survive a restart.
type MemorySessionStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

type memorySession struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// NewMemorySessionStore creates an in-memory session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sessions: make(map[string]memorySession)}
}

// StoreSession records a refresh token session.
func (s *MemorySessionStore) StoreSession(_ context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[tokenHash] = memorySession{
		userID:    userID,
		expiresAt: time.Now().Add(ttl),
	}
	return nil
}

// GetSession resolves a session to its user ID. Returns uuid.Nil with a
// nil error when the session is missing or expired.
func (s *MemorySessionStore) GetSession(_ context.Context, tokenHash string) (uuid.UUID, error) {
	s.mu.RLock()
	session, ok := s.sessions[tokenHash]
	s.mu.RUnlock()

	if !ok {
		return uuid.Nil, nil
	}
	if time.Now().After(session.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, tokenHash)
		s.mu.Unlock()
		return uuid.Nil, nil
	}
	return session.userID, nil
}

// DeleteSession revokes a session.
func (s *MemorySessionStore) DeleteSession(_ context.Context, tokenHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, tokenHash)
	return nil
}
