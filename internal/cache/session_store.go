package cache

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// SessionStore keeps hashed refresh tokens in Redis with their user ID as
// the value; expiry is handled by the key TTL.
type SessionStore struct {
	cache *CacheService
}

// NewSessionStore creates a session store on top of the cache service.
func NewSessionStore(cache *CacheService) *SessionStore {
	return &SessionStore{cache: cache}
}

// StoreSession records a refresh token session.
func (s *SessionStore) StoreSession(ctx context.Context, tokenHash string, userID uuid.UUID, ttl time.Duration) error {
	return s.cache.Set(ctx, SessionKey(tokenHash), userID.String(), ttl)
}

// GetSession resolves a refresh token session to its user ID. Returns
// uuid.Nil with a nil error when the session is missing or expired.
func (s *SessionStore) GetSession(ctx context.Context, tokenHash string) (uuid.UUID, error) {
	value, err := s.cache.Get(ctx, SessionKey(tokenHash))
	if err != nil {
		if IsMiss(err) {
			return uuid.Nil, nil
		}
		return uuid.Nil, err
	}

	userID, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, nil
	}
	return userID, nil
}

// DeleteSession revokes a refresh token session.
func (s *SessionStore) DeleteSession(ctx context.Context, tokenHash string) error {
	return s.cache.Delete(ctx, SessionKey(tokenHash))
}
