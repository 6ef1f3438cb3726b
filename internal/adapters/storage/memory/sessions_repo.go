package memory

import (
	"context"
	"errors"
	"time"

	"advogados-solidarios/internal/ports/auth"
)

type sessionEntry struct {
	claims    auth.Claims
	expiresAt time.Time
}

// sessionRepo se usa cuando no hay REDIS_URL.
type sessionRepo struct {
	s *Store
}

func (r *sessionRepo) Save(ctx context.Context, c auth.Claims, ttl time.Duration) error {
	if c.SessionID == "" {
		return errors.New("session id required")
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.sessions[c.SessionID] = sessionEntry{claims: c, expiresAt: r.s.now().Add(ttl)}
	return nil
}

func (r *sessionRepo) Lookup(ctx context.Context, sessionID string) (auth.Claims, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	e, ok := r.s.sessions[sessionID]
	if !ok || !r.s.now().Before(e.expiresAt) {
		return auth.Claims{}, auth.ErrSessionNotFound
	}
	return e.claims, nil
}

func (r *sessionRepo) Revoke(ctx context.Context, sessionID string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	delete(r.s.sessions, sessionID)
	return nil
}
