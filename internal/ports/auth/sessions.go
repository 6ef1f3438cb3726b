package auth

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found or expired")

// SessionStore guarda las sesiones emitidas. Un token con firma válida
// pero sin sesión (logout, expiración) se considera inválido.
type SessionStore interface {
	Save(ctx context.Context, c Claims, ttl time.Duration) error
	Lookup(ctx context.Context, sessionID string) (Claims, error)
	Revoke(ctx context.Context, sessionID string) error
}
