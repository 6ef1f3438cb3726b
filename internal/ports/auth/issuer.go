package auth

import "context"

// TokenIssuer emite credenciales para una identidad ya autenticada
// y permite invalidarlas (logout).
type TokenIssuer interface {
	Issue(ctx context.Context, c Claims) (token string, issued Claims, err error)
	Revoke(ctx context.Context, sessionID string) error
}
