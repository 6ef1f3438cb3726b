package middleware

import (
	"context"
	"net/http"
	"strings"

	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/ports/auth"
)

type ctxKey string

const (
	claimsKey ctxKey = "claims"
	tokenKey  ctxKey = "token"
)

// AuthContext:
// - Si viene Bearer token => intenta Verify() y setea claims.
// - Si devMode => además acepta X-Debug-User-ID / X-Debug-Role sin token.
// - Si no hay claims, el request sigue igual; los handlers decidirán si exigen auth.
func AuthContext(verifier auth.AuthVerifier, devMode bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r.Header.Get("Authorization"))

			if token != "" && verifier != nil {
				claims, err := verifier.Verify(r.Context(), token)
				if err == nil {
					ctx := context.WithValue(r.Context(), claimsKey, claims)
					ctx = context.WithValue(ctx, tokenKey, token)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
				// No cortamos aquí para no acoplar. El handler decide 401/403.
			}

			if devMode {
				if uid := strings.TrimSpace(r.Header.Get("X-Debug-User-ID")); uid != "" {
					claims := auth.Claims{
						UserID: uid,
						Name:   strings.TrimSpace(r.Header.Get("X-Debug-User-Name")),
						Role:   strings.TrimSpace(r.Header.Get("X-Debug-Role")),
					}
					ctx := context.WithValue(r.Context(), claimsKey, claims)
					next.ServeHTTP(w, r.WithContext(ctx))
					return
				}
			}

			next.ServeHTTP(w, r)
		})
	}
}

func GetClaims(ctx context.Context) (auth.Claims, bool) {
	v := ctx.Value(claimsKey)
	if v == nil {
		return auth.Claims{}, false
	}
	c, ok := v.(auth.Claims)
	return c, ok
}

// GetIdentity traduce las claims a una identidad de dominio.
// Un rol desconocido equivale a no estar autenticado.
func GetIdentity(ctx context.Context) (identity.Identity, bool) {
	c, ok := GetClaims(ctx)
	if !ok || strings.TrimSpace(c.UserID) == "" {
		return identity.Identity{}, false
	}
	role, err := identity.ParseRole(c.Role)
	if err != nil {
		return identity.Identity{}, false
	}
	return identity.Identity{
		ID:    c.UserID,
		Name:  c.Name,
		Email: c.Email,
		Role:  role,
	}, true
}

// GetToken devuelve el bearer ya verificado del request.
func GetToken(ctx context.Context) (string, bool) {
	t, ok := ctx.Value(tokenKey).(string)
	return t, ok && t != ""
}

func bearerToken(authHeader string) string {
	if strings.TrimSpace(authHeader) == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 {
		return ""
	}
	if !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
