package jwtauth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"advogados-solidarios/internal/ports/auth"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrSecretRequired = errors.New("jwt secret is required")
	ErrTokenInvalid   = errors.New("token invalid")
)

type Config struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

// tokenClaims es lo que viaja firmado. El jti es el id de sesión.
type tokenClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Service emite y verifica tokens HS256. Cada token tiene una sesión en el
// SessionStore; sin sesión el token deja de valer aunque la firma sea válida.
// Implementa auth.TokenIssuer y auth.AuthVerifier.
type Service struct {
	secret   []byte
	issuer   string
	ttl      time.Duration
	sessions auth.SessionStore
	now      func() time.Time
}

func New(cfg Config, sessions auth.SessionStore) (*Service, error) {
	if strings.TrimSpace(cfg.Secret) == "" {
		return nil, ErrSecretRequired
	}
	if cfg.TTL <= 0 {
		cfg.TTL = 24 * time.Hour
	}
	return &Service{
		secret:   []byte(cfg.Secret),
		issuer:   cfg.Issuer,
		ttl:      cfg.TTL,
		sessions: sessions,
		now:      time.Now,
	}, nil
}

func (s *Service) Issue(ctx context.Context, c auth.Claims) (string, auth.Claims, error) {
	now := s.now().UTC()
	c.SessionID = uuid.NewString()
	c.ExpiresAt = now.Add(s.ttl)

	tc := tokenClaims{
		Email: c.Email,
		Name:  c.Name,
		Role:  c.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        c.SessionID,
			Subject:   c.UserID,
			Issuer:    s.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(c.ExpiresAt),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, tc).SignedString(s.secret)
	if err != nil {
		return "", auth.Claims{}, fmt.Errorf("sign token: %w", err)
	}

	if s.sessions != nil {
		if err := s.sessions.Save(ctx, c, s.ttl); err != nil {
			return "", auth.Claims{}, err
		}
	}
	return token, c, nil
}

func (s *Service) Verify(ctx context.Context, token string) (auth.Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return auth.Claims{}, ErrTokenInvalid
	}

	var tc tokenClaims
	parsed, err := jwt.ParseWithClaims(token, &tc, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil || !parsed.Valid {
		return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
	}
	if s.issuer != "" && tc.Issuer != s.issuer {
		return auth.Claims{}, ErrTokenInvalid
	}

	c := auth.Claims{
		UserID:    tc.Subject,
		Email:     tc.Email,
		Name:      tc.Name,
		Role:      tc.Role,
		SessionID: tc.ID,
	}
	if tc.ExpiresAt != nil {
		c.ExpiresAt = tc.ExpiresAt.Time
	}

	if s.sessions != nil {
		if _, err := s.sessions.Lookup(ctx, c.SessionID); err != nil {
			return auth.Claims{}, fmt.Errorf("%w: %v", ErrTokenInvalid, err)
		}
	}
	return c, nil
}

func (s *Service) Revoke(ctx context.Context, sessionID string) error {
	if s.sessions == nil || strings.TrimSpace(sessionID) == "" {
		return nil
	}
	return s.sessions.Revoke(ctx, sessionID)
}
