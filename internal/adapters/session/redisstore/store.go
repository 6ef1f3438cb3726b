// Package redisstore guarda las sesiones emitidas en Redis con TTL.
package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"advogados-solidarios/internal/ports/auth"

	"github.com/redis/go-redis/v9"
)

// sessionData es lo que se guarda por sesión.
type sessionData struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

type Store struct {
	client *redis.Client
	prefix string
}

// New abre la conexión y hace ping.
func New(redisURL string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return NewWithClient(client), nil
}

func NewWithClient(client *redis.Client) *Store {
	return &Store{client: client, prefix: "session:"}
}

func (s *Store) key(sessionID string) string {
	return s.prefix + sessionID
}

func (s *Store) Save(ctx context.Context, c auth.Claims, ttl time.Duration) error {
	if c.SessionID == "" {
		return errors.New("session id required")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	data, err := json.Marshal(sessionData{
		UserID:    c.UserID,
		Email:     c.Email,
		Name:      c.Name,
		Role:      c.Role,
		ExpiresAt: c.ExpiresAt,
	})
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	if err := s.client.Set(ctx, s.key(c.SessionID), data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (s *Store) Lookup(ctx context.Context, sessionID string) (auth.Claims, error) {
	raw, err := s.client.Get(ctx, s.key(sessionID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.Claims{}, auth.ErrSessionNotFound
	}
	if err != nil {
		return auth.Claims{}, fmt.Errorf("lookup session: %w", err)
	}

	var d sessionData
	if err := json.Unmarshal(raw, &d); err != nil {
		return auth.Claims{}, fmt.Errorf("unmarshal session: %w", err)
	}

	return auth.Claims{
		UserID:    d.UserID,
		Email:     d.Email,
		Name:      d.Name,
		Role:      d.Role,
		SessionID: sessionID,
		ExpiresAt: d.ExpiresAt,
	}, nil
}

// Revoke es idempotente: borrar una sesión inexistente no es error.
func (s *Store) Revoke(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.key(sessionID)).Err(); err != nil {
		return fmt.Errorf("revoke session: %w", err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	return s.client.Close()
}
