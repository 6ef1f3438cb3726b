package redisstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"advogados-solidarios/internal/ports/auth"

	"github.com/alicebob/miniredis/v2"
)

func setupTestRedis(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	s := miniredis.RunT(t)
	store, err := New("redis://" + s.Addr())
	if err != nil {
		t.Fatalf("failed to create redis store: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store, s
}

func TestSaveAndLookup(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	in := auth.Claims{UserID: "u1", Email: "m@x.com", Name: "Maria", Role: "USUARIO", SessionID: "s1"}
	if err := store.Save(ctx, in, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := store.Lookup(ctx, "s1")
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if got.UserID != "u1" || got.Role != "USUARIO" || got.SessionID != "s1" {
		t.Fatalf("unexpected claims: %+v", got)
	}
}

func TestLookupExpired(t *testing.T) {
	store, s := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Save(ctx, auth.Claims{UserID: "u1", SessionID: "s1"}, time.Minute); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	s.FastForward(2 * time.Minute)

	if _, err := store.Lookup(ctx, "s1"); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestRevokeIsIdempotent(t *testing.T) {
	store, _ := setupTestRedis(t)
	ctx := context.Background()

	if err := store.Save(ctx, auth.Claims{UserID: "u1", SessionID: "s1"}, time.Hour); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := store.Revoke(ctx, "s1"); err != nil {
			t.Fatalf("Revoke #%d failed: %v", i+1, err)
		}
	}
	if _, err := store.Lookup(ctx, "s1"); !errors.Is(err, auth.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after revoke, got %v", err)
	}
}
