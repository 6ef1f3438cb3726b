package accounts

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/fields"

	"golang.org/x/crypto/bcrypt"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Account
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Account{}}
}

func (r *testRepo) Create(ctx context.Context, a Account) error {
	for _, existing := range r.byID {
		if existing.Email == a.Email {
			return ErrEmailTaken
		}
	}
	r.byID[a.ID] = a
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Account, error) {
	a, ok := r.byID[id]
	if !ok {
		return Account{}, apperr.ErrNotFound
	}
	return a, nil
}

func (r *testRepo) GetByEmail(ctx context.Context, email string) (Account, error) {
	for _, a := range r.byID {
		if a.Email == email {
			return a, nil
		}
	}
	return Account{}, apperr.ErrNotFound
}

func newTestService() *Service {
	svc := NewService(newTestRepo(), nil, nil)
	svc.cost = bcrypt.MinCost
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func TestRegisterCitizen_AndAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.RegisterCitizen(ctx, RegisterInput{
		Name:     "  Maria da Silva ",
		Email:    "Maria@Example.com",
		Password: "segredo123",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.Name != "Maria da Silva" || a.Email != "maria@example.com" || a.Role != identity.RoleCitizen {
		t.Fatalf("unexpected account: %+v", a)
	}
	if string(a.PasswordHash) == "segredo123" {
		t.Fatalf("password must be hashed")
	}

	who, err := svc.Authenticate(ctx, "maria@example.com", "segredo123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if who.ID != a.ID || !who.IsCitizen() {
		t.Fatalf("unexpected identity: %+v", who)
	}
}

func TestAuthenticate_WrongPasswordAndUnknownEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	if _, err := svc.RegisterCitizen(ctx, RegisterInput{Name: "Maria", Email: "m@x.com", Password: "segredo123"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := svc.Authenticate(ctx, "m@x.com", "errada"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, "ninguem@x.com", "segredo123"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
	if apperr.Status(ErrInvalidCredentials) != 401 {
		t.Fatalf("invalid credentials must map to 401")
	}
}

func TestAuthenticate_ClipsLikeRegistration(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	// 52 y 55 caracteres: el registro guarda ambos recortados a 50
	email := strings.Repeat("a", 40) + "@example.com"
	password := strings.Repeat("p", 55)

	a, err := svc.RegisterCitizen(ctx, RegisterInput{Name: "Maria", Email: email, Password: password})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Email) != 50 {
		t.Fatalf("expected stored email clipped to 50, got %d", len(a.Email))
	}

	who, err := svc.Authenticate(ctx, email, password)
	if err != nil {
		t.Fatalf("login with the typed values must succeed, got %v", err)
	}
	if who.ID != a.ID {
		t.Fatalf("unexpected identity: %+v", who)
	}

	if _, err := svc.Authenticate(ctx, email, strings.Repeat("p", 50)); err != nil {
		t.Fatalf("the clipped password is the stored one, got %v", err)
	}
	if _, err := svc.Authenticate(ctx, email, strings.Repeat("p", 49)); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	in := RegisterInput{Name: "Maria", Email: "m@x.com", Password: "segredo123"}
	if _, err := svc.RegisterCitizen(ctx, in); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	in.OAB = "123456/SP"
	if _, err := svc.RegisterLawyer(ctx, in); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestRegisterLawyer_OAB(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	a, err := svc.RegisterLawyer(ctx, RegisterInput{Name: "Dr. Souza", Email: "s@x.com", Password: "segredo123", OAB: "123456/sp"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.OAB != "123456/SP" || !a.Identity().IsLawyer() {
		t.Fatalf("unexpected account: %+v", a)
	}

	_, err = svc.RegisterLawyer(ctx, RegisterInput{Name: "Dr. Lima", Email: "l@x.com", Password: "segredo123", OAB: "12"})
	var ve *fields.ValidationError
	if !errors.As(err, &ve) || ve.Field != "oab" {
		t.Fatalf("expected oab validation error, got %v", err)
	}
}

func TestRegister_FieldLimits(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	_, err := svc.RegisterCitizen(ctx, RegisterInput{Name: "Al", Email: "a@x.com", Password: "segredo123"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for short name, got %v", err)
	}

	_, err = svc.RegisterCitizen(ctx, RegisterInput{Name: "Alice", Email: "a@x.com", Password: "12345"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("expected validation error for short password, got %v", err)
	}

	a, err := svc.RegisterCitizen(ctx, RegisterInput{Name: strings.Repeat("a", 55), Email: "a@x.com", Password: "segredo123"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(a.Name) != 50 {
		t.Fatalf("expected name truncated to 50, got %d", len(a.Name))
	}
}
