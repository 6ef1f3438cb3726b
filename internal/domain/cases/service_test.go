package cases

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/fields"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	byID map[string]Case
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Case{}}
}

func (r *testRepo) Create(ctx context.Context, c Case) error {
	if _, ok := r.byID[c.ID]; ok {
		return errors.New("repo: already exists")
	}
	r.byID[c.ID] = c
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Case, error) {
	c, ok := r.byID[id]
	if !ok {
		return Case{}, apperr.ErrNotFound
	}
	return c, nil
}

func (r *testRepo) ListByOwner(ctx context.Context, ownerID string) ([]Case, error) {
	out := make([]Case, 0)
	for _, c := range r.byID {
		if c.OwnerID == ownerID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testRepo) ListByStatus(ctx context.Context, statuses []Status) ([]Case, error) {
	out := make([]Case, 0)
	for _, c := range r.byID {
		for _, st := range statuses {
			if c.Status == st {
				out = append(out, c)
			}
		}
	}
	return out, nil
}

func (r *testRepo) ListByIDs(ctx context.Context, ids []string) ([]Case, error) {
	out := make([]Case, 0)
	for _, id := range ids {
		if c, ok := r.byID[id]; ok {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *testRepo) Advance(ctx context.Context, id string, from, to Status, at time.Time) (Case, error) {
	c, ok := r.byID[id]
	if !ok {
		return Case{}, apperr.ErrNotFound
	}
	if c.Status != from || !from.CanAdvanceTo(to) {
		return Case{}, ErrInvalidState
	}
	c.Status = to
	c.UpdatedAt = at
	r.byID[id] = c
	return c, nil
}

var (
	owner    = identity.Identity{ID: "u1", Name: "Maria", Role: identity.RoleCitizen}
	stranger = identity.Identity{ID: "u2", Name: "João", Role: identity.RoleCitizen}
	lawyer   = identity.Identity{ID: "l1", Name: "Dr. Souza", Role: identity.RoleLawyer}
)

const validDescription = "Preciso de ajuda com um contrato de aluguel."

func newTestService() (*Service, *testRepo) {
	repo := newTestRepo()
	svc := NewService(repo, nil, nil)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC) }
	return svc, repo
}

func mustSubmit(t *testing.T, svc *Service, title string) Case {
	t.Helper()
	c, err := svc.Submit(context.Background(), owner, SubmitInput{Title: title, Description: validDescription})
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	return c
}

func TestStatus_ForwardOnly(t *testing.T) {
	for i, from := range lifecycle {
		for j, to := range lifecycle {
			if got, want := from.CanAdvanceTo(to), j > i; got != want {
				t.Fatalf("%s -> %s: expected %v, got %v", from, to, want, got)
			}
		}
	}
	if Status("BOGUS").CanAdvanceTo(StatusOpen) || StatusOpen.CanAdvanceTo("BOGUS") {
		t.Fatalf("unknown status must not advance")
	}
}

func TestParseStatus_WireAndInternal(t *testing.T) {
	for raw, want := range map[string]Status{
		"ABERTA": StatusOpen, "com_propostas": StatusHasProposals, "Accepted": StatusAccepted, "CONCLUIDA": StatusConcluded,
	} {
		got, ok := ParseStatus(raw)
		if !ok || got != want {
			t.Fatalf("%q: expected %s, got %s (%v)", raw, want, got, ok)
		}
	}
	if _, ok := ParseStatus("FECHADA"); ok {
		t.Fatalf("unknown status must not parse")
	}
}

func TestSubmit_TitleMinimumAndTruncation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	_, err := svc.Submit(ctx, owner, SubmitInput{Title: "abc", Description: validDescription})
	var ve *fields.ValidationError
	if !errors.As(err, &ve) || ve.Field != "title" || !strings.Contains(ve.Message, "mínimo") {
		t.Fatalf("expected title minimum error, got %v", err)
	}

	c, err := svc.Submit(ctx, owner, SubmitInput{Title: "abcde", Description: validDescription})
	if err != nil {
		t.Fatalf("5-char title must be accepted: %v", err)
	}
	if c.Status != StatusOpen || c.OwnerID != owner.ID {
		t.Fatalf("unexpected case: %+v", c)
	}

	long := strings.Repeat("d", 2100)
	c, err = svc.Submit(ctx, owner, SubmitInput{Title: "Descrição longa", Description: long})
	if err != nil {
		t.Fatalf("2100-char description must be truncated and accepted: %v", err)
	}
	if len(c.Description) != 2000 {
		t.Fatalf("expected 2000 chars, got %d", len(c.Description))
	}
}

func TestSubmit_OnlyCitizens(t *testing.T) {
	svc, _ := newTestService()

	_, err := svc.Submit(context.Background(), lawyer, SubmitInput{Title: "Teste Recebimento", Description: validDescription})
	if !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	_, err = svc.Submit(context.Background(), identity.Identity{}, SubmitInput{Title: "Teste Recebimento", Description: validDescription})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestReceiveProposal_Idempotent(t *testing.T) {
	svc, repo := newTestService()
	c := mustSubmit(t, svc, "Teste Recebimento")

	for i := 0; i < 2; i++ {
		got, err := svc.ReceiveProposal(context.Background(), c.ID)
		if err != nil {
			t.Fatalf("receive #%d: %v", i+1, err)
		}
		if got.Status != StatusHasProposals {
			t.Fatalf("expected HAS_PROPOSALS, got %s", got.Status)
		}
	}

	// ya aceptado: no retrocede
	stored := repo.byID[c.ID]
	stored.Status = StatusAccepted
	repo.byID[c.ID] = stored

	got, err := svc.ReceiveProposal(context.Background(), c.ID)
	if err != nil || got.Status != StatusAccepted {
		t.Fatalf("expected no-op on ACCEPTED, got %s err=%v", got.Status, err)
	}
}

func TestAcceptProposal_PermissionAndState(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	c := mustSubmit(t, svc, "Teste Recebimento")

	for _, who := range []identity.Identity{stranger, lawyer, {ID: owner.ID, Role: identity.RoleLawyer}} {
		if _, err := svc.AcceptProposal(ctx, c.ID, "p1", who); !errors.Is(err, ErrPermissionDenied) {
			t.Fatalf("expected ErrPermissionDenied for %+v, got %v", who, err)
		}
	}
	if repo.byID[c.ID].Status != StatusOpen {
		t.Fatalf("denied accept must not change state")
	}

	a, err := svc.AcceptProposal(ctx, c.ID, " p1 ", owner)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.From != StatusOpen || a.ProposalID != "p1" || a.CaseID != c.ID {
		t.Fatalf("unexpected acceptance: %+v", a)
	}

	stored := repo.byID[c.ID]
	stored.Status = StatusAccepted
	repo.byID[c.ID] = stored

	if _, err := svc.AcceptProposal(ctx, c.ID, "p2", owner); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on accepted case, got %v", err)
	}
}

func TestConclude(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()
	c := mustSubmit(t, svc, "Teste Recebimento")

	if _, err := svc.Conclude(ctx, c.ID, owner); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState concluding OPEN case, got %v", err)
	}

	stored := repo.byID[c.ID]
	stored.Status = StatusAccepted
	repo.byID[c.ID] = stored

	if _, err := svc.Conclude(ctx, c.ID, stranger); !errors.Is(err, ErrPermissionDenied) {
		t.Fatalf("expected ErrPermissionDenied, got %v", err)
	}
	got, err := svc.Conclude(ctx, c.ID, owner)
	if err != nil || got.Status != StatusConcluded {
		t.Fatalf("expected CONCLUDED, got %s err=%v", got.Status, err)
	}
}

func TestListOpen_SearchAndOrder(t *testing.T) {
	svc, repo := newTestService()
	ctx := context.Background()

	base := time.Date(2025, 1, 1, 10, 0, 0, 0, time.UTC)
	i := 0
	svc.now = func() time.Time { i++; return base.Add(time.Duration(i) * time.Hour) }

	a := mustSubmit(t, svc, "Pensão alimentícia")
	b := mustSubmit(t, svc, "Despejo injusto")
	closed := mustSubmit(t, svc, "Pensão atrasada")

	stored := repo.byID[closed.ID]
	stored.Status = StatusAccepted
	repo.byID[closed.ID] = stored

	all, err := svc.ListOpen(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 2 || all[0].ID != b.ID || all[1].ID != a.ID {
		t.Fatalf("expected [b a] newest first, got %+v", all)
	}

	found, _ := svc.ListOpen(ctx, ListFilter{Query: "PENSÃO"})
	if len(found) != 1 || found[0].ID != a.ID {
		t.Fatalf("expected only open pensão case, got %+v", found)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	svc, _ := newTestService()
	if _, err := svc.GetByID(context.Background(), "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if apperr.Status(ErrNotFound) != 404 {
		t.Fatalf("ErrNotFound must map to 404")
	}
}
