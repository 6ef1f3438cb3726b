package history

import (
	"testing"
	"time"

	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/identity"
)

var (
	citizen = identity.Identity{ID: "u1", Name: "Maria", Role: identity.RoleCitizen}
	lawyer  = identity.Identity{ID: "l1", Name: "Dr. Souza", Role: identity.RoleLawyer}
)

func fixture() []cases.Case {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []cases.Case{
		{ID: "c1", Title: "Pensão alimentícia", OwnerID: "u1", Status: cases.StatusOpen, CreatedAt: base},
		{ID: "c2", Title: "Despejo", OwnerID: "u1", Status: cases.StatusAccepted, CreatedAt: base.Add(time.Hour)},
		{ID: "c3", Title: "Trabalhista", OwnerID: "u2", Status: cases.StatusHasProposals, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "c4", Title: "Inventário", OwnerID: "u1", Status: cases.StatusConcluded, CreatedAt: base.Add(3 * time.Hour)},
	}
}

func ids(rows []Row) []string {
	out := make([]string, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.CaseID)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestProject_CitizenSeesOwnCases(t *testing.T) {
	got := ids(Collect(Project(fixture(), citizen, nil)))
	want := []string{"c4", "c2", "c1"}
	if !equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestProject_LawyerSeesProposedOn(t *testing.T) {
	got := ids(Collect(Project(fixture(), lawyer, []string{"c3", "c1"})))
	want := []string{"c3", "c1"}
	if !equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestProject_AnonymousSeesNothing(t *testing.T) {
	got := Collect(Project(fixture(), identity.Identity{}, []string{"c1"}))
	if len(got) != 0 {
		t.Fatalf("expected no rows, got %d", len(got))
	}
}

func TestFilter_CaseInsensitiveWireAndInternalNames(t *testing.T) {
	for _, status := range []string{"ACEITA", "aceita", "ACCEPTED", " accepted "} {
		got := ids(Collect(Filter(Project(fixture(), citizen, nil), status)))
		if !equal(got, []string{"c2"}) {
			t.Fatalf("status %q: expected [c2], got %v", status, got)
		}
	}
}

func TestFilter_ConcludedAndUnknown(t *testing.T) {
	got := ids(Collect(Filter(Project(fixture(), citizen, nil), "CONCLUIDA")))
	if !equal(got, []string{"c4"}) {
		t.Fatalf("expected [c4], got %v", got)
	}

	if rows := Collect(Filter(Project(fixture(), citizen, nil), "ACEIT")); len(rows) != 0 {
		t.Fatalf("partial status must not match, got %v", ids(rows))
	}
}

func TestProject_IsRestartableAndDoesNotMutate(t *testing.T) {
	items := fixture()
	seq := Project(items, citizen, nil)

	first := Collect(Filter(seq, "ABERTA"))
	second := Collect(Filter(seq, ""))

	if len(first) != 1 || len(second) != 3 {
		t.Fatalf("expected 1 then 3 rows, got %d then %d", len(first), len(second))
	}
	if items[0].Status != cases.StatusOpen || items[1].ID != "c2" {
		t.Fatalf("source slice was mutated")
	}
}
