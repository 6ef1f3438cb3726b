package gate

import (
	"context"
	"sync"
	"testing"

	"advogados-solidarios/internal/client/session"
	"advogados-solidarios/internal/domain/identity"
)

var (
	citizen = identity.Identity{ID: "u1", Name: "Maria", Role: identity.RoleCitizen}
	lawyer  = identity.Identity{ID: "l1", Name: "Dr. Souza", Role: identity.RoleLawyer}
)

func ready(who *identity.Identity) session.Snapshot {
	return session.Snapshot{Identity: who, State: session.StateReady}
}

func TestEvaluate_Rules(t *testing.T) {
	cases := []struct {
		name  string
		route string
		snap  session.Snapshot
		want  Decision
	}{
		{"restoring is pending", "/cases", session.Snapshot{State: session.StateRestoring}, Decision{Kind: Pending}},
		{"restoring wins over auth entry", "/login", session.Snapshot{Identity: &citizen, State: session.StateRestoring}, Decision{Kind: Pending}},
		{"anonymous on lawyer route", "/cases", ready(nil), Decision{Kind: Redirect, Target: "/login"}},
		{"anonymous on dashboard", "/dashboard", ready(nil), Decision{Kind: Redirect, Target: "/login"}},
		{"citizen on lawyer route", "/cases", ready(&citizen), Decision{Kind: Redirect, Target: "/dashboard"}},
		{"citizen on case detail", "/cases/abc", ready(&citizen), Decision{Kind: Redirect, Target: "/dashboard"}},
		{"lawyer on submit-case", "/submit-case", ready(&lawyer), Decision{Kind: Redirect, Target: "/dashboard"}},
		{"lawyer on cases", "/cases", ready(&lawyer), Decision{Kind: Allow}},
		{"citizen on submit-case", "/submit-case", ready(&citizen), Decision{Kind: Allow}},
		{"authenticated on login", "/login", ready(&citizen), Decision{Kind: Redirect, Target: "/dashboard"}},
		{"authenticated on register", "/register/lawyer/", ready(&lawyer), Decision{Kind: Redirect, Target: "/dashboard"}},
		{"anonymous on login", "/login", ready(nil), Decision{Kind: Allow}},
		{"anonymous on home", "/", ready(nil), Decision{Kind: Allow}},
		{"authenticated on home", "/", ready(&lawyer), Decision{Kind: Allow}},
		{"history for any role", "/causas/historico?status=ACEITA", ready(&lawyer), Decision{Kind: Allow}},
		{"unknown route needs auth", "/settings", ready(nil), Decision{Kind: Redirect, Target: "/login"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Evaluate(DefaultRoutes.RuleFor(tc.route), tc.route, tc.snap)
			if got != tc.want {
				t.Fatalf("expected %v %q, got %v %q", tc.want.Kind, tc.want.Target, got.Kind, got.Target)
			}
		})
	}
}

func TestEvaluate_RedirectPathOverride(t *testing.T) {
	rule := Rule{RequiredAuth: true, RedirectPath: "/register/user"}
	got := Evaluate(rule, "/submit-case", ready(nil))
	if got.Kind != Redirect || got.Target != "/register/user" {
		t.Fatalf("expected redirect to /register/user, got %+v", got)
	}
}

func TestGuard_RecomputesOnSessionChange(t *testing.T) {
	store := session.New(nil)
	defer store.Close()

	var (
		mu  sync.Mutex
		got []Decision
	)
	g := NewGuard(store, nil, "/cases", func(route string, d Decision) {
		mu.Lock()
		got = append(got, d)
		mu.Unlock()
	})
	defer g.Close()

	if _, d := g.Current(); d.Kind != Pending {
		t.Fatalf("expected PENDING while restoring, got %v", d.Kind)
	}

	if err := store.Login(context.Background(), "tok", lawyer); err != nil {
		t.Fatalf("login: %v", err)
	}
	if _, d := g.Current(); d.Kind != Allow {
		t.Fatalf("expected ALLOW after lawyer login, got %v", d.Kind)
	}

	store.Logout(context.Background())
	route, d := g.Current()
	if route != "/cases" || d.Kind != Redirect || d.Target != LoginPath {
		t.Fatalf("expected redirect to login after logout, got %s %+v", route, d)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(got) != 3 {
		t.Fatalf("expected 3 delivered decisions, got %d", len(got))
	}
}

func TestGuard_NavigateLastWins(t *testing.T) {
	store := session.New(nil)
	defer store.Close()
	_ = store.Login(context.Background(), "tok", citizen)

	g := NewGuard(store, nil, "/dashboard", nil)
	defer g.Close()

	var wg sync.WaitGroup
	for _, r := range []string{"/cases", "/submit-case", "/login", "/causas/historico"} {
		wg.Add(1)
		go func(r string) {
			defer wg.Done()
			g.Navigate(r)
		}(r)
	}
	wg.Wait()

	if d := g.Navigate("/submit-case"); d.Kind != Allow {
		t.Fatalf("expected ALLOW, got %v", d.Kind)
	}
	route, d := g.Current()
	if route != "/submit-case" || d.Kind != Allow {
		t.Fatalf("current must reflect the last navigation, got %s %+v", route, d)
	}
}

func TestRoutes_Match(t *testing.T) {
	if DefaultRoutes.RuleFor("/cases/").AllowedRoles[0] != identity.RoleLawyer {
		t.Fatalf("trailing slash must match /cases")
	}
	if r := DefaultRoutes.RuleFor("/cases/1/extra"); !r.RequiredAuth || len(r.AllowedRoles) != 0 {
		t.Fatalf("unknown nested route must fall back to auth-only rule")
	}
}

func TestNewGuard_SeesLoginDuringConstruction(t *testing.T) {
	for range 200 {
		store := session.New(nil)

		done := make(chan struct{})
		go func() {
			defer close(done)
			_ = store.Login(context.Background(), "tok", lawyer)
		}()
		g := NewGuard(store, nil, "/cases", nil)
		<-done

		if _, d := g.Current(); d.Kind != Allow {
			g.Close()
			store.Close()
			t.Fatalf("guard kept a stale decision: %+v", d)
		}
		g.Close()
		store.Close()
	}
}
