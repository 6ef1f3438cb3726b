package identity

import (
	"errors"
	"testing"

	"advogados-solidarios/internal/platform/apperr"
)

func TestNormalizeLoginRole_Shapes(t *testing.T) {
	cases := []struct {
		name string
		src  LoginRoleSource
		want Role
	}{
		{"flat wire role", LoginRoleSource{Role: "USUARIO"}, RoleCitizen},
		{"flat english role", LoginRoleSource{Role: "lawyer"}, RoleLawyer},
		{"nested user role", LoginRoleSource{UserRole: "ADVOGADO"}, RoleLawyer},
		{"authority string", LoginRoleSource{Authorities: []string{"ROLE_USUARIO"}}, RoleCitizen},
		{"authority lawyer", LoginRoleSource{Authorities: []string{"ROLE_ADVOGADO"}}, RoleLawyer},
		{"flat wins over authority", LoginRoleSource{Role: "ADVOGADO", Authorities: []string{"ROLE_USUARIO"}}, RoleLawyer},
		{"skips unknown flat role", LoginRoleSource{Role: "ADMIN", Authorities: []string{"ROLE_ADVOGADO"}}, RoleLawyer},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := NormalizeLoginRole(tc.src)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %s, got %s", tc.want, got)
			}
		})
	}
}

func TestNormalizeLoginRole_Undetermined(t *testing.T) {
	_, err := NormalizeLoginRole(LoginRoleSource{Authorities: []string{"USUARIO", "ROLE_ADMIN"}})
	if !errors.Is(err, ErrRoleUndetermined) {
		t.Fatalf("expected ErrRoleUndetermined, got %v", err)
	}
	if !errors.Is(err, apperr.ErrAuthenticationRequired) || apperr.Status(err) != 401 {
		t.Fatalf("undetermined role must be an authentication error, got %v", err)
	}
}

func TestRole_WireNames(t *testing.T) {
	if RoleCitizen.WireName() != "USUARIO" || RoleLawyer.Authority() != "ROLE_ADVOGADO" {
		t.Fatalf("unexpected wire names: %s %s", RoleCitizen.WireName(), RoleLawyer.Authority())
	}
	if Role("ADMIN").Valid() {
		t.Fatalf("ADMIN must not be a valid role")
	}
}
