package identity

import (
	"fmt"
	"strings"

	"advogados-solidarios/internal/platform/apperr"
)

// Role es cerrado: solo existen cidadão (USUARIO) y advogado (ADVOGADO).
type Role string

const (
	RoleCitizen Role = "CITIZEN"
	RoleLawyer  Role = "LAWYER"
)

var ErrUnknownRole = fmt.Errorf("identity: %w: unknown role", apperr.ErrValidation)

// WireName es el nombre que usa el contrato HTTP.
func (r Role) WireName() string {
	switch r {
	case RoleCitizen:
		return "USUARIO"
	case RoleLawyer:
		return "ADVOGADO"
	default:
		return ""
	}
}

// Authority es el formato "ROLE_*" que algunos backends devuelven en authorities.
func (r Role) Authority() string {
	if w := r.WireName(); w != "" {
		return "ROLE_" + w
	}
	return ""
}

func (r Role) Valid() bool {
	return r == RoleCitizen || r == RoleLawyer
}

// ParseRole acepta cualquiera de las formas conocidas:
// CITIZEN/LAWYER, USUARIO/ADVOGADO y ROLE_USUARIO/ROLE_ADVOGADO.
func ParseRole(s string) (Role, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	s = strings.TrimPrefix(s, "ROLE_")
	switch s {
	case "CITIZEN", "USUARIO":
		return RoleCitizen, nil
	case "LAWYER", "ADVOGADO":
		return RoleLawyer, nil
	default:
		return "", ErrUnknownRole
	}
}

// Identity es la identidad autenticada. No se modifica una vez emitida.
type Identity struct {
	ID    string
	Name  string
	Email string
	Role  Role
}

func (i Identity) IsCitizen() bool { return i.Role == RoleCitizen }

func (i Identity) IsLawyer() bool { return i.Role == RoleLawyer }

// LoginRoleSource junta las formas en las que un login puede traer el rol.
type LoginRoleSource struct {
	Role        string
	UserRole    string // user.role anidado
	Authorities []string
}

// ErrRoleUndetermined: el login respondió sin un rol reconocible.
var ErrRoleUndetermined = apperr.New(apperr.ErrAuthenticationRequired, "Não foi possível determinar o papel do usuário.")

// NormalizeLoginRole es el único punto donde se resuelve el rol de un login.
// Orden: rol plano, user.role, primera authority reconocible.
func NormalizeLoginRole(src LoginRoleSource) (Role, error) {
	for _, raw := range []string{src.Role, src.UserRole} {
		if strings.TrimSpace(raw) == "" {
			continue
		}
		if r, err := ParseRole(raw); err == nil {
			return r, nil
		}
	}
	for _, a := range src.Authorities {
		if !strings.HasPrefix(strings.ToUpper(strings.TrimSpace(a)), "ROLE_") {
			continue
		}
		if r, err := ParseRole(a); err == nil {
			return r, nil
		}
	}
	return "", ErrRoleUndetermined
}
