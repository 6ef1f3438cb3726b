// Package gate decide si una ruta se puede mostrar con la sesión actual.
package gate

import (
	"slices"
	"strings"

	"advogados-solidarios/internal/client/session"
	"advogados-solidarios/internal/domain/identity"
)

const (
	LoginPath     = "/login"
	DashboardPath = "/dashboard"
)

type Kind int

const (
	Allow Kind = iota
	Redirect
	// Pending: la sesión se está restaurando, no decidir todavía.
	Pending
)

func (k Kind) String() string {
	switch k {
	case Allow:
		return "ALLOW"
	case Redirect:
		return "REDIRECT"
	case Pending:
		return "PENDING"
	default:
		return "UNKNOWN"
	}
}

type Decision struct {
	Kind   Kind
	Target string // solo para Redirect
}

// Rule es lo que exige una ruta.
type Rule struct {
	RequiredAuth bool
	// AllowedRoles vacío = cualquier rol autenticado.
	AllowedRoles []identity.Role
	// RedirectPath reemplaza /login como destino cuando falta sesión.
	RedirectPath string
}

// rutas de entrada: un usuario con sesión no vuelve a ellas
var authEntry = []string{"/login", "/register/user", "/register/lawyer"}

func IsAuthEntry(route string) bool {
	return slices.Contains(authEntry, normalize(route))
}

// Evaluate aplica las reglas en orden; la primera que corresponde decide.
func Evaluate(rule Rule, route string, snap session.Snapshot) Decision {
	if snap.Restoring() {
		return Decision{Kind: Pending}
	}

	if rule.RequiredAuth && !snap.Authenticated() {
		target := rule.RedirectPath
		if target == "" {
			target = LoginPath
		}
		return Decision{Kind: Redirect, Target: target}
	}

	if snap.Authenticated() && len(rule.AllowedRoles) > 0 &&
		!slices.Contains(rule.AllowedRoles, snap.Identity.Role) {
		return Decision{Kind: Redirect, Target: DashboardPath}
	}

	if !rule.RequiredAuth && snap.Authenticated() && IsAuthEntry(route) {
		return Decision{Kind: Redirect, Target: DashboardPath}
	}

	return Decision{Kind: Allow}
}

func normalize(route string) string {
	route = strings.TrimSpace(route)
	if i := strings.IndexAny(route, "?#"); i >= 0 {
		route = route[:i]
	}
	if route == "" {
		return "/"
	}
	if len(route) > 1 {
		route = strings.TrimRight(route, "/")
	}
	return route
}
