package gate

import (
	"strings"

	"advogados-solidarios/internal/domain/identity"
)

type Route struct {
	// Pattern admite segmentos {param}, p.ej. /cases/{id}.
	Pattern string
	Rule    Rule
}

type Routes []Route

var (
	public      = Rule{}
	authed      = Rule{RequiredAuth: true}
	lawyerOnly  = Rule{RequiredAuth: true, AllowedRoles: []identity.Role{identity.RoleLawyer}}
	citizenOnly = Rule{RequiredAuth: true, AllowedRoles: []identity.Role{identity.RoleCitizen}}
)

// DefaultRoutes es la tabla de pantallas del cliente.
var DefaultRoutes = Routes{
	{Pattern: "/", Rule: public},
	{Pattern: "/login", Rule: public},
	{Pattern: "/register/user", Rule: public},
	{Pattern: "/register/lawyer", Rule: public},
	{Pattern: "/dashboard", Rule: authed},
	{Pattern: "/cases", Rule: lawyerOnly},
	{Pattern: "/cases/{id}", Rule: lawyerOnly},
	{Pattern: "/submit-case", Rule: citizenOnly},
	{Pattern: "/causas/historico", Rule: authed},
}

// RuleFor busca la regla de la ruta. Una ruta desconocida exige sesión.
func (rs Routes) RuleFor(route string) Rule {
	route = normalize(route)
	for _, r := range rs {
		if match(r.Pattern, route) {
			return r.Rule
		}
	}
	return authed
}

func match(pattern, route string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	rs := strings.Split(strings.Trim(route, "/"), "/")
	if len(ps) != len(rs) {
		return false
	}
	for i := range ps {
		if strings.HasPrefix(ps[i], "{") && strings.HasSuffix(ps[i], "}") {
			if rs[i] == "" {
				return false
			}
			continue
		}
		if ps[i] != rs[i] {
			return false
		}
	}
	return true
}
