package gate

import (
	"sync"

	"advogados-solidarios/internal/client/session"
)

// Guard recalcula la decisión cuando cambia la sesión o la ruta.
// Solo vale la última decisión: no hay cola de redirects.
type Guard struct {
	store  *session.Store
	routes Routes

	mu       sync.Mutex
	route    string
	decision Decision
	gen      uint64

	// deliverMu ordena las entregas a onDecision.
	deliverMu  sync.Mutex
	delivered  uint64
	onDecision func(route string, d Decision)

	unsubscribe func()
}

// NewGuard se suscribe al Store. onDecision puede ser nil; se llama en orden
// y nunca con una decisión más vieja que la última entregada. No debe
// llamar a Navigate de forma síncrona.
func NewGuard(store *session.Store, routes Routes, initialRoute string, onDecision func(route string, d Decision)) *Guard {
	if routes == nil {
		routes = DefaultRoutes
	}
	g := &Guard{
		store:      store,
		routes:     routes,
		route:      initialRoute,
		onDecision: onDecision,
	}
	// primero suscribirse: un cambio de sesión entre ambos pasos no se pierde
	g.unsubscribe = store.Subscribe(func(session.Snapshot) {
		g.recompute("", true)
	})
	g.recompute(initialRoute, false)
	return g
}

// Navigate cambia la ruta actual y devuelve la decisión para ella.
func (g *Guard) Navigate(route string) Decision {
	return g.recompute(route, false)
}

// Current devuelve la ruta y la última decisión calculada.
func (g *Guard) Current() (string, Decision) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.route, g.decision
}

func (g *Guard) Close() {
	if g.unsubscribe != nil {
		g.unsubscribe()
	}
}

// recompute lee la sesión dentro del lock: la decisión con gen más alto
// siempre es la evaluada con el estado más nuevo.
func (g *Guard) recompute(route string, keepRoute bool) Decision {
	g.mu.Lock()
	if keepRoute {
		route = g.route
	}
	d := Evaluate(g.routes.RuleFor(route), route, g.store.Snapshot())
	g.gen++
	gen := g.gen
	g.route = route
	g.decision = d
	g.mu.Unlock()

	g.deliver(gen, route, d)
	return d
}

func (g *Guard) deliver(gen uint64, route string, d Decision) {
	if g.onDecision == nil {
		return
	}
	g.deliverMu.Lock()
	defer g.deliverMu.Unlock()
	if gen <= g.delivered {
		return
	}
	g.delivered = gen
	g.onDecision(route, d)
}
