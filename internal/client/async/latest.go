// Package async junta los guardas de concurrencia del cliente: respuestas
// viejas, orden por caso y envío único.
package async

import (
	"sync"
	"sync/atomic"
)

// Ticket identifica una petición lanzada con Latest.Begin.
type Ticket uint64

// Latest descarta respuestas que llegan después de una navegación o de una
// petición más nueva.
type Latest struct {
	mu  sync.Mutex
	cur uint64
}

func (l *Latest) Begin() Ticket {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.cur++
	return Ticket(l.cur)
}

// Invalidate se llama al salir de la pantalla.
func (l *Latest) Invalidate() {
	l.mu.Lock()
	l.cur++
	l.mu.Unlock()
}

func (l *Latest) Current(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return uint64(t) == l.cur
}

// Apply ejecuta fn solo si t sigue vigente. fn corre con el lock tomado, así
// que un Invalidate concurrente espera a que termine.
func (l *Latest) Apply(t Ticket, fn func()) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if uint64(t) != l.cur {
		return false
	}
	fn()
	return true
}

// InFlight es el equivalente a deshabilitar el botón de enviar.
type InFlight struct {
	busy atomic.Bool
}

func (f *InFlight) TryStart() bool { return f.busy.CompareAndSwap(false, true) }

func (f *InFlight) Done() { f.busy.Store(false) }

func (f *InFlight) Busy() bool { return f.busy.Load() }
