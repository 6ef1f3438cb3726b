// Package session es el estado de autenticación del cliente.
// Hay un Store por instancia de cliente; se crea en el arranque y se pasa
// explícitamente a quien lo necesite (gate, api).
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/platform/logger"
)

type LoadState int

const (
	// StateRestoring: todavía no se sabe si hay sesión. No decidir nada.
	StateRestoring LoadState = iota
	StateReady
)

func (s LoadState) String() string {
	if s == StateReady {
		return "READY"
	}
	return "RESTORING"
}

// Snapshot es una lectura consistente del Store.
type Snapshot struct {
	Identity   *identity.Identity
	Credential string
	State      LoadState
}

func (s Snapshot) Authenticated() bool { return s.Identity != nil }

func (s Snapshot) Restoring() bool { return s.State == StateRestoring }

var (
	ErrInvalidLogin = errors.New("session: credential and identity required")
	// ErrCredentialRejected lo devuelve un Validator cuando el servidor
	// rechazó la credencial (no por fallas de red).
	ErrCredentialRejected = errors.New("session: credential rejected")
	ErrClosed             = errors.New("session: store closed")
)

// Validator confirma la credencial persistida (p.ej. GET /me).
type Validator func(ctx context.Context, credential string) (identity.Identity, error)

type Option func(*Store)

func WithValidator(v Validator) Option {
	return func(s *Store) { s.validator = v }
}

func WithLogger(l logger.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

type Store struct {
	// writeMu serializa mutación + notificación: los observers ven los
	// cambios en el orden en que ocurrieron.
	writeMu sync.Mutex

	mu     sync.RWMutex
	snap   Snapshot
	gen    uint64
	subs   map[int]func(Snapshot)
	order  []int
	nextID int
	closed bool

	persister Persister
	validator Validator
	log       logger.Logger

	cancelRestore context.CancelFunc
	wg            sync.WaitGroup
}

// New arranca en StateRestoring hasta que Restore o Login resuelvan.
func New(p Persister, opts ...Option) *Store {
	if p == nil {
		p = NewMemoryPersister()
	}
	s := &Store{
		snap:      Snapshot{State: StateRestoring},
		subs:      make(map[int]func(Snapshot)),
		persister: p,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With(map[string]any{"module": "session"})
	return s
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return copySnap(s.snap)
}

// Subscribe registra un observer. Se llama de forma síncrona, antes de que
// retorne la operación que cambió el estado. No debe mutar el Store.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.order = append(s.order, id)

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, id)
		for i, v := range s.order {
			if v == id {
				s.order = append(s.order[:i], s.order[i+1:]...)
				break
			}
		}
	}
}

// Restore carga la credencial persistida en segundo plano y retorna enseguida.
// Un Login/Logout que ocurra mientras tanto gana: el resultado tardío se descarta.
func (s *Store) Restore(ctx context.Context) {
	s.writeMu.Lock()
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		s.writeMu.Unlock()
		return
	}
	if s.cancelRestore != nil {
		s.cancelRestore()
	}
	ctx, cancel := context.WithCancel(ctx)
	s.cancelRestore = cancel
	s.gen++
	gen := s.gen
	changed := s.snap.State != StateRestoring
	s.snap.State = StateRestoring
	snap := copySnap(s.snap)
	s.mu.Unlock()

	if changed {
		s.notify(snap)
	}
	s.writeMu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer cancel()
		s.restore(ctx, gen)
	}()
}

func (s *Store) restore(ctx context.Context, gen uint64) {
	next := Snapshot{State: StateReady}

	persisted, ok, err := s.persister.Load(ctx)
	switch {
	case err != nil:
		s.log.Warn("restore: load failed", map[string]any{"err": err})
	case ok:
		who, valid := s.validate(ctx, persisted)
		if valid {
			next.Identity = &who
			next.Credential = persisted.Credential
		}
	}

	s.commit(gen, next, func() {
		if next.Identity == nil && ok {
			if err := s.persister.Clear(context.WithoutCancel(ctx)); err != nil {
				s.log.Warn("restore: clear failed", map[string]any{"err": err})
			}
		}
	})
}

// validate: sin Validator se confía en la identidad persistida.
// Si el servidor no responde se mantiene la identidad en caché.
func (s *Store) validate(ctx context.Context, p Persisted) (identity.Identity, bool) {
	if strings.TrimSpace(p.Credential) == "" || !p.Identity.Role.Valid() {
		return identity.Identity{}, false
	}
	if s.validator == nil {
		return p.Identity, true
	}

	who, err := s.validator(ctx, p.Credential)
	switch {
	case err == nil:
		return who, true
	case errors.Is(err, ErrCredentialRejected):
		s.log.Info("restore: credential rejected", nil)
		return identity.Identity{}, false
	default:
		s.log.Warn("restore: validation unavailable, using cached identity", map[string]any{"err": err})
		return p.Identity, true
	}
}

// commit aplica el resultado de restore solo si nadie cambió la sesión.
func (s *Store) commit(gen uint64, next Snapshot, onApplied func()) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed || s.gen != gen {
		s.mu.Unlock()
		return
	}
	s.snap = next
	snap := copySnap(s.snap)
	s.mu.Unlock()

	onApplied()
	s.notify(snap)
}

// Login reemplaza la sesión de forma atómica y la persiste.
func (s *Store) Login(ctx context.Context, credential string, who identity.Identity) error {
	credential = strings.TrimSpace(credential)
	if credential == "" || strings.TrimSpace(who.ID) == "" || !who.Role.Valid() {
		return ErrInvalidLogin
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.gen++
	s.snap = Snapshot{Identity: &who, Credential: credential, State: StateReady}
	snap := copySnap(s.snap)
	s.mu.Unlock()

	if err := s.persister.Save(ctx, Persisted{Credential: credential, Identity: who}); err != nil {
		// la sesión sigue viva en memoria; solo no sobrevive a un reinicio
		s.log.Warn("login: persist failed", map[string]any{"err": err})
	}

	s.notify(snap)
	return nil
}

// Logout limpia sesión y credencial persistida. Idempotente.
func (s *Store) Logout(ctx context.Context) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.gen++
	changed := s.snap.Identity != nil || s.snap.State != StateReady
	s.snap = Snapshot{State: StateReady}
	snap := copySnap(s.snap)
	s.mu.Unlock()

	if err := s.persister.Clear(ctx); err != nil {
		s.log.Warn("logout: clear failed", map[string]any{"err": err})
	}

	if changed {
		s.notify(snap)
	}
}

// Close cancela una restauración en curso y suelta a los observers.
func (s *Store) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	cancel := s.cancelRestore
	s.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	s.wg.Wait()

	s.mu.Lock()
	s.subs = map[int]func(Snapshot){}
	s.order = nil
	s.mu.Unlock()
}

// notify se llama con writeMu tomado y mu libre.
func (s *Store) notify(snap Snapshot) {
	s.mu.RLock()
	fns := make([]func(Snapshot), 0, len(s.order))
	for _, id := range s.order {
		fns = append(fns, s.subs[id])
	}
	s.mu.RUnlock()

	for _, fn := range fns {
		fn(copySnap(snap))
	}
}

func copySnap(s Snapshot) Snapshot {
	if s.Identity != nil {
		who := *s.Identity
		s.Identity = &who
	}
	return s
}
