package memory

import (
	"fmt"
	"sync"
	"time"

	"advogados-solidarios/internal/domain/accounts"
	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/proposals"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/ports/auth"
)

var ErrNotFound = fmt.Errorf("memory: %w", apperr.ErrNotFound)

// Store es el almacenamiento en memoria para dev y tests.
// Todos los repos comparten el mismo lock, así aceptar una propuesta
// (caso + propuesta) es atómico.
type Store struct {
	mu sync.RWMutex

	cases     map[string]cases.Case
	proposals map[string]proposals.Proposal
	accounts  map[string]accounts.Account
	sessions  map[string]sessionEntry

	// orden de inserción, desempata created_at iguales
	seq  map[string]uint64
	next uint64

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		cases:     make(map[string]cases.Case),
		proposals: make(map[string]proposals.Proposal),
		accounts:  make(map[string]accounts.Account),
		sessions:  make(map[string]sessionEntry),
		seq:       make(map[string]uint64),
		now:       time.Now,
	}
}

func (s *Store) Cases() cases.Repository { return &caseRepo{s: s} }

func (s *Store) Proposals() proposals.Repository { return &proposalRepo{s: s} }

func (s *Store) Accounts() accounts.Repository { return &accountRepo{s: s} }

func (s *Store) Sessions() auth.SessionStore { return &sessionRepo{s: s} }

// track registra el orden de inserción. Requiere el lock tomado.
func (s *Store) track(id string) {
	s.next++
	s.seq[id] = s.next
}

// before: created_at asc y, si empatan, orden de inserción.
func (s *Store) before(aID string, aAt time.Time, bID string, bAt time.Time) bool {
	if !aAt.Equal(bAt) {
		return aAt.Before(bAt)
	}
	return s.seq[aID] < s.seq[bID]
}
