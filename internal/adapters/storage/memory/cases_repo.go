package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"advogados-solidarios/internal/domain/cases"
)

type caseRepo struct {
	s *Store
}

func (r *caseRepo) Create(ctx context.Context, c cases.Case) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(c.ID) == "" {
		return errors.New("case id required")
	}
	if _, exists := r.s.cases[c.ID]; exists {
		return errors.New("case already exists")
	}
	r.s.cases[c.ID] = c
	r.s.track(c.ID)
	return nil
}

func (r *caseRepo) GetByID(ctx context.Context, id string) (cases.Case, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.cases[id]
	if !ok {
		return cases.Case{}, ErrNotFound
	}
	return c, nil
}

func (r *caseRepo) ListByOwner(ctx context.Context, ownerID string) ([]cases.Case, error) {
	return r.list(func(c cases.Case) bool { return c.OwnerID == ownerID }), nil
}

func (r *caseRepo) ListByStatus(ctx context.Context, statuses []cases.Status) ([]cases.Case, error) {
	return r.list(func(c cases.Case) bool {
		for _, st := range statuses {
			if c.Status == st {
				return true
			}
		}
		return false
	}), nil
}

func (r *caseRepo) ListByIDs(ctx context.Context, ids []string) ([]cases.Case, error) {
	want := make(map[string]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	return r.list(func(c cases.Case) bool { return want[c.ID] }), nil
}

func (r *caseRepo) Advance(ctx context.Context, id string, from, to cases.Status, at time.Time) (cases.Case, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.cases[id]
	if !ok {
		return cases.Case{}, ErrNotFound
	}
	if c.Status != from || !from.CanAdvanceTo(to) {
		return cases.Case{}, cases.ErrInvalidState
	}
	c.Status = to
	c.UpdatedAt = at
	r.s.cases[id] = c
	return c, nil
}

// list filtra bajo RLock. Orden estable por created_at asc.
func (r *caseRepo) list(keep func(cases.Case) bool) []cases.Case {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]cases.Case, 0)
	for _, c := range r.s.cases {
		if keep(c) {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.before(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out
}
