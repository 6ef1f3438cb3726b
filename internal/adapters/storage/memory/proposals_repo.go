package memory

import (
	"context"
	"errors"
	"sort"
	"strings"

	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/proposals"
)

type proposalRepo struct {
	s *Store
}

func (r *proposalRepo) Create(ctx context.Context, p proposals.Proposal) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(p.ID) == "" {
		return errors.New("proposal id required")
	}
	for _, existing := range r.s.proposals {
		if existing.CaseID == p.CaseID && existing.LawyerID == p.LawyerID {
			return proposals.ErrDuplicate
		}
	}
	r.s.proposals[p.ID] = p
	r.s.track(p.ID)
	return nil
}

func (r *proposalRepo) GetByID(ctx context.Context, id string) (proposals.Proposal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.proposals[id]
	if !ok {
		return proposals.Proposal{}, ErrNotFound
	}
	return p, nil
}

func (r *proposalRepo) ListByCase(ctx context.Context, caseID string) ([]proposals.Proposal, error) {
	return r.list(func(p proposals.Proposal) bool { return p.CaseID == caseID }), nil
}

func (r *proposalRepo) ListByLawyer(ctx context.Context, lawyerID string) ([]proposals.Proposal, error) {
	return r.list(func(p proposals.Proposal) bool { return p.LawyerID == lawyerID }), nil
}

func (r *proposalRepo) CommitAcceptance(ctx context.Context, a cases.Acceptance) (cases.Case, proposals.Proposal, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c, ok := r.s.cases[a.CaseID]
	if !ok {
		return cases.Case{}, proposals.Proposal{}, ErrNotFound
	}
	p, ok := r.s.proposals[a.ProposalID]
	if !ok || p.CaseID != c.ID {
		return cases.Case{}, proposals.Proposal{}, proposals.ErrProposalNotFound
	}

	if c.Status != a.From || !a.From.CanAdvanceTo(cases.StatusAccepted) {
		return cases.Case{}, proposals.Proposal{}, cases.ErrInvalidState
	}
	for _, other := range r.s.proposals {
		if other.CaseID == c.ID && other.Accepted {
			return cases.Case{}, proposals.Proposal{}, cases.ErrInvalidState
		}
	}

	at := a.At
	p.Accepted = true
	p.AcceptedAt = &at
	c.Status = cases.StatusAccepted
	c.UpdatedAt = at

	r.s.proposals[p.ID] = p
	r.s.cases[c.ID] = c
	return c, p, nil
}

func (r *proposalRepo) list(keep func(proposals.Proposal) bool) []proposals.Proposal {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]proposals.Proposal, 0)
	for _, p := range r.s.proposals {
		if keep(p) {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return r.s.before(out[i].ID, out[i].CreatedAt, out[j].ID, out[j].CreatedAt)
	})
	return out
}
