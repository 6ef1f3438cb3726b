package history

import (
	"context"
	"strings"

	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/domain/proposals"
	"advogados-solidarios/internal/platform/apperr"
)

var ErrUnauthenticated = apperr.New(apperr.ErrAuthenticationRequired, "Faça login para ver o histórico.")

type Service struct {
	cases     *cases.Service
	proposals *proposals.Service
}

func NewService(casesSvc *cases.Service, proposalsSvc *proposals.Service) *Service {
	return &Service{cases: casesSvc, proposals: proposalsSvc}
}

// ForViewer arma el histórico del viewer con el filtro de status aplicado.
func (s *Service) ForViewer(ctx context.Context, viewer identity.Identity, status string) ([]Row, error) {
	if strings.TrimSpace(viewer.ID) == "" {
		return nil, ErrUnauthenticated
	}

	var (
		items      []cases.Case
		proposedOn []string
		err        error
	)

	switch {
	case viewer.IsCitizen():
		items, err = s.cases.ListByOwner(ctx, viewer.ID)
	case viewer.IsLawyer():
		var mine []proposals.Proposal
		mine, err = s.proposals.ListByLawyer(ctx, viewer.ID)
		if err != nil {
			return nil, err
		}
		for _, p := range mine {
			proposedOn = append(proposedOn, p.CaseID)
		}
		items, err = s.cases.ListByIDs(ctx, proposedOn)
	}
	if err != nil {
		return nil, err
	}

	return Collect(Filter(Project(items, viewer, proposedOn), status)), nil
}
