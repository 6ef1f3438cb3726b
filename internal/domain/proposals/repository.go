package proposals

import (
	"context"

	"advogados-solidarios/internal/domain/cases"
)

type Repository interface {
	// Create devuelve ErrDuplicate si el advogado ya tiene propuesta en el caso.
	Create(ctx context.Context, p Proposal) error
	GetByID(ctx context.Context, id string) (Proposal, error)
	// ListByCase devuelve en orden de creación.
	ListByCase(ctx context.Context, caseID string) ([]Proposal, error)
	ListByLawyer(ctx context.Context, lawyerID string) ([]Proposal, error)

	// CommitAcceptance marca la propuesta como aceptada y mueve el caso a ACCEPTED
	// en una sola transacción. Si el caso ya no está en a.From, o ya hay una
	// propuesta aceptada, no cambia nada y devuelve cases.ErrInvalidState.
	CommitAcceptance(ctx context.Context, a cases.Acceptance) (cases.Case, Proposal, error)
}
