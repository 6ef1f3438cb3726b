package cases

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/fields"
	"advogados-solidarios/internal/platform/logger"
	"advogados-solidarios/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated  = apperr.New(apperr.ErrAuthenticationRequired, "Autenticação necessária.")
	ErrNotFound         = apperr.New(apperr.ErrNotFound, "Caso não encontrado.")
	ErrPermissionDenied = apperr.New(apperr.ErrPermissionDenied, "Você não tem permissão para esta ação neste caso.")
	ErrInvalidState     = apperr.New(apperr.ErrInvalidState, "O caso não está em um estado que permita esta ação.")
)

type Service struct {
	repo    Repository
	now     func() time.Time
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo Repository, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		now:     time.Now,
		log:     log.With(map[string]any{"module": "cases"}),
		metrics: m,
	}
}

type SubmitInput struct {
	Title       string
	Description string
}

// Submit crea un caso OPEN. Título y descripción se recortan al máximo
// y luego se valida el mínimo, igual que en el formulario.
func (s *Service) Submit(ctx context.Context, owner identity.Identity, in SubmitInput) (Case, error) {
	if strings.TrimSpace(owner.ID) == "" {
		return Case{}, ErrUnauthenticated
	}
	if !owner.IsCitizen() {
		return Case{}, ErrPermissionDenied
	}

	title, err := fields.CaseTitle.Normalize(in.Title)
	if err != nil {
		return Case{}, err
	}
	description, err := fields.CaseDescription.Normalize(in.Description)
	if err != nil {
		return Case{}, err
	}

	now := s.now()
	c := Case{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		OwnerID:     owner.ID,
		OwnerName:   owner.Name,
		Status:      StatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, c); err != nil {
		return Case{}, err
	}

	s.metrics.CaseTransition(string(StatusOpen))
	s.log.Info("case submitted", map[string]any{"case_id": c.ID, "owner_id": c.OwnerID})
	return c, nil
}

// ReceiveProposal: OPEN -> HAS_PROPOSALS. En cualquier otro estado no hace nada.
func (s *Service) ReceiveProposal(ctx context.Context, caseID string) (Case, error) {
	c, err := s.GetByID(ctx, caseID)
	if err != nil {
		return Case{}, err
	}
	if c.Status != StatusOpen {
		return c, nil
	}

	updated, err := s.repo.Advance(ctx, c.ID, StatusOpen, StatusHasProposals, s.now())
	if errors.Is(err, ErrInvalidState) {
		// Otro request lo movió primero: idempotente.
		return s.GetByID(ctx, caseID)
	}
	if err != nil {
		return Case{}, err
	}

	s.metrics.CaseTransition(string(StatusHasProposals))
	s.log.Debug("case has proposals", map[string]any{"case_id": c.ID})
	return updated, nil
}

// AcceptProposal autoriza la aceptación; no persiste nada.
// El registro de propuestas confirma la Acceptance en una sola transacción.
func (s *Service) AcceptProposal(ctx context.Context, caseID, proposalID string, actor identity.Identity) (Acceptance, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return Acceptance{}, ErrUnauthenticated
	}

	c, err := s.GetByID(ctx, caseID)
	if err != nil {
		return Acceptance{}, err
	}

	if actor.ID != c.OwnerID || !actor.IsCitizen() {
		s.log.Warn("accept denied", map[string]any{"case_id": c.ID, "actor_id": actor.ID})
		return Acceptance{}, ErrPermissionDenied
	}
	if !c.Status.AcceptsProposals() {
		return Acceptance{}, ErrInvalidState
	}

	return Acceptance{
		CaseID:     c.ID,
		ProposalID: strings.TrimSpace(proposalID),
		From:       c.Status,
		At:         s.now(),
	}, nil
}

// Accepted registra la transición una vez confirmada.
func (s *Service) Accepted(a Acceptance) {
	s.metrics.CaseTransition(string(StatusAccepted))
	s.log.Info("proposal accepted", map[string]any{"case_id": a.CaseID, "proposal_id": a.ProposalID})
}

// Conclude: ACCEPTED -> CONCLUDED, solo el dueño.
func (s *Service) Conclude(ctx context.Context, caseID string, actor identity.Identity) (Case, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return Case{}, ErrUnauthenticated
	}

	c, err := s.GetByID(ctx, caseID)
	if err != nil {
		return Case{}, err
	}
	if actor.ID != c.OwnerID || !actor.IsCitizen() {
		return Case{}, ErrPermissionDenied
	}
	if c.Status != StatusAccepted {
		return Case{}, ErrInvalidState
	}

	updated, err := s.repo.Advance(ctx, c.ID, StatusAccepted, StatusConcluded, s.now())
	if err != nil {
		return Case{}, err
	}

	s.metrics.CaseTransition(string(StatusConcluded))
	s.log.Info("case concluded", map[string]any{"case_id": c.ID})
	return updated, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Case, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Case{}, ErrNotFound
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Case{}, ErrNotFound
		}
		return Case{}, err
	}
	return c, nil
}

// OwnerOf expone el dueño de un caso (lo usa proposals sin importar el repo).
func (s *Service) OwnerOf(ctx context.Context, caseID string) (string, error) {
	c, err := s.GetByID(ctx, caseID)
	if err != nil {
		return "", err
	}
	return c.OwnerID, nil
}

func (s *Service) ListByOwner(ctx context.Context, ownerID string) ([]Case, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

func (s *Service) ListByIDs(ctx context.Context, ids []string) ([]Case, error) {
	if len(ids) == 0 {
		return []Case{}, nil
	}
	return s.repo.ListByIDs(ctx, ids)
}

type ListFilter struct {
	// Query busca en título y descripción, sin distinguir mayúsculas.
	Query string
}

// ListOpen devuelve los casos que todavía aceptan propuestas, más nuevos primero.
func (s *Service) ListOpen(ctx context.Context, filter ListFilter) ([]Case, error) {
	items, err := s.repo.ListByStatus(ctx, []Status{StatusOpen, StatusHasProposals})
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(fields.Search.Clip(strings.TrimSpace(filter.Query)))
	out := make([]Case, 0, len(items))
	for _, c := range items {
		if q != "" &&
			!strings.Contains(strings.ToLower(c.Title), q) &&
			!strings.Contains(strings.ToLower(c.Description), q) {
			continue
		}
		out = append(out, c)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
