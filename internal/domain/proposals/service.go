package proposals

import (
	"context"
	"errors"
	"math"
	"strconv"
	"strings"
	"time"

	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/fields"
	"advogados-solidarios/internal/platform/logger"
	"advogados-solidarios/internal/platform/metrics"

	"github.com/google/uuid"
)

var (
	ErrUnauthenticated  = apperr.New(apperr.ErrAuthenticationRequired, "Faça login para enviar proposta.")
	ErrPermissionDenied = apperr.New(apperr.ErrPermissionDenied, "Você não tem permissão para esta ação.")
	ErrNotFound         = apperr.New(apperr.ErrNotFound, "Proposta não encontrada.")
	ErrDuplicate        = apperr.New(apperr.ErrConflict, "Você já enviou uma proposta para este caso.")
	ErrCaseClosed       = apperr.New(apperr.ErrInvalidState, "Este caso não aceita novas propostas.")
	// ErrProposalNotFound: aceptar algo que no es propuesta del caso es un estado inválido.
	ErrProposalNotFound = apperr.New(apperr.ErrInvalidState, "Proposta não encontrada para este caso.")
)

const valueField = "valorSugerido"

// Service es el registro de propuestas. Las reglas de estado y permisos
// del caso las decide cases.Service; acá se aplican.
type Service struct {
	repo    Repository
	cases   *cases.Service
	now     func() time.Time
	log     logger.Logger
	metrics *metrics.Metrics
}

func NewService(repo Repository, casesSvc *cases.Service, log logger.Logger, m *metrics.Metrics) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{
		repo:    repo,
		cases:   casesSvc,
		now:     time.Now,
		log:     log.With(map[string]any{"module": "proposals"}),
		metrics: m,
	}
}

type SubmitInput struct {
	CaseID         string
	Message        string
	SuggestedValue *float64
}

func (s *Service) Submit(ctx context.Context, actor identity.Identity, in SubmitInput) (Proposal, error) {
	if strings.TrimSpace(actor.ID) == "" {
		return Proposal{}, ErrUnauthenticated
	}
	if !actor.IsLawyer() {
		s.metrics.Proposal("submit", "denied")
		return Proposal{}, ErrPermissionDenied
	}

	msg, err := fields.ProposalMessage.Normalize(in.Message)
	if err != nil {
		return Proposal{}, err
	}
	if err := ValidateValue(in.SuggestedValue); err != nil {
		return Proposal{}, err
	}

	c, err := s.cases.GetByID(ctx, in.CaseID)
	if err != nil {
		return Proposal{}, err
	}
	if !c.Status.AcceptsProposals() {
		return Proposal{}, ErrCaseClosed
	}

	p := Proposal{
		ID:             uuid.NewString(),
		CaseID:         c.ID,
		LawyerID:       actor.ID,
		LawyerName:     actor.Name,
		Message:        msg,
		SuggestedValue: in.SuggestedValue,
		CreatedAt:      s.now(),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		if errors.Is(err, ErrDuplicate) {
			s.metrics.Proposal("submit", "duplicate")
		}
		return Proposal{}, err
	}
	s.metrics.Proposal("submit", "ok")

	// La propuesta ya está guardada: si la notificación falla, el caso queda
	// OPEN y Accept sigue funcionando desde OPEN.
	if _, err := s.cases.ReceiveProposal(ctx, c.ID); err != nil {
		s.log.Warn("receive proposal notification failed", map[string]any{
			"case_id": c.ID, "proposal_id": p.ID, "err": err,
		})
	}

	s.log.Info("proposal submitted", map[string]any{"case_id": c.ID, "proposal_id": p.ID, "lawyer_id": actor.ID})
	return p, nil
}

// ListForCase: solo el cidadão dueño del caso ve las propuestas.
// Un advogado nunca ve las propuestas de la competencia.
func (s *Service) ListForCase(ctx context.Context, caseID string, requester identity.Identity) ([]Proposal, error) {
	if strings.TrimSpace(requester.ID) == "" {
		return nil, ErrUnauthenticated
	}

	c, err := s.cases.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	if requester.ID != c.OwnerID || !requester.IsCitizen() {
		return nil, ErrPermissionDenied
	}

	return s.repo.ListByCase(ctx, c.ID)
}

// Accept delega permisos y estado al motor de casos y confirma
// propuesta + caso juntos (o nada).
func (s *Service) Accept(ctx context.Context, caseID, proposalID string, requester identity.Identity) (cases.Case, Proposal, error) {
	a, err := s.cases.AcceptProposal(ctx, caseID, proposalID, requester)
	if err != nil {
		s.metrics.Proposal("accept", "rejected")
		return cases.Case{}, Proposal{}, err
	}

	p, err := s.repo.GetByID(ctx, a.ProposalID)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return cases.Case{}, Proposal{}, err
	}
	if err != nil || p.CaseID != a.CaseID {
		s.metrics.Proposal("accept", "rejected")
		return cases.Case{}, Proposal{}, ErrProposalNotFound
	}

	c, accepted, err := s.repo.CommitAcceptance(ctx, a)
	if err != nil {
		s.metrics.Proposal("accept", "conflict")
		return cases.Case{}, Proposal{}, err
	}

	s.metrics.Proposal("accept", "ok")
	s.cases.Accepted(a)
	return c, accepted, nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Proposal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Proposal{}, ErrNotFound
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Proposal{}, ErrNotFound
	}
	return p, nil
}

// ListByLawyer alimenta el histórico del advogado.
func (s *Service) ListByLawyer(ctx context.Context, lawyerID string) ([]Proposal, error) {
	lawyerID = strings.TrimSpace(lawyerID)
	if lawyerID == "" {
		return nil, ErrUnauthenticated
	}
	return s.repo.ListByLawyer(ctx, lawyerID)
}

// ValidateValue: opcional, numérico finito y no negativo.
func ValidateValue(v *float64) error {
	if v == nil {
		return nil
	}
	if math.IsNaN(*v) || math.IsInf(*v, 0) {
		return fields.Invalid(valueField, "Valor deve ser numérico.")
	}
	if *v < 0 {
		return fields.Invalid(valueField, "Valor não pode ser negativo.")
	}
	return nil
}

// ParseValue interpreta el valor tal como llega de un input de texto.
// Vacío => sin valor. Acepta coma decimal.
func ParseValue(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	f, err := strconv.ParseFloat(strings.ReplaceAll(raw, ",", "."), 64)
	if err != nil {
		return nil, fields.Invalid(valueField, "Valor deve ser numérico.")
	}
	if err := ValidateValue(&f); err != nil {
		return nil, err
	}
	return &f, nil
}
