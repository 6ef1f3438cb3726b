package accounts

import (
	"context"
	"errors"
	"strings"
	"time"

	"advogados-solidarios/internal/domain/identity"
	"advogados-solidarios/internal/platform/apperr"
	"advogados-solidarios/internal/platform/fields"
	"advogados-solidarios/internal/platform/logger"
	"advogados-solidarios/internal/platform/metrics"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = apperr.New(apperr.ErrConflict, "E-mail já cadastrado.")
	ErrInvalidCredentials = apperr.New(apperr.ErrAuthenticationRequired, "E-mail ou senha inválidos.")
	ErrNotFound           = apperr.New(apperr.ErrNotFound, "Usuário não encontrado.")
)

type Service struct {
	repo    Repository
	now     func() time.Time
	cost    int
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
		cost:    bcrypt.DefaultCost,
		log:     log.With(map[string]any{"module": "accounts"}),
		metrics: m,
	}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	// OAB se ignora para cidadãos.
	OAB string
}

func (s *Service) RegisterCitizen(ctx context.Context, in RegisterInput) (Account, error) {
	return s.register(ctx, identity.RoleCitizen, in)
}

func (s *Service) RegisterLawyer(ctx context.Context, in RegisterInput) (Account, error) {
	return s.register(ctx, identity.RoleLawyer, in)
}

func (s *Service) register(ctx context.Context, role identity.Role, in RegisterInput) (Account, error) {
	name, err := fields.Name.Normalize(in.Name)
	if err != nil {
		return Account{}, err
	}
	email, err := fields.NormalizeEmail(in.Email)
	if err != nil {
		return Account{}, err
	}
	password, err := fields.NormalizePassword(in.Password)
	if err != nil {
		return Account{}, err
	}

	var oab string
	if role == identity.RoleLawyer {
		if oab, err = fields.NormalizeOAB(in.OAB); err != nil {
			return Account{}, err
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return Account{}, err
	}

	a := Account{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		OAB:          oab,
		CreatedAt:    s.now(),
	}
	if err := s.repo.Create(ctx, a); err != nil {
		return Account{}, err
	}

	s.log.Info("account registered", map[string]any{"account_id": a.ID, "role": string(role)})
	return a, nil
}

// Authenticate no distingue "no existe" de "contraseña errada".
// Email y contraseña se recortan igual que en el registro.
func (s *Service) Authenticate(ctx context.Context, email, password string) (identity.Identity, error) {
	email = strings.ToLower(fields.Email.Clip(strings.TrimSpace(email)))
	password = fields.Password.Clip(password)
	if email == "" || password == "" {
		s.metrics.Login("invalid")
		return identity.Identity{}, ErrInvalidCredentials
	}

	a, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			s.metrics.Login("invalid")
			return identity.Identity{}, ErrInvalidCredentials
		}
		return identity.Identity{}, err
	}

	if err := bcrypt.CompareHashAndPassword(a.PasswordHash, []byte(password)); err != nil {
		s.metrics.Login("invalid")
		return identity.Identity{}, ErrInvalidCredentials
	}

	s.metrics.Login("ok")
	return a.Identity(), nil
}

func (s *Service) GetByID(ctx context.Context, id string) (Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Account{}, ErrNotFound
	}
	a, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return Account{}, ErrNotFound
		}
		return Account{}, err
	}
	return a, nil
}
