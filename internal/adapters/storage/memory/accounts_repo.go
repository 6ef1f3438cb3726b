package memory

import (
	"context"
	"errors"
	"strings"

	"advogados-solidarios/internal/domain/accounts"
)

type accountRepo struct {
	s *Store
}

func (r *accountRepo) Create(ctx context.Context, a accounts.Account) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if strings.TrimSpace(a.ID) == "" {
		return errors.New("account id required")
	}
	for _, existing := range r.s.accounts {
		if strings.EqualFold(existing.Email, a.Email) {
			return accounts.ErrEmailTaken
		}
	}
	r.s.accounts[a.ID] = a
	return nil
}

func (r *accountRepo) GetByID(ctx context.Context, id string) (accounts.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	a, ok := r.s.accounts[id]
	if !ok {
		return accounts.Account{}, ErrNotFound
	}
	return a, nil
}

func (r *accountRepo) GetByEmail(ctx context.Context, email string) (accounts.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, a := range r.s.accounts {
		if strings.EqualFold(a.Email, email) {
			return a, nil
		}
	}
	return accounts.Account{}, ErrNotFound
}
