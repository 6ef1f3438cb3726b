package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"advogados-solidarios/internal/domain/accounts"
	"advogados-solidarios/internal/domain/identity"
)

type AccountsRepo struct {
	db *sql.DB
}

func NewAccountsRepo(db *sql.DB) *AccountsRepo {
	return &AccountsRepo{db: db}
}

const accountColumns = `id, name, email, password_hash, role, oab, created_at`

func (r *AccountsRepo) Create(ctx context.Context, a accounts.Account) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO accounts (`+accountColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		a.ID,
		a.Name,
		a.Email,
		a.PasswordHash,
		string(a.Role),
		a.OAB,
		a.CreatedAt,
	)
	if isUniqueViolation(err) {
		return accounts.ErrEmailTaken
	}
	return err
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (accounts.Account, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return accounts.Account{}, ErrNotFound
	}
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE id = $1`, id)
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (accounts.Account, error) {
	return r.get(ctx, `SELECT `+accountColumns+` FROM accounts WHERE lower(email) = lower($1)`, strings.TrimSpace(email))
}

func (r *AccountsRepo) get(ctx context.Context, q string, arg string) (accounts.Account, error) {
	var a accounts.Account
	var role string
	err := r.db.QueryRowContext(ctx, q, arg).Scan(
		&a.ID,
		&a.Name,
		&a.Email,
		&a.PasswordHash,
		&role,
		&a.OAB,
		&a.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return accounts.Account{}, ErrNotFound
	}
	if err != nil {
		return accounts.Account{}, err
	}
	a.Role = identity.Role(role)
	return a, nil
}
