package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"advogados-solidarios/internal/domain/cases"
)

type CasesRepo struct {
	db *sql.DB
}

func NewCasesRepo(db *sql.DB) *CasesRepo {
	return &CasesRepo{db: db}
}

const caseColumns = `id, title, description, owner_id, owner_name, status, created_at, updated_at`

func (r *CasesRepo) Create(ctx context.Context, c cases.Case) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO cases (`+caseColumns+`)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`,
		c.ID,
		c.Title,
		c.Description,
		c.OwnerID,
		c.OwnerName,
		string(c.Status),
		c.CreatedAt,
		c.UpdatedAt,
	)
	return err
}

func (r *CasesRepo) GetByID(ctx context.Context, id string) (cases.Case, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return cases.Case{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = $1`, id)
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		return cases.Case{}, ErrNotFound
	}
	return c, err
}

func (r *CasesRepo) ListByOwner(ctx context.Context, ownerID string) ([]cases.Case, error) {
	return r.query(ctx, `SELECT `+caseColumns+` FROM cases WHERE owner_id = $1 ORDER BY created_at ASC, id ASC`, ownerID)
}

func (r *CasesRepo) ListByStatus(ctx context.Context, statuses []cases.Status) ([]cases.Case, error) {
	raw := make([]string, 0, len(statuses))
	for _, st := range statuses {
		raw = append(raw, string(st))
	}
	return r.query(ctx, `SELECT `+caseColumns+` FROM cases WHERE status = ANY($1) ORDER BY created_at ASC, id ASC`, raw)
}

func (r *CasesRepo) ListByIDs(ctx context.Context, ids []string) ([]cases.Case, error) {
	if len(ids) == 0 {
		return []cases.Case{}, nil
	}
	return r.query(ctx, `SELECT `+caseColumns+` FROM cases WHERE id = ANY($1) ORDER BY created_at ASC, id ASC`, ids)
}

// Advance es un UPDATE condicional: solo gana quien todavía ve "from".
func (r *CasesRepo) Advance(ctx context.Context, id string, from, to cases.Status, at time.Time) (cases.Case, error) {
	if !from.CanAdvanceTo(to) {
		return cases.Case{}, cases.ErrInvalidState
	}

	row := r.db.QueryRowContext(ctx, `
		UPDATE cases
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING `+caseColumns,
		id, string(from), string(to), at,
	)
	c, err := scanCase(row)
	if errors.Is(err, sql.ErrNoRows) {
		if _, getErr := r.GetByID(ctx, id); getErr != nil {
			return cases.Case{}, getErr
		}
		return cases.Case{}, cases.ErrInvalidState
	}
	return c, err
}

func (r *CasesRepo) query(ctx context.Context, q string, args ...any) ([]cases.Case, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]cases.Case, 0)
	for rows.Next() {
		c, err := scanCase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanCase(s scanner) (cases.Case, error) {
	var c cases.Case
	var status string
	if err := s.Scan(
		&c.ID,
		&c.Title,
		&c.Description,
		&c.OwnerID,
		&c.OwnerName,
		&status,
		&c.CreatedAt,
		&c.UpdatedAt,
	); err != nil {
		return cases.Case{}, err
	}
	c.Status = cases.Status(status)
	return c, nil
}
