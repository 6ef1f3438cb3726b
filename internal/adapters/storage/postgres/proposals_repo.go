package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"advogados-solidarios/internal/domain/cases"
	"advogados-solidarios/internal/domain/proposals"
)

type ProposalsRepo struct {
	db *sql.DB
}

func NewProposalsRepo(db *sql.DB) *ProposalsRepo {
	return &ProposalsRepo{db: db}
}

const proposalColumns = `id, case_id, lawyer_id, lawyer_name, message, suggested_value, created_at, accepted, accepted_at`

func (r *ProposalsRepo) Create(ctx context.Context, p proposals.Proposal) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO proposals (id, case_id, lawyer_id, lawyer_name, message, suggested_value, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
	`,
		p.ID,
		p.CaseID,
		p.LawyerID,
		p.LawyerName,
		p.Message,
		toNullFloat(p.SuggestedValue),
		p.CreatedAt,
	)
	if isUniqueViolation(err) {
		return proposals.ErrDuplicate
	}
	return err
}

func (r *ProposalsRepo) GetByID(ctx context.Context, id string) (proposals.Proposal, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return proposals.Proposal{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = $1`, id)
	p, err := scanProposal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return proposals.Proposal{}, ErrNotFound
	}
	return p, err
}

func (r *ProposalsRepo) ListByCase(ctx context.Context, caseID string) ([]proposals.Proposal, error) {
	return r.query(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE case_id = $1 ORDER BY created_at ASC, id ASC`, caseID)
}

func (r *ProposalsRepo) ListByLawyer(ctx context.Context, lawyerID string) ([]proposals.Proposal, error) {
	return r.query(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE lawyer_id = $1 ORDER BY created_at ASC, id ASC`, lawyerID)
}

// CommitAcceptance: caso y propuesta en la misma transacción.
// El UPDATE del caso es condicional sobre el status leído por el motor;
// el índice proposals_one_accepted_idx cubre el resto.
func (r *ProposalsRepo) CommitAcceptance(ctx context.Context, a cases.Acceptance) (cases.Case, proposals.Proposal, error) {
	if !a.From.CanAdvanceTo(cases.StatusAccepted) {
		return cases.Case{}, proposals.Proposal{}, cases.ErrInvalidState
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return cases.Case{}, proposals.Proposal{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := scanCase(tx.QueryRowContext(ctx, `
		UPDATE cases
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
		RETURNING `+caseColumns,
		a.CaseID, string(a.From), string(cases.StatusAccepted), a.At,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return cases.Case{}, proposals.Proposal{}, cases.ErrInvalidState
	}
	if err != nil {
		return cases.Case{}, proposals.Proposal{}, err
	}

	p, err := scanProposal(tx.QueryRowContext(ctx, `
		UPDATE proposals
		SET accepted = TRUE, accepted_at = $3
		WHERE id = $1 AND case_id = $2 AND NOT accepted
		RETURNING `+proposalColumns,
		a.ProposalID, a.CaseID, a.At,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return cases.Case{}, proposals.Proposal{}, proposals.ErrProposalNotFound
	}
	if isUniqueViolation(err) {
		return cases.Case{}, proposals.Proposal{}, cases.ErrInvalidState
	}
	if err != nil {
		return cases.Case{}, proposals.Proposal{}, err
	}

	if err := tx.Commit(); err != nil {
		return cases.Case{}, proposals.Proposal{}, fmt.Errorf("commit: %w", err)
	}
	return c, p, nil
}

func (r *ProposalsRepo) query(ctx context.Context, q string, args ...any) ([]proposals.Proposal, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]proposals.Proposal, 0)
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanProposal(s scanner) (proposals.Proposal, error) {
	var p proposals.Proposal
	var value sql.NullFloat64
	var acceptedAt sql.NullTime
	if err := s.Scan(
		&p.ID,
		&p.CaseID,
		&p.LawyerID,
		&p.LawyerName,
		&p.Message,
		&value,
		&p.CreatedAt,
		&p.Accepted,
		&acceptedAt,
	); err != nil {
		return proposals.Proposal{}, err
	}
	if value.Valid {
		v := value.Float64
		p.SuggestedValue = &v
	}
	if acceptedAt.Valid {
		t := acceptedAt.Time
		p.AcceptedAt = &t
	}
	return p, nil
}

func toNullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}
