package policies

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const policyColumns = `id, is_active, custom_instructions, created_at, updated_at`

func (r *PGRepo) Active(ctx context.Context) (Policy, error) {
	query := `
SELECT ` + policyColumns + `
FROM analysis_policies
WHERE is_active
ORDER BY updated_at DESC, id DESC
LIMIT 1`
	var p Policy
	err := r.DB.QueryRowContext(ctx, query).Scan(&p.ID, &p.IsActive, &p.CustomInstructions, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Policy{}, ErrNotFound
	}
	if err != nil {
		return Policy{}, err
	}
	return p, nil
}

func (r *PGRepo) Create(ctx context.Context, p Policy) (Policy, error) {
	query := `
INSERT INTO analysis_policies (is_active, custom_instructions)
VALUES ($1, $2)
RETURNING ` + policyColumns
	var out Policy
	err := r.DB.QueryRowContext(ctx, query, p.IsActive, p.CustomInstructions).
		Scan(&out.ID, &out.IsActive, &out.CustomInstructions, &out.CreatedAt, &out.UpdatedAt)
	if err != nil {
		return Policy{}, err
	}
	return out, nil
}

func (r *PGRepo) SetActive(ctx context.Context, id int64, active bool) error {
	const query = `
UPDATE analysis_policies
SET is_active = $1, updated_at = now()
WHERE id = $2`
	res, err := r.DB.ExecContext(ctx, query, active, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PGRepo) List(ctx context.Context) ([]Policy, error) {
	query := `
SELECT ` + policyColumns + `
FROM analysis_policies
ORDER BY updated_at DESC, id DESC`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Policy
	for rows.Next() {
		var p Policy
		if err := rows.Scan(&p.ID, &p.IsActive, &p.CustomInstructions, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
