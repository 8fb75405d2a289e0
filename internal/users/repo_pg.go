package users

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// GetOrCreateByEmail upserts on the unique email so concurrent first logins converge on one row.
func (r *PGRepo) GetOrCreateByEmail(ctx context.Context, candidate User) (User, error) {
	const query = `
INSERT INTO users (id, email, username, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)
ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
RETURNING id, email, username, created_at, updated_at`

	var u User
	err := r.DB.QueryRowContext(ctx, query,
		candidate.ID,
		candidate.Email,
		candidate.Username,
		candidate.CreatedAt,
	).Scan(&u.ID, &u.Email, &u.Username, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return User{}, err
	}
	return u, nil
}

func (r *PGRepo) GetByID(ctx context.Context, id string) (User, error) {
	const query = `
SELECT id, email, username, created_at, updated_at
FROM users
WHERE id = $1`

	var u User
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Email, &u.Username, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return User{}, ErrNotFound
	}
	if err != nil {
		return User{}, err
	}
	return u, nil
}
