package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kicklab/challenge-api/internal/domain"
)

// UsersRepository mirrors identity-provider users for display purposes.
type UsersRepository struct {
	pool *pgxpool.Pool
}

// Upsert records a user's latest display name as seen in a verified token.
func (r *UsersRepository) Upsert(ctx context.Context, id, displayName string) (domain.User, error) {
	const query = `
        INSERT INTO users (id, display_name)
        VALUES ($1,$2)
        ON CONFLICT (id)
        DO UPDATE SET display_name = EXCLUDED.display_name
        RETURNING id, display_name, created_at
    `
	var user domain.User
	err := r.pool.QueryRow(ctx, query, id, displayName).Scan(
		&user.ID, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

// Get fetches a user by identifier.
func (r *UsersRepository) Get(ctx context.Context, id string) (domain.User, error) {
	const query = `SELECT id, display_name, created_at FROM users WHERE id = $1`
	var user domain.User
	err := r.pool.QueryRow(ctx, query, id).Scan(&user.ID, &user.DisplayName, &user.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return domain.User{}, ErrNotFound
		}
		return domain.User{}, err
	}
	return user, nil
}
