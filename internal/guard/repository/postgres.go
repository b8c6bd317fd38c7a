package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-access-control/backend/internal/guard/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a guard repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const guardColumns = `id, name, email, password_hash, is_admin, active, created_at`

// GetByID returns the guard for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.Guard, error) {
	return r.get(ctx, `SELECT `+guardColumns+` FROM guards WHERE id = $1`, id)
}

// GetByEmail returns the guard with the given email, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*domain.Guard, error) {
	return r.get(ctx, `SELECT `+guardColumns+` FROM guards WHERE email = $1`, email)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (*domain.Guard, error) {
	var g domain.Guard
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&g.ID, &g.Name, &g.Email, &g.PasswordHash, &g.IsAdmin, &g.Active, &g.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &g, nil
}

// Create persists the guard. The guard must have ID set; it is not assigned by this method.
func (r *PostgresRepository) Create(ctx context.Context, g *domain.Guard) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO guards (id, name, email, password_hash, is_admin, active, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		g.ID, g.Name, g.Email, g.PasswordHash, g.IsAdmin, g.Active, g.CreatedAt)
	return err
}

// SetActive updates the active flag for the guard.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE guards SET active = $2 WHERE id = $1`, id, active)
	return err
}
