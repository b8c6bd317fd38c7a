package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-access-control/backend/internal/audit/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns an audit log repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const auditColumns = `id, guard_id, action, resource, ip, metadata, created_at`

// GetByID returns the audit log for id, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*domain.AuditLog, error) {
	var a domain.AuditLog
	var guardID, metadata sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs WHERE id = $1`, id).
		Scan(&a.ID, &guardID, &a.Action, &a.Resource, &a.IP, &metadata, &a.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	a.GuardID = guardID.String
	a.Metadata = metadata.String
	return &a, nil
}

// List returns audit logs newest first, paginated by limit and offset.
func (r *PostgresRepository) List(ctx context.Context, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, err
	}
	return scanLogs(rows)
}

// ListByGuard returns audit logs for the given guard newest first, paginated by limit and offset.
func (r *PostgresRepository) ListByGuard(ctx context.Context, guardID string, limit, offset int32) ([]*domain.AuditLog, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_logs WHERE guard_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		guardID, limit, offset)
	if err != nil {
		return nil, err
	}
	return scanLogs(rows)
}

// Create persists the audit log to the database. The audit log must have ID set.
func (r *PostgresRepository) Create(ctx context.Context, a *domain.AuditLog) error {
	guardID := sql.NullString{String: a.GuardID, Valid: a.GuardID != ""}
	metadata := sql.NullString{String: a.Metadata, Valid: a.Metadata != ""}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO audit_logs (id, guard_id, action, resource, ip, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, guardID, a.Action, a.Resource, a.IP, metadata, a.CreatedAt)
	return err
}

func scanLogs(rows *sql.Rows) ([]*domain.AuditLog, error) {
	defer rows.Close()
	var out []*domain.AuditLog
	for rows.Next() {
		var a domain.AuditLog
		var guardID, metadata sql.NullString
		if err := rows.Scan(&a.ID, &guardID, &a.Action, &a.Resource, &a.IP, &metadata, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.GuardID = guardID.String
		a.Metadata = metadata.String
		out = append(out, &a)
	}
	return out, rows.Err()
}
