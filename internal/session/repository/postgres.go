package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-access-control/backend/internal/session/domain"
	"campus-access-control/backend/internal/transition"
)

type PostgresRepository struct {
	db      *sql.DB
	mutator *transition.Mutator
}

// NewPostgresRepository returns a guard session repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, mutator: transition.New(db)}
}

const sessionColumns = `id, guard_id, guard_name, checkpoint_id, device_info, started_at, last_activity_at, active, ended_at`

// GetByToken returns the session for token, or nil if not found.
// It returns an error only for database failures, not for missing rows.
func (r *PostgresRepository) GetByToken(ctx context.Context, token string) (*domain.GuardSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM guard_sessions WHERE id = $1`, token)
	return scanSession(row)
}

// ActiveByCheckpoint returns the active session at the checkpoint, or nil if the checkpoint is unowned.
func (r *PostgresRepository) ActiveByCheckpoint(ctx context.Context, checkpointID string) (*domain.GuardSession, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+sessionColumns+` FROM guard_sessions WHERE checkpoint_id = $1 AND active`, checkpointID)
	return scanSession(row)
}

// ListActive returns all active sessions. Snapshot semantics; no ordering guarantee.
func (r *PostgresRepository) ListActive(ctx context.Context) ([]*domain.GuardSession, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+sessionColumns+` FROM guard_sessions WHERE active`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.GuardSession
	for rows.Next() {
		s, err := scanSessionRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// CreateActive inserts the session as active. The partial unique index on
// (checkpoint_id) WHERE active arbitrates concurrent starts; the loser gets Conflict.
func (r *PostgresRepository) CreateActive(ctx context.Context, s *domain.GuardSession) (transition.Outcome, error) {
	return r.mutator.InsertGuarded(ctx,
		`INSERT INTO guard_sessions (id, guard_id, guard_name, checkpoint_id, device_info, started_at, last_activity_at, active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE)`,
		s.ID, s.GuardID, s.GuardName, s.CheckpointID, nullString(s.DeviceInfo), s.StartedAt, s.LastActivityAt)
}

// Touch refreshes last_activity_at only while the session is still active.
func (r *PostgresRepository) Touch(ctx context.Context, token string, at time.Time) (transition.Outcome, error) {
	return r.mutator.Update(ctx, transition.UpdateSpec{
		Update:     `UPDATE guard_sessions SET last_activity_at = $2 WHERE id = $1 AND active`,
		UpdateArgs: []any{token, at},
		Exists:     `SELECT EXISTS(SELECT 1 FROM guard_sessions WHERE id = $1)`,
		ExistsArgs: []any{token},
	})
}

// Close flips the session inactive only if it is still active, so a repeated
// close observes Conflict rather than rewriting ended_at.
func (r *PostgresRepository) Close(ctx context.Context, token string, at time.Time) (transition.Outcome, error) {
	return r.mutator.Update(ctx, transition.UpdateSpec{
		Update:     `UPDATE guard_sessions SET active = FALSE, ended_at = $2 WHERE id = $1 AND active`,
		UpdateArgs: []any{token, at},
		Exists:     `SELECT EXISTS(SELECT 1 FROM guard_sessions WHERE id = $1)`,
		ExistsArgs: []any{token},
	})
}

// CloseAllByGuard closes every active session for the guard. Returns the count closed.
func (r *PostgresRepository) CloseAllByGuard(ctx context.Context, guardID string, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE guard_sessions SET active = FALSE, ended_at = $2 WHERE guard_id = $1 AND active`,
		guardID, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CloseStale closes active sessions whose last activity is before cutoff. Used by the sweeper.
func (r *PostgresRepository) CloseStale(ctx context.Context, cutoff, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE guard_sessions SET active = FALSE, ended_at = $2 WHERE active AND last_activity_at < $1`,
		cutoff, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSession(row *sql.Row) (*domain.GuardSession, error) {
	s, err := scanSessionRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return s, nil
}

func scanSessionRows(row rowScanner) (*domain.GuardSession, error) {
	var s domain.GuardSession
	var device sql.NullString
	var ended sql.NullTime
	if err := row.Scan(&s.ID, &s.GuardID, &s.GuardName, &s.CheckpointID, &device,
		&s.StartedAt, &s.LastActivityAt, &s.Active, &ended); err != nil {
		return nil, err
	}
	if device.Valid {
		s.DeviceInfo = device.String
	}
	if ended.Valid {
		s.EndedAt = &ended.Time
	}
	return &s, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
