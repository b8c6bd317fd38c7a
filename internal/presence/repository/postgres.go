package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"campus-access-control/backend/internal/presence/domain"
	"campus-access-control/backend/internal/transition"
)

type PostgresRepository struct {
	db      *sql.DB
	mutator *transition.Mutator
}

// NewPostgresRepository returns a presence repository that uses the given db for persistence.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db, mutator: transition.New(db)}
}

const presenceColumns = `id, person_id, person_name, faculty_code, school_code, entered_at, exited_at,
	entry_checkpoint, exit_checkpoint, entry_guard, exit_guard, inside, dwell_seconds`

// InsideByPerson returns the person's currently-inside record, or nil if the
// person is outside. Errors are database failures only.
func (r *PostgresRepository) InsideByPerson(ctx context.Context, personID string) (*domain.PresenceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+presenceColumns+` FROM presence WHERE person_id = $1 AND inside`, personID)
	return scanPresence(row)
}

// Latest returns the person's most recent record by entry time, or nil.
func (r *PostgresRepository) Latest(ctx context.Context, personID string) (*domain.PresenceRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+presenceColumns+` FROM presence WHERE person_id = $1 ORDER BY entered_at DESC LIMIT 1`, personID)
	return scanPresence(row)
}

// CreateInside inserts the record as inside. The partial unique index on
// (person_id) WHERE inside arbitrates concurrent entries; the loser gets Conflict.
func (r *PostgresRepository) CreateInside(ctx context.Context, p *domain.PresenceRecord) (transition.Outcome, error) {
	return r.mutator.InsertGuarded(ctx,
		`INSERT INTO presence (id, person_id, person_name, faculty_code, school_code, entered_at, entry_checkpoint, entry_guard, inside)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, TRUE)`,
		p.ID, p.PersonID, p.PersonName, nullString(p.FacultyCode), nullString(p.SchoolCode),
		p.EnteredAt, p.EntryCheckpoint, p.EntryGuard)
}

// CloseInside stamps the exit on the person's inside record in one conditional
// update; dwell is computed in the database from the stored entry time so no
// read-modify-write window exists.
func (r *PostgresRepository) CloseInside(ctx context.Context, personID, checkpointID, guardID string, at time.Time) (transition.Outcome, error) {
	return r.mutator.Update(ctx, transition.UpdateSpec{
		Update: `UPDATE presence
			SET exited_at = $2, exit_checkpoint = $3, exit_guard = $4, inside = FALSE,
			    dwell_seconds = EXTRACT(EPOCH FROM ($2::timestamptz - entered_at))::BIGINT
			WHERE person_id = $1 AND inside`,
		UpdateArgs: []any{personID, at, checkpointID, guardID},
		Exists:     `SELECT EXISTS(SELECT 1 FROM presence WHERE person_id = $1)`,
		ExistsArgs: []any{personID},
	})
}

// ListInside returns all currently-inside records.
func (r *PostgresRepository) ListInside(ctx context.Context) ([]*domain.PresenceRecord, error) {
	return r.queryPresence(ctx, `SELECT `+presenceColumns+` FROM presence WHERE inside`)
}

// ListInsideSince returns inside records whose entry time is at or before cutoff.
func (r *PostgresRepository) ListInsideSince(ctx context.Context, cutoff time.Time) ([]*domain.PresenceRecord, error) {
	return r.queryPresence(ctx,
		`SELECT `+presenceColumns+` FROM presence WHERE inside AND entered_at <= $1`, cutoff)
}

func (r *PostgresRepository) queryPresence(ctx context.Context, query string, args ...any) ([]*domain.PresenceRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.PresenceRecord
	for rows.Next() {
		p, err := scanPresenceRows(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPresence(row *sql.Row) (*domain.PresenceRecord, error) {
	p, err := scanPresenceRows(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return p, nil
}

func scanPresenceRows(row rowScanner) (*domain.PresenceRecord, error) {
	var p domain.PresenceRecord
	var faculty, school, exitCP, exitGuard sql.NullString
	var exited sql.NullTime
	var dwell sql.NullInt64
	if err := row.Scan(&p.ID, &p.PersonID, &p.PersonName, &faculty, &school,
		&p.EnteredAt, &exited, &p.EntryCheckpoint, &exitCP, &p.EntryGuard, &exitGuard,
		&p.Inside, &dwell); err != nil {
		return nil, err
	}
	p.FacultyCode = faculty.String
	p.SchoolCode = school.String
	p.ExitCheckpoint = exitCP.String
	p.ExitGuard = exitGuard.String
	if exited.Valid {
		p.ExitedAt = &exited.Time
	}
	if dwell.Valid {
		p.DwellDuration = time.Duration(dwell.Int64) * time.Second
	}
	return &p, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
