// Package transition applies atomic conditional state changes against Postgres.
// A transition succeeds only if the stored row still matches the expected
// predicate; the database decides the winner among concurrent callers, so no
// in-process lock is held across I/O.
package transition

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Outcome classifies the result of a conditional transition.
type Outcome int

const (
	// Applied means this caller won the transition. Among any set of
	// concurrent callers targeting the same key, exactly one observes Applied.
	Applied Outcome = iota
	// Conflict means the row exists but no longer matches the expected
	// predicate; someone else already transitioned it.
	Conflict
	// NotFound means no row matches the key.
	NotFound
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Conflict:
		return "conflict"
	case NotFound:
		return "not_found"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// uniqueViolation is the Postgres error code raised when an insert loses a
// race on a partial unique index.
const uniqueViolation = "23505"

// Execer is the subset of *sql.DB used by the mutator.
type Execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// UpdateSpec describes one conditional update: the UPDATE statement carries
// both the key and the expected-state predicate in its WHERE clause, and the
// exists probe carries the key alone so a miss can be told apart from a lost
// race.
type UpdateSpec struct {
	Update     string
	UpdateArgs []any
	Exists     string
	ExistsArgs []any
}

// Mutator performs atomic compare-and-set style updates through a database
// handle. The zero value is not usable; construct with New.
type Mutator struct {
	db Execer
}

// New returns a Mutator bound to db.
func New(db Execer) *Mutator {
	return &Mutator{db: db}
}

// Update runs the spec's conditional UPDATE. A row changed means this caller
// won; otherwise the exists probe decides between Conflict and NotFound. The
// probe runs after the update, so the Applied guarantee never depends on it.
func (m *Mutator) Update(ctx context.Context, spec UpdateSpec) (Outcome, error) {
	res, err := m.db.ExecContext(ctx, spec.Update, spec.UpdateArgs...)
	if err != nil {
		return NotFound, fmt.Errorf("transition update: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return NotFound, fmt.Errorf("transition rows affected: %w", err)
	}
	if n > 0 {
		return Applied, nil
	}
	var exists bool
	if err := m.db.QueryRowContext(ctx, spec.Exists, spec.ExistsArgs...).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NotFound, nil
		}
		return NotFound, fmt.Errorf("transition exists probe: %w", err)
	}
	if exists {
		return Conflict, nil
	}
	return NotFound, nil
}

// InsertGuarded runs an INSERT whose uniqueness is enforced by a partial
// unique index. A unique violation means another caller already holds the
// guarded state and maps to Conflict.
func (m *Mutator) InsertGuarded(ctx context.Context, stmt string, args ...any) (Outcome, error) {
	if _, err := m.db.ExecContext(ctx, stmt, args...); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Conflict, nil
		}
		return NotFound, fmt.Errorf("transition insert: %w", err)
	}
	return Applied, nil
}
