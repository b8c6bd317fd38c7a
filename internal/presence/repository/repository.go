package repository

import (
	"context"
	"time"

	"campus-access-control/backend/internal/presence/domain"
	"campus-access-control/backend/internal/transition"
)

// Repository defines persistence for presence records. Conditional operations
// return a transition.Outcome so the ledger can tell a lost race from a
// missing record.
type Repository interface {
	// InsideByPerson returns the person's currently-inside record, or nil.
	InsideByPerson(ctx context.Context, personID string) (*domain.PresenceRecord, error)
	// Latest returns the person's most recent record by entry time, or nil.
	Latest(ctx context.Context, personID string) (*domain.PresenceRecord, error)
	// CreateInside inserts a new inside record. Conflict means the person is
	// already inside.
	CreateInside(ctx context.Context, p *domain.PresenceRecord) (transition.Outcome, error)
	// CloseInside stamps the exit on the person's inside record. Conflict or
	// NotFound mean the person is not inside.
	CloseInside(ctx context.Context, personID, checkpointID, guardID string, at time.Time) (transition.Outcome, error)
	// ListInside returns all currently-inside records, snapshot semantics.
	ListInside(ctx context.Context) ([]*domain.PresenceRecord, error)
	// ListInsideSince returns inside records whose entry time is at or before cutoff.
	ListInsideSince(ctx context.Context, cutoff time.Time) ([]*domain.PresenceRecord, error)
}
