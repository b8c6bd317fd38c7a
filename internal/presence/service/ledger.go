// Package service implements the presence ledger: the per-person
// outside → inside → outside state machine, driven by atomic conditional
// transitions so racing entry or exit requests can never double-apply.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	directorydomain "campus-access-control/backend/internal/directory/domain"
	"campus-access-control/backend/internal/presence/domain"
	"campus-access-control/backend/internal/presence/repository"
	"campus-access-control/backend/internal/transition"
)

// DefaultOverdueThreshold is how long someone may stay inside before being
// reported as overdue when the caller does not supply a threshold.
const DefaultOverdueThreshold = 8 * time.Hour

// Sentinel errors; the HTTP layer maps them to status codes.
var (
	// ErrPersonUnknown means the person id resolved to no reference row.
	ErrPersonUnknown = errors.New("person not found in directory")
	// ErrNotInside means an exit was recorded for someone who is not inside.
	ErrNotInside = errors.New("person is not inside")
)

// AlreadyInsideError reports a rejected entry for a person who is already
// inside, with enough context for the guard-facing message.
type AlreadyInsideError struct {
	PersonID        string
	Since           time.Time
	EntryCheckpoint string
}

func (e *AlreadyInsideError) Error() string {
	if e.Since.IsZero() {
		return fmt.Sprintf("person %s is already inside", e.PersonID)
	}
	return fmt.Sprintf("person %s is already inside since %s (entered at %s)",
		e.PersonID, e.Since.Format(time.RFC3339), e.EntryCheckpoint)
}

// Directory is the person reference lookup the ledger consumes.
type Directory interface {
	FindPerson(ctx context.Context, id string) (*directorydomain.Person, error)
}

// Ledger owns the entry/exit state machine per tracked person.
type Ledger struct {
	repo      repository.Repository
	directory Directory
	now       func() time.Time
}

// NewLedger returns a Ledger backed by repo, resolving people through directory.
func NewLedger(repo repository.Repository, directory Directory) *Ledger {
	return &Ledger{
		repo:      repo,
		directory: directory,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RecordEntry transitions the person outside → inside. The insert loses the
// race on the inside-person index if the person is already inside, so a
// retried or duplicated entry yields AlreadyInsideError, never a second record.
func (l *Ledger) RecordEntry(ctx context.Context, personID, checkpointID, guardID string) (*domain.PresenceRecord, error) {
	if personID == "" || checkpointID == "" {
		return nil, errors.New("person id and checkpoint id are required")
	}
	person, err := l.directory.FindPerson(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("directory lookup: %w", err)
	}
	if person == nil {
		return nil, ErrPersonUnknown
	}

	rec := &domain.PresenceRecord{
		ID:              uuid.New().String(),
		PersonID:        personID,
		PersonName:      person.Name,
		FacultyCode:     person.FacultyCode,
		SchoolCode:      person.SchoolCode,
		EnteredAt:       l.now(),
		EntryCheckpoint: checkpointID,
		EntryGuard:      guardID,
		Inside:          true,
	}
	out, err := l.repo.CreateInside(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("record entry: %w", err)
	}
	if out == transition.Conflict {
		return nil, l.alreadyInsideError(ctx, personID)
	}
	return rec, nil
}

func (l *Ledger) alreadyInsideError(ctx context.Context, personID string) error {
	already := &AlreadyInsideError{PersonID: personID}
	if cur, err := l.repo.InsideByPerson(ctx, personID); err == nil && cur != nil {
		already.Since = cur.EnteredAt
		already.EntryCheckpoint = cur.EntryCheckpoint
	}
	return already
}

// RecordExit transitions the person inside → outside, stamping exit
// checkpoint, guard, time, and dwell duration. A retried exit observes
// ErrNotInside because the conditional update only matches an inside record.
func (l *Ledger) RecordExit(ctx context.Context, personID, checkpointID, guardID string) (*domain.PresenceRecord, error) {
	if personID == "" || checkpointID == "" {
		return nil, errors.New("person id and checkpoint id are required")
	}
	out, err := l.repo.CloseInside(ctx, personID, checkpointID, guardID, l.now())
	if err != nil {
		return nil, fmt.Errorf("record exit: %w", err)
	}
	if out != transition.Applied {
		return nil, ErrNotInside
	}
	rec, err := l.repo.Latest(ctx, personID)
	if err != nil {
		return nil, fmt.Errorf("load closed record: %w", err)
	}
	if rec == nil {
		return nil, ErrNotInside
	}
	return rec, nil
}

// ListInside returns everyone currently inside, snapshot semantics.
func (l *Ledger) ListInside(ctx context.Context) ([]*domain.PresenceRecord, error) {
	return l.repo.ListInside(ctx)
}

// ListOverdue returns currently-inside records whose dwell so far is at least
// threshold. threshold <= 0 falls back to DefaultOverdueThreshold. Pure
// read-side filter; no state changes.
func (l *Ledger) ListOverdue(ctx context.Context, threshold time.Duration) ([]*domain.PresenceRecord, error) {
	if threshold <= 0 {
		threshold = DefaultOverdueThreshold
	}
	cutoff := l.now().Add(-threshold)
	return l.repo.ListInsideSince(ctx, cutoff)
}

// LastDirection returns the person's most recent applied transition, used by
// clients to preselect the next action. A person with no history reads as
// exited, so the next suggested action is an entry.
func (l *Ledger) LastDirection(ctx context.Context, personID string) (domain.Direction, error) {
	rec, err := l.repo.Latest(ctx, personID)
	if err != nil {
		return "", fmt.Errorf("last direction: %w", err)
	}
	if rec == nil || !rec.Inside {
		return domain.DirectionExit, nil
	}
	return domain.DirectionEntry, nil
}
