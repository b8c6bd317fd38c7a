// Package service implements the checkpoint session registry: one active
// guard session per checkpoint, arbitrated by atomic conditional transitions
// in storage rather than in-process locks.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"campus-access-control/backend/internal/session/domain"
	"campus-access-control/backend/internal/session/repository"
	"campus-access-control/backend/internal/transition"
)

// ErrSessionExpired is returned when a token does not match an active session:
// it was ended by its guard, closed when the guard started elsewhere, swept as
// stale, or never existed. Callers treat all of these the same.
var ErrSessionExpired = errors.New("session not found or no longer active")

// CheckpointOwnedError reports that another guard holds the checkpoint. The
// owner's identity and timestamps are included so the caller can show who is
// in control.
type CheckpointOwnedError struct {
	CheckpointID   string
	GuardID        string
	GuardName      string
	StartedAt      time.Time
	LastActivityAt time.Time
}

func (e *CheckpointOwnedError) Error() string {
	if e.GuardID == "" {
		return fmt.Sprintf("checkpoint %s is owned by another guard", e.CheckpointID)
	}
	return fmt.Sprintf("checkpoint %s is owned by guard %s (%s) since %s",
		e.CheckpointID, e.GuardName, e.GuardID, e.StartedAt.Format(time.RFC3339))
}

// Registry owns the guard session lifecycle.
type Registry struct {
	repo repository.Repository
	now  func() time.Time
}

// NewRegistry returns a Registry backed by repo.
func NewRegistry(repo repository.Repository) *Registry {
	return &Registry{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// Start opens a session for the guard at the checkpoint. Any active sessions
// the same guard holds elsewhere are closed first, so a guard is present at
// one checkpoint at a time. If another guard owns the checkpoint the insert
// loses the race on the active-checkpoint index and a CheckpointOwnedError
// identifying the owner is returned.
func (r *Registry) Start(ctx context.Context, guardID, guardName, checkpointID, deviceInfo string) (*domain.GuardSession, error) {
	if guardID == "" || checkpointID == "" {
		return nil, errors.New("guard id and checkpoint id are required")
	}
	now := r.now()
	if _, err := r.repo.CloseAllByGuard(ctx, guardID, now); err != nil {
		return nil, fmt.Errorf("close prior sessions: %w", err)
	}

	s := &domain.GuardSession{
		ID:             uuid.New().String(),
		GuardID:        guardID,
		GuardName:      guardName,
		CheckpointID:   checkpointID,
		DeviceInfo:     deviceInfo,
		StartedAt:      now,
		LastActivityAt: now,
		Active:         true,
	}
	out, err := r.repo.CreateActive(ctx, s)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if out == transition.Conflict {
		return nil, r.ownedError(ctx, checkpointID)
	}
	return s, nil
}

// ownedError fetches the current owner for the conflict response. The owner
// may have ended its session between the failed insert and this read; the
// conflict still stands for the request that lost.
func (r *Registry) ownedError(ctx context.Context, checkpointID string) error {
	owned := &CheckpointOwnedError{CheckpointID: checkpointID}
	owner, err := r.repo.ActiveByCheckpoint(ctx, checkpointID)
	if err == nil && owner != nil {
		owned.GuardID = owner.GuardID
		owned.GuardName = owner.GuardName
		owned.StartedAt = owner.StartedAt
		owned.LastActivityAt = owner.LastActivityAt
	}
	return owned
}

// Heartbeat refreshes last-activity for the active session with the token and
// returns the new timestamp. Inactive or unknown tokens get ErrSessionExpired;
// there is no implicit timeout here, staleness is judged by the sweeper or by
// readers comparing last-activity age.
func (r *Registry) Heartbeat(ctx context.Context, token string) (time.Time, error) {
	if token == "" {
		return time.Time{}, ErrSessionExpired
	}
	now := r.now()
	out, err := r.repo.Touch(ctx, token, now)
	if err != nil {
		return time.Time{}, fmt.Errorf("heartbeat: %w", err)
	}
	if out != transition.Applied {
		return time.Time{}, ErrSessionExpired
	}
	return now, nil
}

// End closes the session with the token. Ending an already-closed or unknown
// session returns ErrSessionExpired; the state is never rewritten.
func (r *Registry) End(ctx context.Context, token string) error {
	if token == "" {
		return ErrSessionExpired
	}
	out, err := r.repo.Close(ctx, token, r.now())
	if err != nil {
		return fmt.Errorf("end session: %w", err)
	}
	if out != transition.Applied {
		return ErrSessionExpired
	}
	return nil
}

// ForceEndAll closes every active session for the guard regardless of token
// possession and returns the count closed. Authorization must be verified by
// the caller before invoking; the registry does not check privileges.
func (r *Registry) ForceEndAll(ctx context.Context, guardID string) (int64, error) {
	if guardID == "" {
		return 0, errors.New("guard id is required")
	}
	n, err := r.repo.CloseAllByGuard(ctx, guardID, r.now())
	if err != nil {
		return 0, fmt.Errorf("force end: %w", err)
	}
	return n, nil
}

// ListActive returns a snapshot of all active sessions.
func (r *Registry) ListActive(ctx context.Context) ([]*domain.GuardSession, error) {
	return r.repo.ListActive(ctx)
}
