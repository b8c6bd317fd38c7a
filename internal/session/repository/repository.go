package repository

import (
	"context"
	"time"

	"campus-access-control/backend/internal/session/domain"
	"campus-access-control/backend/internal/transition"
)

// Repository defines persistence for guard sessions. Conditional operations
// return a transition.Outcome so callers can tell a lost race from a missing
// row without re-reading.
type Repository interface {
	GetByToken(ctx context.Context, token string) (*domain.GuardSession, error)
	ActiveByCheckpoint(ctx context.Context, checkpointID string) (*domain.GuardSession, error)
	ListActive(ctx context.Context) ([]*domain.GuardSession, error)
	// CreateActive inserts a new active session. Conflict means another guard
	// holds the checkpoint.
	CreateActive(ctx context.Context, s *domain.GuardSession) (transition.Outcome, error)
	// Touch refreshes last-activity for an active session with the token.
	Touch(ctx context.Context, token string, at time.Time) (transition.Outcome, error)
	// Close flips an active session inactive and stamps the end time.
	Close(ctx context.Context, token string, at time.Time) (transition.Outcome, error)
	// CloseAllByGuard closes every active session for the guard and returns
	// how many it closed.
	CloseAllByGuard(ctx context.Context, guardID string, at time.Time) (int64, error)
	// CloseStale closes active sessions whose last activity is before cutoff.
	CloseStale(ctx context.Context, cutoff, at time.Time) (int64, error)
}
