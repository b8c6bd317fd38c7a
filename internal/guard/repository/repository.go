package repository

import (
	"context"

	"campus-access-control/backend/internal/guard/domain"
)

// Repository defines persistence for guard accounts.
type Repository interface {
	GetByID(ctx context.Context, id string) (*domain.Guard, error)
	GetByEmail(ctx context.Context, email string) (*domain.Guard, error)
	Create(ctx context.Context, g *domain.Guard) error
	// SetActive flips the account flag; inactive guards cannot log in.
	SetActive(ctx context.Context, id string, active bool) error
}
