package repository

import (
	"context"

	"campus-access-control/backend/internal/directory/domain"
)

// Repository defines read access to the person reference data. The directory
// is plain request/response lookup; it holds no invariants of its own.
type Repository interface {
	// FindPerson resolves id against students first, then visitors.
	// Returns (nil, nil) when no reference row matches.
	FindPerson(ctx context.Context, id string) (*domain.Person, error)
	GetStudent(ctx context.Context, id string) (*domain.Student, error)
	GetVisitor(ctx context.Context, id string) (*domain.Visitor, error)
	ListFaculties(ctx context.Context) ([]*domain.Faculty, error)
	// ListSchools returns schools, optionally filtered by faculty code
	// (empty string means all).
	ListSchools(ctx context.Context, facultyCode string) ([]*domain.School, error)
}
