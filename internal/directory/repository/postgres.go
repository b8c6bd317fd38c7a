package repository

import (
	"context"
	"database/sql"
	"errors"

	"campus-access-control/backend/internal/directory/domain"
)

type PostgresRepository struct {
	db *sql.DB
}

// NewPostgresRepository returns a directory repository that reads reference data from db.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FindPerson resolves id against students first, then visitors. Students who
// are not enrolled do not resolve; the checkpoint must treat them as unknown.
func (r *PostgresRepository) FindPerson(ctx context.Context, id string) (*domain.Person, error) {
	s, err := r.GetStudent(ctx, id)
	if err != nil {
		return nil, err
	}
	if s != nil && s.Enrolled {
		return &domain.Person{
			ID: s.ID, Name: s.Name, Kind: domain.KindStudent,
			FacultyCode: s.FacultyCode, SchoolCode: s.SchoolCode,
		}, nil
	}
	v, err := r.GetVisitor(ctx, id)
	if err != nil {
		return nil, err
	}
	if v != nil {
		return &domain.Person{ID: v.ID, Name: v.Name, Kind: domain.KindVisitor}, nil
	}
	return nil, nil
}

// GetStudent returns the student for id, or nil if not found.
func (r *PostgresRepository) GetStudent(ctx context.Context, id string) (*domain.Student, error) {
	var s domain.Student
	var faculty, school sql.NullString
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, enrolled, faculty_code, school_code FROM students WHERE id = $1`, id).
		Scan(&s.ID, &s.Name, &s.Enrolled, &faculty, &school)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	s.FacultyCode = faculty.String
	s.SchoolCode = school.String
	return &s, nil
}

// GetVisitor returns the visitor for id, or nil if not found.
func (r *PostgresRepository) GetVisitor(ctx context.Context, id string) (*domain.Visitor, error) {
	var v domain.Visitor
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name FROM visitors WHERE id = $1`, id).Scan(&v.ID, &v.Name)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &v, nil
}

// ListFaculties returns all faculties.
func (r *PostgresRepository) ListFaculties(ctx context.Context) ([]*domain.Faculty, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT code, name FROM faculties ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.Faculty
	for rows.Next() {
		var f domain.Faculty
		if err := rows.Scan(&f.Code, &f.Name); err != nil {
			return nil, err
		}
		out = append(out, &f)
	}
	return out, rows.Err()
}

// ListSchools returns schools, optionally filtered by faculty code.
func (r *PostgresRepository) ListSchools(ctx context.Context, facultyCode string) ([]*domain.School, error) {
	query := `SELECT code, name, faculty_code FROM schools ORDER BY code`
	args := []any{}
	if facultyCode != "" {
		query = `SELECT code, name, faculty_code FROM schools WHERE faculty_code = $1 ORDER BY code`
		args = append(args, facultyCode)
	}
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.School
	for rows.Next() {
		var s domain.School
		if err := rows.Scan(&s.Code, &s.Name, &s.FacultyCode); err != nil {
			return nil, err
		}
		out = append(out, &s)
	}
	return out, rows.Err()
}
