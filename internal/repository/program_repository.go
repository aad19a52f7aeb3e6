package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

// ProgramRepository resolves the faculty/department/program hierarchy.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository constructs the repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// FindFaculty returns a faculty by ID.
func (r *ProgramRepository) FindFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	const query = `SELECT id, name, code, created_at FROM faculties WHERE id = $1`
	var faculty models.Faculty
	if err := r.db.GetContext(ctx, &faculty, query, id); err != nil {
		return nil, err
	}
	return &faculty, nil
}

// FindDepartment returns a department by ID.
func (r *ProgramRepository) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	const query = `SELECT id, faculty_id, name, code, created_at FROM departments WHERE id = $1`
	var department models.Department
	if err := r.db.GetContext(ctx, &department, query, id); err != nil {
		return nil, err
	}
	return &department, nil
}

// FindProgram returns a program by ID.
func (r *ProgramRepository) FindProgram(ctx context.Context, id string) (*models.Program, error) {
	const query = `SELECT id, department_id, name, code, active, created_at FROM programs WHERE id = $1`
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, id); err != nil {
		return nil, err
	}
	return &program, nil
}

// FindSession returns an admission session by ID.
func (r *ProgramRepository) FindSession(ctx context.Context, id string) (*models.AdmissionSession, error) {
	const query = `SELECT id, name, active, starts_at, ends_at, created_at FROM admission_sessions WHERE id = $1`
	var session models.AdmissionSession
	if err := r.db.GetContext(ctx, &session, query, id); err != nil {
		return nil, err
	}
	return &session, nil
}
