package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

// RequirementRepository reads program SSC requirement records.
type RequirementRepository struct {
	db *sqlx.DB
}

// NewRequirementRepository constructs the repository.
func NewRequirementRepository(db *sqlx.DB) *RequirementRepository {
	return &RequirementRepository{db: db}
}

// GetByProgram returns the SSC requirement for a program with its subject
// entries, alternate subjects included.
func (r *RequirementRepository) GetByProgram(ctx context.Context, programID string) (*models.ProgramSSCRequirement, error) {
	const query = `SELECT id, program_id, maximum_number_of_sittings, certificate_types, created_at, updated_at
        FROM program_ssc_requirements WHERE program_id = $1`
	var req models.ProgramSSCRequirement
	if err := r.db.GetContext(ctx, &req, query, programID); err != nil {
		return nil, err
	}

	const subjectsQuery = `SELECT rs.id, rs.requirement_id, rs.subject_id, s.name AS subject_name,
        rs.minimum_grade, rs.alternate_subject_id
        FROM program_requirement_subjects rs
        JOIN subjects s ON s.id = rs.subject_id
        WHERE rs.requirement_id = $1 ORDER BY s.name`
	if err := r.db.SelectContext(ctx, &req.Subjects, subjectsQuery, req.ID); err != nil {
		return nil, fmt.Errorf("load requirement subjects: %w", err)
	}
	return &req, nil
}
