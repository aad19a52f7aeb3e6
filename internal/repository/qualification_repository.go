package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

// QualificationRepository handles persistence of SSC qualification records.
type QualificationRepository struct {
	db *sqlx.DB
}

// NewQualificationRepository constructs the repository.
func NewQualificationRepository(db *sqlx.DB) *QualificationRepository {
	return &QualificationRepository{db: db}
}

// GetByID returns a qualification with its subject slots.
func (r *QualificationRepository) GetByID(ctx context.Context, id string) (*models.SSCQualification, error) {
	const query = `SELECT id, application_id, number_of_sittings, certificate_types, version, created_at, updated_at
        FROM ssc_qualifications WHERE id = $1`
	var q models.SSCQualification
	if err := r.db.GetContext(ctx, &q, query, id); err != nil {
		return nil, err
	}
	if err := r.loadSubjects(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// GetByApplication returns the qualification belonging to an application.
func (r *QualificationRepository) GetByApplication(ctx context.Context, applicationID string) (*models.SSCQualification, error) {
	const query = `SELECT id, application_id, number_of_sittings, certificate_types, version, created_at, updated_at
        FROM ssc_qualifications WHERE application_id = $1`
	var q models.SSCQualification
	if err := r.db.GetContext(ctx, &q, query, applicationID); err != nil {
		return nil, err
	}
	if err := r.loadSubjects(ctx, &q); err != nil {
		return nil, err
	}
	return &q, nil
}

// Create inserts a new qualification and its subject slots.
func (r *QualificationRepository) Create(ctx context.Context, q *models.SSCQualification) error {
	if q.ID == "" {
		q.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	q.Version = 1
	q.CreatedAt = now
	q.UpdatedAt = now

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin qualification tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `INSERT INTO ssc_qualifications (id, application_id, number_of_sittings, certificate_types, version, created_at, updated_at)
        VALUES (:id, :application_id, :number_of_sittings, :certificate_types, :version, :created_at, :updated_at)`
	if _, err := tx.NamedExecContext(ctx, query, q); err != nil {
		return fmt.Errorf("create qualification: %w", err)
	}
	if err := r.replaceSubjects(ctx, tx, q); err != nil {
		return err
	}
	return tx.Commit()
}

// Update rewrites the qualification and its subjects under an optimistic
// version check. A concurrent edit bumps the version first and makes this
// call report sql.ErrNoRows instead of silently overwriting.
func (r *QualificationRepository) Update(ctx context.Context, q *models.SSCQualification) error {
	now := time.Now().UTC()

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin qualification tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	const query = `UPDATE ssc_qualifications
        SET number_of_sittings = $2, certificate_types = $3, version = version + 1, updated_at = $4
        WHERE id = $1 AND version = $5`
	res, err := tx.ExecContext(ctx, query, q.ID, q.NumberOfSittings, q.CertificateTypes, now, q.Version)
	if err != nil {
		return fmt.Errorf("update qualification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update qualification rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}

	if err := r.replaceSubjects(ctx, tx, q); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit qualification tx: %w", err)
	}
	q.Version++
	q.UpdatedAt = now
	return nil
}

func (r *QualificationRepository) loadSubjects(ctx context.Context, q *models.SSCQualification) error {
	const query = `SELECT qs.id, qs.qualification_id, qs.slot, qs.subject_id, s.name AS subject_name, qs.grade
        FROM ssc_qualification_subjects qs
        JOIN subjects s ON s.id = qs.subject_id
        WHERE qs.qualification_id = $1 ORDER BY qs.slot`
	if err := r.db.SelectContext(ctx, &q.Subjects, query, q.ID); err != nil {
		return fmt.Errorf("load qualification subjects: %w", err)
	}
	return nil
}

func (r *QualificationRepository) replaceSubjects(ctx context.Context, tx *sqlx.Tx, q *models.SSCQualification) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM ssc_qualification_subjects WHERE qualification_id = $1`, q.ID); err != nil {
		return fmt.Errorf("clear qualification subjects: %w", err)
	}
	const insert = `INSERT INTO ssc_qualification_subjects (id, qualification_id, slot, subject_id, grade)
        VALUES ($1, $2, $3, $4, $5)`
	for i := range q.Subjects {
		subject := &q.Subjects[i]
		if subject.ID == "" {
			subject.ID = uuid.NewString()
		}
		subject.QualificationID = q.ID
		if _, err := tx.ExecContext(ctx, insert, subject.ID, q.ID, subject.Slot, subject.SubjectID, subject.Grade); err != nil {
			return fmt.Errorf("insert qualification subject: %w", err)
		}
	}
	return nil
}
