package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

const applicationColumns = `id, applicant_id, program_id, session_id, status, assigned_officer_id,
        assigned_at, submitted_at, biodata_complete, ssc_complete, rejection_reason,
        admin_comments, hoa_comments, created_at, updated_at`

// ApplicationRepository handles persistence of admission applications.
type ApplicationRepository struct {
	db *sqlx.DB
}

// NewApplicationRepository constructs the repository.
func NewApplicationRepository(db *sqlx.DB) *ApplicationRepository {
	return &ApplicationRepository{db: db}
}

// FindByID returns an application by its ID.
func (r *ApplicationRepository) FindByID(ctx context.Context, id string) (*models.Application, error) {
	query := fmt.Sprintf(`SELECT %s FROM applications WHERE id = $1`, applicationColumns)
	var app models.Application
	if err := r.db.GetContext(ctx, &app, query, id); err != nil {
		return nil, err
	}
	return &app, nil
}

// List returns applications filtered by the provided criteria.
func (r *ApplicationRepository) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	base := `FROM applications a
LEFT JOIN users u ON u.id = a.applicant_id
LEFT JOIN programs p ON p.id = a.program_id
LEFT JOIN admission_sessions s ON s.id = a.session_id`
	var conditions []string
	var args []interface{}

	if len(filter.Status) > 0 {
		placeholders := make([]string, len(filter.Status))
		for i, status := range filter.Status {
			placeholders[i] = fmt.Sprintf("$%d", len(args)+1)
			args = append(args, status)
		}
		conditions = append(conditions, fmt.Sprintf("a.status IN (%s)", strings.Join(placeholders, ",")))
	}
	if filter.ApplicantID != "" {
		conditions = append(conditions, fmt.Sprintf("a.applicant_id = $%d", len(args)+1))
		args = append(args, filter.ApplicantID)
	}
	if filter.ProgramID != "" {
		conditions = append(conditions, fmt.Sprintf("a.program_id = $%d", len(args)+1))
		args = append(args, filter.ProgramID)
	}
	if filter.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("a.session_id = $%d", len(args)+1))
		args = append(args, filter.SessionID)
	}
	if filter.OfficerID != "" {
		conditions = append(conditions, fmt.Sprintf("a.assigned_officer_id = $%d", len(args)+1))
		args = append(args, filter.OfficerID)
	}

	clause := ""
	if len(conditions) > 0 {
		clause = " WHERE " + strings.Join(conditions, " AND ")
	}

	allowedSorts := map[string]string{
		"submitted_at": "a.submitted_at",
		"assigned_at":  "a.assigned_at",
		"created_at":   "a.created_at",
	}
	orderBy := allowedSorts[filter.SortBy]
	if orderBy == "" {
		orderBy = "a.created_at"
	}
	order := strings.ToUpper(filter.SortOrder)
	if order != "ASC" && order != "DESC" {
		order = "DESC"
	}
	page := filter.Page
	if page < 1 {
		page = 1
	}
	size := filter.PageSize
	if size <= 0 || size > 100 {
		size = 20
	}
	offset := (page - 1) * size

	query := fmt.Sprintf(`SELECT a.id, a.applicant_id, a.program_id, a.session_id, a.status,
        a.assigned_officer_id, a.assigned_at, a.submitted_at, a.biodata_complete, a.ssc_complete,
        a.rejection_reason, a.admin_comments, a.hoa_comments, a.created_at, a.updated_at,
        u.full_name AS applicant_name, p.name AS program_name, s.name AS session_name
        %s ORDER BY %s %s LIMIT %d OFFSET %d`, base+clause, orderBy, order, size, offset)

	var applications []models.ApplicationDetail
	if err := r.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, 0, fmt.Errorf("list applications: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", base+clause)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count applications: %w", err)
	}
	return applications, total, nil
}

// FindUnassigned returns the oldest-submitted reviewable applications in the
// given scope that no officer has claimed, up to limit. Ordering by
// submitted_at is the anti-starvation rule for distribution.
func (r *ApplicationRepository) FindUnassigned(ctx context.Context, scope models.AssignmentScope, limit int) ([]models.Application, error) {
	base := `FROM applications a
JOIN programs p ON p.id = a.program_id
JOIN departments d ON d.id = p.department_id`
	conditions := []string{
		"a.status IN ($1, $2)",
		"a.assigned_officer_id IS NULL",
	}
	args := []interface{}{models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview}

	switch scope.Type {
	case models.ScopeFaculty:
		conditions = append(conditions, fmt.Sprintf("d.faculty_id = $%d", len(args)+1))
		args = append(args, scope.TargetID)
	case models.ScopeDepartment:
		conditions = append(conditions, fmt.Sprintf("p.department_id = $%d", len(args)+1))
		args = append(args, scope.TargetID)
	case models.ScopeProgram:
		conditions = append(conditions, fmt.Sprintf("a.program_id = $%d", len(args)+1))
		args = append(args, scope.TargetID)
	}
	if scope.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("a.session_id = $%d", len(args)+1))
		args = append(args, scope.SessionID)
	}

	query := fmt.Sprintf(`SELECT a.id, a.applicant_id, a.program_id, a.session_id, a.status,
        a.assigned_officer_id, a.assigned_at, a.submitted_at, a.biodata_complete, a.ssc_complete,
        a.rejection_reason, a.admin_comments, a.hoa_comments, a.created_at, a.updated_at
        %s WHERE %s ORDER BY a.submitted_at ASC LIMIT %d`, base, strings.Join(conditions, " AND "), limit)

	var applications []models.Application
	if err := r.db.SelectContext(ctx, &applications, query, args...); err != nil {
		return nil, fmt.Errorf("find unassigned applications: %w", err)
	}
	return applications, nil
}

// ScopeCounts aggregates reviewable applications in the scope for previews.
func (r *ApplicationRepository) ScopeCounts(ctx context.Context, scope models.AssignmentScope) (*models.AssignmentPreview, error) {
	base := `FROM applications a
JOIN programs p ON p.id = a.program_id
JOIN departments d ON d.id = p.department_id`
	conditions := []string{"a.status IN ($1, $2)"}
	args := []interface{}{models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview}

	switch scope.Type {
	case models.ScopeFaculty:
		conditions = append(conditions, fmt.Sprintf("d.faculty_id = $%d", len(args)+1))
		args = append(args, scope.TargetID)
	case models.ScopeDepartment:
		conditions = append(conditions, fmt.Sprintf("p.department_id = $%d", len(args)+1))
		args = append(args, scope.TargetID)
	case models.ScopeProgram:
		conditions = append(conditions, fmt.Sprintf("a.program_id = $%d", len(args)+1))
		args = append(args, scope.TargetID)
	}
	if scope.SessionID != "" {
		conditions = append(conditions, fmt.Sprintf("a.session_id = $%d", len(args)+1))
		args = append(args, scope.SessionID)
	}

	query := fmt.Sprintf(`SELECT COUNT(*) AS total_available,
        COUNT(a.assigned_officer_id) AS assigned_count,
        COUNT(*) - COUNT(a.assigned_officer_id) AS unassigned_count
        %s WHERE %s`, base, strings.Join(conditions, " AND "))

	var preview models.AssignmentPreview
	row := r.db.QueryRowxContext(ctx, query, args...)
	if err := row.Scan(&preview.TotalAvailable, &preview.AssignedCount, &preview.UnassignedCount); err != nil {
		return nil, fmt.Errorf("count scope applications: %w", err)
	}
	return &preview, nil
}

// Claim atomically hands an unclaimed reviewable application to an officer.
// The update is a compare-and-swap on assigned_officer_id: a concurrent call
// that already claimed the row makes this one report sql.ErrNoRows.
func (r *ApplicationRepository) Claim(ctx context.Context, id, officerID string, at time.Time) error {
	const query = `UPDATE applications
        SET assigned_officer_id = $2, assigned_at = $3, status = $4, updated_at = $3
        WHERE id = $1 AND assigned_officer_id IS NULL AND status IN ($5, $6)`
	res, err := r.db.ExecContext(ctx, query, id, officerID, at,
		models.ApplicationStatusUnderReview,
		models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview)
	if err != nil {
		return fmt.Errorf("claim application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("claim application rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// Reassign moves an assigned application to another officer. The current
// officer is part of the predicate so a stale reassignment fails instead of
// clobbering a newer one.
func (r *ApplicationRepository) Reassign(ctx context.Context, id, fromOfficerID, toOfficerID string, at time.Time) error {
	const query = `UPDATE applications
        SET assigned_officer_id = $3, assigned_at = $4, updated_at = $4
        WHERE id = $1 AND assigned_officer_id = $2`
	res, err := r.db.ExecContext(ctx, query, id, fromOfficerID, toOfficerID, at)
	if err != nil {
		return fmt.Errorf("reassign application: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reassign application rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

// MarkSubmitted records the submit transition, guarded on the source status.
func (r *ApplicationRepository) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE applications SET status = $2, submitted_at = $3, updated_at = $3
        WHERE id = $1 AND status = $4`
	return r.execGuarded(ctx, query, id, models.ApplicationStatusSubmitted, at, models.ApplicationStatusDraft)
}

// RecordDecision persists the reviewer decision, guarded on the source status.
func (r *ApplicationRepository) RecordDecision(ctx context.Context, id string, from, to models.ApplicationStatus, reason *string, comments *string, at time.Time) error {
	const query = `UPDATE applications
        SET status = $2, rejection_reason = $3, admin_comments = COALESCE($4, admin_comments), updated_at = $5
        WHERE id = $1 AND status = $6`
	return r.execGuarded(ctx, query, id, to, reason, comments, at, from)
}

// MarkAdmitted records the admit transition, guarded on APPROVED.
func (r *ApplicationRepository) MarkAdmitted(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE applications SET status = $2, updated_at = $3
        WHERE id = $1 AND status = $4`
	return r.execGuarded(ctx, query, id, models.ApplicationStatusAdmitted, at, models.ApplicationStatusApproved)
}

// SetSSCComplete flips the qualification completion flag on the application.
func (r *ApplicationRepository) SetSSCComplete(ctx context.Context, id string, complete bool, at time.Time) error {
	const query = `UPDATE applications SET ssc_complete = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, complete, at); err != nil {
		return fmt.Errorf("set ssc completion: %w", err)
	}
	return nil
}

func (r *ApplicationRepository) execGuarded(ctx context.Context, query string, args ...interface{}) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("apply transition: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("transition rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
