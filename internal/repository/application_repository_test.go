package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	cleanup := func() {
		_ = sqlxDB.Close()
		db.Close()
	}
	return sqlxDB, mock, cleanup
}

func applicationRow() *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows([]string{
		"id", "applicant_id", "program_id", "session_id", "status", "assigned_officer_id",
		"assigned_at", "submitted_at", "biodata_complete", "ssc_complete", "rejection_reason",
		"admin_comments", "hoa_comments", "created_at", "updated_at",
	}).AddRow(
		"app-1", "applicant-1", "prog-1", "session-1", "SUBMITTED", nil,
		nil, now, true, true, nil,
		nil, nil, now, now,
	)
}

func TestApplicationRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT")).
		WithArgs("app-1").
		WillReturnRows(applicationRow())

	app, err := repo.FindByID(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusSubmitted, app.Status)
	assert.Nil(t, app.AssignedOfficerID)
}

func TestApplicationRepositoryClaim(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications`)).
		WithArgs("app-1", "officer-1", now,
			models.ApplicationStatusUnderReview,
			models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Claim(context.Background(), "app-1", "officer-1", now)
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestApplicationRepositoryClaimLostRace(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications`)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Claim(context.Background(), "app-1", "officer-1", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestApplicationRepositoryMarkSubmittedGuard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications SET status`)).
		WithArgs("app-1", models.ApplicationStatusSubmitted, now, models.ApplicationStatusDraft).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.MarkSubmitted(context.Background(), "app-1", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestApplicationRepositoryFindUnassignedFacultyScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY a.submitted_at ASC LIMIT 10")).
		WithArgs(models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview, "fac-1", "session-1").
		WillReturnRows(applicationRow())

	scope := models.AssignmentScope{Type: models.ScopeFaculty, TargetID: "fac-1", SessionID: "session-1"}
	apps, err := repo.FindUnassigned(context.Background(), scope, 10)
	require.NoError(t, err)
	require.Len(t, apps, 1)
	assert.Equal(t, "app-1", apps[0].ID)
}

func TestApplicationRepositoryFindUnassignedRandomScope(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	// RANDOM carries no scope predicate beyond the status/unassigned filter.
	mock.ExpectQuery(regexp.QuoteMeta("ORDER BY a.submitted_at ASC LIMIT 5")).
		WithArgs(models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview).
		WillReturnRows(applicationRow())

	apps, err := repo.FindUnassigned(context.Background(), models.AssignmentScope{Type: models.ScopeRandom}, 5)
	require.NoError(t, err)
	require.Len(t, apps, 1)
}

func TestApplicationRepositoryScopeCounts(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)

	rows := sqlmock.NewRows([]string{"total_available", "assigned_count", "unassigned_count"}).
		AddRow(10, 4, 6)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*)")).
		WithArgs(models.ApplicationStatusSubmitted, models.ApplicationStatusUnderReview, "prog-1").
		WillReturnRows(rows)

	preview, err := repo.ScopeCounts(context.Background(), models.AssignmentScope{Type: models.ScopeProgram, TargetID: "prog-1"})
	require.NoError(t, err)
	assert.Equal(t, 10, preview.TotalAvailable)
	assert.Equal(t, 6, preview.UnassignedCount)
}

func TestApplicationRepositoryReassignGuard(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewApplicationRepository(db)
	now := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta(`UPDATE applications`)).
		WithArgs("app-1", "officer-1", "officer-2", now).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Reassign(context.Background(), "app-1", "officer-1", "officer-2", now)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
