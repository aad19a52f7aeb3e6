package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type auditLoggerStub struct {
	logs []*models.AuditLog
}

func (a *auditLoggerStub) CreateAuditLog(ctx context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

type officerReaderStub struct {
	officers map[string]*models.User
}

func (s officerReaderStub) FindOfficer(ctx context.Context, id string) (*models.User, error) {
	if officer, ok := s.officers[id]; ok {
		return officer, nil
	}
	return nil, sql.ErrNoRows
}

func activeOfficer(id string) *models.User {
	return &models.User{ID: id, Role: models.RoleOfficer, Active: true, FullName: "Officer " + id}
}

type workflowRepoStub struct {
	apps map[string]*models.Application

	claimErr    error
	reassignErr error
	guardedErr  error

	claimed  []string
	decided  bool
	admitted bool
}

func (s *workflowRepoStub) FindByID(ctx context.Context, id string) (*models.Application, error) {
	if app, ok := s.apps[id]; ok {
		copy := *app
		return &copy, nil
	}
	return nil, sql.ErrNoRows
}

func (s *workflowRepoStub) MarkSubmitted(ctx context.Context, id string, at time.Time) error {
	return s.guardedErr
}

func (s *workflowRepoStub) Claim(ctx context.Context, id, officerID string, at time.Time) error {
	if s.claimErr != nil {
		return s.claimErr
	}
	s.claimed = append(s.claimed, id)
	return nil
}

func (s *workflowRepoStub) Reassign(ctx context.Context, id, fromOfficerID, toOfficerID string, at time.Time) error {
	return s.reassignErr
}

func (s *workflowRepoStub) RecordDecision(ctx context.Context, id string, from, to models.ApplicationStatus, reason, comments *string, at time.Time) error {
	if s.guardedErr != nil {
		return s.guardedErr
	}
	s.decided = true
	return nil
}

func (s *workflowRepoStub) MarkAdmitted(ctx context.Context, id string, at time.Time) error {
	if s.guardedErr != nil {
		return s.guardedErr
	}
	s.admitted = true
	return nil
}

func draftApplication(id string) *models.Application {
	return &models.Application{
		ID:              id,
		ApplicantID:     "applicant-1",
		ProgramID:       "prog-1",
		SessionID:       "session-1",
		Status:          models.ApplicationStatusDraft,
		BiodataComplete: true,
		SSCComplete:     true,
	}
}

func submittedApplication(id string) *models.Application {
	app := draftApplication(id)
	app.Status = models.ApplicationStatusSubmitted
	submitted := time.Now().UTC().Add(-time.Hour)
	app.SubmittedAt = &submitted
	return app
}

func newWorkflow(repo *workflowRepoStub, officers officerReaderStub) *WorkflowService {
	return NewWorkflowService(repo, officers, &auditLoggerStub{}, nil, nil, nil)
}

func TestWorkflowSubmit(t *testing.T) {
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": draftApplication("app-1")}}
	svc := newWorkflow(repo, officerReaderStub{})

	app, err := svc.Submit(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusSubmitted, app.Status)
	require.NotNil(t, app.SubmittedAt)
}

func TestWorkflowSubmitIncomplete(t *testing.T) {
	incomplete := draftApplication("app-1")
	incomplete.SSCComplete = false
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": incomplete}}
	svc := newWorkflow(repo, officerReaderStub{})

	_, err := svc.Submit(context.Background(), "app-1")
	require.Error(t, err)
	appErr := appErrors.FromError(err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErr.Code)
	assert.Contains(t, appErr.Message, "ssc_qualification")
}

func TestWorkflowSubmitIllegalStatus(t *testing.T) {
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": submittedApplication("app-1")}}
	svc := newWorkflow(repo, officerReaderStub{})

	_, err := svc.Submit(context.Background(), "app-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestWorkflowAssign(t *testing.T) {
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": submittedApplication("app-1")}}
	officers := officerReaderStub{officers: map[string]*models.User{"officer-1": activeOfficer("officer-1")}}
	svc := newWorkflow(repo, officers)

	app, err := svc.Assign(context.Background(), "app-1", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusUnderReview, app.Status)
	require.NotNil(t, app.AssignedOfficerID)
	assert.Equal(t, "officer-1", *app.AssignedOfficerID)
	assert.Equal(t, []string{"app-1"}, repo.claimed)
}

func TestWorkflowAssignUnknownOfficer(t *testing.T) {
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": submittedApplication("app-1")}}
	svc := newWorkflow(repo, officerReaderStub{})

	_, err := svc.Assign(context.Background(), "app-1", "ghost")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestWorkflowAssignInactiveOfficer(t *testing.T) {
	inactive := activeOfficer("officer-1")
	inactive.Active = false
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": submittedApplication("app-1")}}
	svc := newWorkflow(repo, officerReaderStub{officers: map[string]*models.User{"officer-1": inactive}})

	_, err := svc.Assign(context.Background(), "app-1", "officer-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}

func TestWorkflowAssignAlreadyHeld(t *testing.T) {
	other := "officer-2"
	held := submittedApplication("app-1")
	held.Status = models.ApplicationStatusUnderReview
	held.AssignedOfficerID = &other
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": held}}
	officers := officerReaderStub{officers: map[string]*models.User{"officer-1": activeOfficer("officer-1")}}
	svc := newWorkflow(repo, officers)

	_, err := svc.Assign(context.Background(), "app-1", "officer-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.claimed)
}

func TestWorkflowAssignIdempotentForSameOfficer(t *testing.T) {
	mine := "officer-1"
	held := submittedApplication("app-1")
	held.Status = models.ApplicationStatusUnderReview
	held.AssignedOfficerID = &mine
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": held}}
	officers := officerReaderStub{officers: map[string]*models.User{"officer-1": activeOfficer("officer-1")}}
	svc := newWorkflow(repo, officers)

	app, err := svc.Assign(context.Background(), "app-1", "officer-1")
	require.NoError(t, err)
	assert.Equal(t, "officer-1", *app.AssignedOfficerID)
	assert.Empty(t, repo.claimed, "no second claim for the same holder")
}

func TestWorkflowAssignLostRace(t *testing.T) {
	repo := &workflowRepoStub{
		apps:     map[string]*models.Application{"app-1": submittedApplication("app-1")},
		claimErr: sql.ErrNoRows,
	}
	officers := officerReaderStub{officers: map[string]*models.User{"officer-1": activeOfficer("officer-1")}}
	svc := newWorkflow(repo, officers)

	_, err := svc.Assign(context.Background(), "app-1", "officer-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestWorkflowDecideApprove(t *testing.T) {
	app := submittedApplication("app-1")
	app.Status = models.ApplicationStatusUnderReview
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": app}}
	svc := newWorkflow(repo, officerReaderStub{})

	decided, err := svc.Decide(context.Background(), "app-1", models.DecisionApproved, "", "strong results", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusApproved, decided.Status)
	assert.Nil(t, decided.RejectionReason)
	assert.True(t, repo.decided)
}

func TestWorkflowDecideRejectRequiresReason(t *testing.T) {
	app := submittedApplication("app-1")
	app.Status = models.ApplicationStatusUnderReview
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": app}}
	svc := newWorkflow(repo, officerReaderStub{})

	_, err := svc.Decide(context.Background(), "app-1", models.DecisionRejected, "   ", "", "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	assert.False(t, repo.decided)
}

func TestWorkflowDecideReject(t *testing.T) {
	app := submittedApplication("app-1")
	app.Status = models.ApplicationStatusPendingApproval
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": app}}
	svc := newWorkflow(repo, officerReaderStub{})

	decided, err := svc.Decide(context.Background(), "app-1", models.DecisionRejected, "incomplete documents", "", "admin")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusRejected, decided.Status)
	require.NotNil(t, decided.RejectionReason)
	assert.Equal(t, "incomplete documents", *decided.RejectionReason)
}

func TestWorkflowDecideIllegalStatus(t *testing.T) {
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": draftApplication("app-1")}}
	svc := newWorkflow(repo, officerReaderStub{})

	_, err := svc.Decide(context.Background(), "app-1", models.DecisionApproved, "", "", "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidTransition.Code, appErrors.FromError(err).Code)
}

func TestWorkflowAdmit(t *testing.T) {
	app := submittedApplication("app-1")
	app.Status = models.ApplicationStatusApproved
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": app}}
	svc := newWorkflow(repo, officerReaderStub{})

	admitted, err := svc.Admit(context.Background(), "app-1")
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationStatusAdmitted, admitted.Status)
	assert.True(t, repo.admitted)
}

func TestWorkflowAdmitRaced(t *testing.T) {
	app := submittedApplication("app-1")
	app.Status = models.ApplicationStatusApproved
	repo := &workflowRepoStub{
		apps:       map[string]*models.Application{"app-1": app},
		guardedErr: sql.ErrNoRows,
	}
	svc := newWorkflow(repo, officerReaderStub{})

	_, err := svc.Admit(context.Background(), "app-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestWorkflowReassign(t *testing.T) {
	current := "officer-1"
	app := submittedApplication("app-1")
	app.Status = models.ApplicationStatusUnderReview
	app.AssignedOfficerID = &current
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": app}}
	officers := officerReaderStub{officers: map[string]*models.User{
		"officer-1": activeOfficer("officer-1"),
		"officer-2": activeOfficer("officer-2"),
	}}
	svc := newWorkflow(repo, officers)

	moved, err := svc.Reassign(context.Background(), "app-1", "officer-2", "admin")
	require.NoError(t, err)
	assert.Equal(t, "officer-2", *moved.AssignedOfficerID)
}

func TestWorkflowReassignUnassigned(t *testing.T) {
	repo := &workflowRepoStub{apps: map[string]*models.Application{"app-1": submittedApplication("app-1")}}
	officers := officerReaderStub{officers: map[string]*models.User{"officer-2": activeOfficer("officer-2")}}
	svc := newWorkflow(repo, officers)

	_, err := svc.Reassign(context.Background(), "app-1", "officer-2", "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrPreconditionFailed.Code, appErrors.FromError(err).Code)
}
