package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/dto"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type assignmentRepoStub struct {
	unassigned []models.Application
	preview    models.AssignmentPreview
	listed     []models.ApplicationDetail

	scopeSeen models.AssignmentScope
	limitSeen int
}

func (s *assignmentRepoStub) FindUnassigned(ctx context.Context, scope models.AssignmentScope, limit int) ([]models.Application, error) {
	s.scopeSeen = scope
	s.limitSeen = limit
	if limit < len(s.unassigned) {
		return s.unassigned[:limit], nil
	}
	return s.unassigned, nil
}

func (s *assignmentRepoStub) ScopeCounts(ctx context.Context, scope models.AssignmentScope) (*models.AssignmentPreview, error) {
	s.scopeSeen = scope
	preview := s.preview
	return &preview, nil
}

func (s *assignmentRepoStub) List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error) {
	return s.listed, len(s.listed), nil
}

type scopeResolverStub struct {
	faculties   map[string]string
	departments map[string]string
	programs    map[string]string
	sessions    map[string]string
}

func (s scopeResolverStub) FindFaculty(ctx context.Context, id string) (*models.Faculty, error) {
	if name, ok := s.faculties[id]; ok {
		return &models.Faculty{ID: id, Name: name}, nil
	}
	return nil, sql.ErrNoRows
}

func (s scopeResolverStub) FindDepartment(ctx context.Context, id string) (*models.Department, error) {
	if name, ok := s.departments[id]; ok {
		return &models.Department{ID: id, Name: name}, nil
	}
	return nil, sql.ErrNoRows
}

func (s scopeResolverStub) FindProgram(ctx context.Context, id string) (*models.Program, error) {
	if name, ok := s.programs[id]; ok {
		return &models.Program{ID: id, Name: name}, nil
	}
	return nil, sql.ErrNoRows
}

func (s scopeResolverStub) FindSession(ctx context.Context, id string) (*models.AdmissionSession, error) {
	if name, ok := s.sessions[id]; ok {
		return &models.AdmissionSession{ID: id, Name: name}, nil
	}
	return nil, sql.ErrNoRows
}

type assignerStub struct {
	failWith map[string]error
	assigned []string
}

func (s *assignerStub) Assign(ctx context.Context, applicationID, officerID string) (*models.Application, error) {
	if err, ok := s.failWith[applicationID]; ok {
		return nil, err
	}
	s.assigned = append(s.assigned, applicationID)
	officer := officerID
	return &models.Application{
		ID:                applicationID,
		ApplicantID:       "applicant-" + applicationID,
		Status:            models.ApplicationStatusUnderReview,
		AssignedOfficerID: &officer,
	}, nil
}

type cacheStub struct {
	hits       int
	sets       int
	deletes    int
	cachedJSON string
}

func (s *cacheStub) Get(ctx context.Context, key string, dest interface{}) error {
	if s.cachedJSON == "" {
		return appErrors.ErrCacheMiss
	}
	s.hits++
	preview := dest.(*models.AssignmentPreview)
	preview.TotalAvailable = 42
	return nil
}

func (s *cacheStub) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	s.sets++
	return nil
}

func (s *cacheStub) DeleteByPattern(ctx context.Context, pattern string) error {
	s.deletes++
	return nil
}

type notifierStub struct {
	officerNotices   []int
	applicantNotices []string
}

func (s *notifierStub) NotifyOfficerAssigned(officerID string, assigned int) {
	s.officerNotices = append(s.officerNotices, assigned)
}

func (s *notifierStub) NotifyApplicantAssigned(applicantID, applicationID string) {
	s.applicantNotices = append(s.applicantNotices, applicationID)
}

func unassignedApps(ids ...string) []models.Application {
	apps := make([]models.Application, 0, len(ids))
	base := time.Now().UTC().Add(-24 * time.Hour)
	for i, id := range ids {
		submitted := base.Add(time.Duration(i) * time.Minute)
		apps = append(apps, models.Application{
			ID:          id,
			ApplicantID: "applicant-" + id,
			Status:      models.ApplicationStatusSubmitted,
			SubmittedAt: &submitted,
		})
	}
	return apps
}

func defaultResolver() scopeResolverStub {
	return scopeResolverStub{
		faculties:   map[string]string{"fac-1": "Science"},
		departments: map[string]string{"dep-1": "Computer Science"},
		programs:    map[string]string{"prog-1": "BSc Computer Science"},
		sessions:    map[string]string{"session-1": "2026/2027"},
	}
}

func newAssignmentFixture(repo *assignmentRepoStub, assigner *assignerStub) (*AssignmentService, *cacheStub, *notifierStub) {
	cache := &cacheStub{}
	notifier := &notifierStub{}
	officers := officerReaderStub{officers: map[string]*models.User{"officer-1": activeOfficer("officer-1")}}
	svc := NewAssignmentService(repo, officers, defaultResolver(), assigner,
		cache, notifier, &auditLoggerStub{}, nil, validator.New(), nil, 200, time.Minute)
	return svc, cache, notifier
}

func distributeRequest(count int) dto.DistributeRequest {
	return dto.DistributeRequest{
		OfficerID:     "officer-1",
		ScopeType:     "FACULTY",
		ScopeTargetID: "fac-1",
		SessionID:     "session-1",
		Count:         count,
	}
}

func TestDistributeAssignsOldestFirst(t *testing.T) {
	repo := &assignmentRepoStub{unassigned: unassignedApps("app-1", "app-2", "app-3")}
	assigner := &assignerStub{}
	svc, cache, notifier := newAssignmentFixture(repo, assigner)

	result, err := svc.Distribute(context.Background(), distributeRequest(3), "admin")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.AssignedCount)
	assert.Equal(t, 3, result.TotalRequested)
	assert.Empty(t, result.Errors)
	// Candidate order from the repository is preserved end to end.
	assert.Equal(t, []string{"app-1", "app-2", "app-3"}, assigner.assigned)
	assert.Equal(t, 1, cache.deletes)
	assert.Equal(t, []int{3}, notifier.officerNotices)
	assert.Len(t, notifier.applicantNotices, 3)
}

func TestDistributePartialSuccessOnClaimRace(t *testing.T) {
	repo := &assignmentRepoStub{unassigned: unassignedApps("app-1", "app-2", "app-3")}
	assigner := &assignerStub{failWith: map[string]error{
		"app-2": appErrors.Clone(appErrors.ErrConflict, "application was claimed concurrently"),
	}}
	svc, _, notifier := newAssignmentFixture(repo, assigner)

	result, err := svc.Distribute(context.Background(), distributeRequest(3), "admin")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.AssignedCount)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "app-2", result.Errors[0].ApplicationID)
	assert.Equal(t, appErrors.ErrConflict.Code, result.Errors[0].Code)
	assert.Equal(t, []int{2}, notifier.officerNotices)
}

func TestDistributeNothingAvailable(t *testing.T) {
	repo := &assignmentRepoStub{}
	assigner := &assignerStub{}
	svc, _, notifier := newAssignmentFixture(repo, assigner)

	result, err := svc.Distribute(context.Background(), distributeRequest(5), "admin")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Zero(t, result.AssignedCount)
	assert.Empty(t, result.Errors)
	assert.Empty(t, notifier.officerNotices)
}

func TestDistributeFewerCandidatesThanRequested(t *testing.T) {
	repo := &assignmentRepoStub{unassigned: unassignedApps("app-1", "app-2")}
	assigner := &assignerStub{}
	svc, _, _ := newAssignmentFixture(repo, assigner)

	result, err := svc.Distribute(context.Background(), distributeRequest(10), "admin")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 2, result.AssignedCount)
	assert.Equal(t, 10, result.TotalRequested)
	assert.Equal(t, 10, repo.limitSeen)
}

func TestDistributeRejectsBadCount(t *testing.T) {
	svc, _, _ := newAssignmentFixture(&assignmentRepoStub{}, &assignerStub{})

	_, err := svc.Distribute(context.Background(), distributeRequest(0), "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = svc.Distribute(context.Background(), distributeRequest(500), "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDistributeUnknownOfficer(t *testing.T) {
	svc, _, _ := newAssignmentFixture(&assignmentRepoStub{}, &assignerStub{})

	req := distributeRequest(3)
	req.OfficerID = "ghost"
	_, err := svc.Distribute(context.Background(), req, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDistributeUnknownScopeTarget(t *testing.T) {
	svc, _, _ := newAssignmentFixture(&assignmentRepoStub{}, &assignerStub{})

	req := distributeRequest(3)
	req.ScopeTargetID = "fac-missing"
	_, err := svc.Distribute(context.Background(), req, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestDistributeInvalidScopeType(t *testing.T) {
	svc, _, _ := newAssignmentFixture(&assignmentRepoStub{}, &assignerStub{})

	req := distributeRequest(3)
	req.ScopeType = "SCHOOL"
	_, err := svc.Distribute(context.Background(), req, "admin")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestDistributeRandomScopeNeedsNoTarget(t *testing.T) {
	repo := &assignmentRepoStub{unassigned: unassignedApps("app-1")}
	svc, _, _ := newAssignmentFixture(repo, &assignerStub{})

	req := dto.DistributeRequest{OfficerID: "officer-1", ScopeType: "RANDOM", Count: 1}
	result, err := svc.Distribute(context.Background(), req, "admin")
	require.NoError(t, err)
	assert.Equal(t, 1, result.AssignedCount)
	assert.Equal(t, models.ScopeRandom, repo.scopeSeen.Type)
	assert.Empty(t, repo.scopeSeen.TargetID)
}

func TestPreviewResolvesTargetName(t *testing.T) {
	repo := &assignmentRepoStub{preview: models.AssignmentPreview{TotalAvailable: 7, UnassignedCount: 5, AssignedCount: 2}}
	svc, cache, _ := newAssignmentFixture(repo, &assignerStub{})

	preview, err := svc.Preview(context.Background(), dto.PreviewQuery{ScopeType: "DEPARTMENT", ScopeTargetID: "dep-1"})
	require.NoError(t, err)
	assert.Equal(t, 7, preview.TotalAvailable)
	assert.Equal(t, "Computer Science", preview.TargetName)
	assert.Equal(t, 1, cache.sets)
}

func TestPreviewServedFromCache(t *testing.T) {
	repo := &assignmentRepoStub{}
	svc, cache, _ := newAssignmentFixture(repo, &assignerStub{})
	cache.cachedJSON = "cached"

	preview, err := svc.Preview(context.Background(), dto.PreviewQuery{ScopeType: "PROGRAM", ScopeTargetID: "prog-1"})
	require.NoError(t, err)
	assert.Equal(t, 42, preview.TotalAvailable)
	assert.Equal(t, 1, cache.hits)
	assert.Zero(t, cache.sets)
}

func TestPreviewUnknownSession(t *testing.T) {
	svc, _, _ := newAssignmentFixture(&assignmentRepoStub{}, &assignerStub{})

	_, err := svc.Preview(context.Background(), dto.PreviewQuery{ScopeType: "RANDOM", SessionID: "session-missing"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestOfficerApplications(t *testing.T) {
	repo := &assignmentRepoStub{listed: []models.ApplicationDetail{
		{Application: models.Application{ID: "app-1"}, ApplicantName: "Ada"},
	}}
	svc, _, _ := newAssignmentFixture(repo, &assignerStub{})

	apps, total, err := svc.OfficerApplications(context.Background(), "officer-1", 1, 20)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, apps, 1)
	assert.Equal(t, "Ada", apps[0].ApplicantName)
}

func TestOfficerApplicationsUnknownOfficer(t *testing.T) {
	svc, _, _ := newAssignmentFixture(&assignmentRepoStub{}, &assignerStub{})

	_, _, err := svc.OfficerApplications(context.Background(), "ghost", 1, 20)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
