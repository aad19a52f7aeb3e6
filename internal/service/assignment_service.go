package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/dto"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type assignmentApplicationRepo interface {
	FindUnassigned(ctx context.Context, scope models.AssignmentScope, limit int) ([]models.Application, error)
	ScopeCounts(ctx context.Context, scope models.AssignmentScope) (*models.AssignmentPreview, error)
	List(ctx context.Context, filter models.ApplicationFilter) ([]models.ApplicationDetail, int, error)
}

type scopeResolver interface {
	FindFaculty(ctx context.Context, id string) (*models.Faculty, error)
	FindDepartment(ctx context.Context, id string) (*models.Department, error)
	FindProgram(ctx context.Context, id string) (*models.Program, error)
	FindSession(ctx context.Context, id string) (*models.AdmissionSession, error)
}

type applicationAssigner interface {
	Assign(ctx context.Context, applicationID, officerID string) (*models.Application, error)
}

type previewCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

type assignmentNotifier interface {
	NotifyOfficerAssigned(officerID string, assigned int)
	NotifyApplicantAssigned(applicantID, applicationID string)
}

const previewCachePrefix = "assignment:preview"

// AssignmentService distributes unassigned applications to admission
// officers. Candidate selection is oldest-submitted-first within the
// requested scope; each candidate is claimed individually, so two concurrent
// distributions over the same scope split the pool instead of double
// assigning, and a batch that claims only part of its quota still reports
// what it did claim.
type AssignmentService struct {
	applications assignmentApplicationRepo
	officers     officerReader
	programs     scopeResolver
	workflow     applicationAssigner
	cache        previewCache
	notifier     assignmentNotifier
	audit        auditWriter
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	maxBatchSize int
	previewTTL   time.Duration
}

// NewAssignmentService constructs the distributor.
func NewAssignmentService(
	applications assignmentApplicationRepo,
	officers officerReader,
	programs scopeResolver,
	workflow applicationAssigner,
	cache previewCache,
	notifier assignmentNotifier,
	audit auditWriter,
	metrics *MetricsService,
	validate *validator.Validate,
	logger *zap.Logger,
	maxBatchSize int,
	previewTTL time.Duration,
) *AssignmentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBatchSize <= 0 {
		maxBatchSize = 200
	}
	if previewTTL <= 0 {
		previewTTL = time.Minute
	}
	return &AssignmentService{
		applications: applications,
		officers:     officers,
		programs:     programs,
		workflow:     workflow,
		cache:        cache,
		notifier:     notifier,
		audit:        audit,
		metrics:      metrics,
		validator:    validate,
		logger:       logger,
		maxBatchSize: maxBatchSize,
		previewTTL:   previewTTL,
	}
}

// Preview reports how many applications a distribution over the same scope
// would see, without claiming anything. Results are cached briefly; the cache
// is invalidated whenever a distribution lands.
func (s *AssignmentService) Preview(ctx context.Context, query dto.PreviewQuery) (*models.AssignmentPreview, error) {
	scope, targetName, err := s.resolveScope(ctx, query.ScopeType, query.ScopeTargetID, query.SessionID)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s:%s:%s:%s", previewCachePrefix, scope.Type, scope.TargetID, scope.SessionID)
	if s.cache != nil {
		started := time.Now()
		var cached models.AssignmentPreview
		if err := s.cache.Get(ctx, key, &cached); err == nil {
			s.recordCacheOperation(true, time.Since(started))
			return &cached, nil
		}
		s.recordCacheOperation(false, time.Since(started))
	}

	preview, err := s.applications.ScopeCounts(ctx, scope)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to count scope applications")
	}
	preview.TargetName = targetName

	if s.cache != nil {
		if err := s.cache.Set(ctx, key, preview, s.previewTTL); err != nil {
			s.logger.Warn("failed to cache assignment preview", zap.String("key", key), zap.Error(err))
		}
	}
	return preview, nil
}

// Distribute hands up to req.Count unassigned applications in the scope to
// the officer. Candidates that lose their claim race are recorded as item
// errors and skipped; the batch fails as a whole only when nothing at all
// could be assigned.
func (s *AssignmentService) Distribute(ctx context.Context, req dto.DistributeRequest, actorID string) (*models.AssignmentResult, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid distribution request")
	}
	if req.Count > s.maxBatchSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("count may not exceed %d", s.maxBatchSize))
	}

	officer, err := s.officers.FindOfficer(ctx, req.OfficerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "officer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load officer")
	}
	if !officer.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "officer is inactive")
	}

	scope, _, err := s.resolveScope(ctx, req.ScopeType, req.ScopeTargetID, req.SessionID)
	if err != nil {
		return nil, err
	}

	candidates, err := s.applications.FindUnassigned(ctx, scope, req.Count)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to select candidates")
	}

	result := &models.AssignmentResult{
		OfficerID:      req.OfficerID,
		TotalRequested: req.Count,
	}
	conflicts := 0
	for _, candidate := range candidates {
		assigned, err := s.workflow.Assign(ctx, candidate.ID, req.OfficerID)
		if err != nil {
			appErr := appErrors.FromError(err)
			if appErr.Code == appErrors.ErrConflict.Code {
				conflicts++
			}
			result.Errors = append(result.Errors, models.AssignmentItemError{
				ApplicationID: candidate.ID,
				Code:          appErr.Code,
				Message:       appErr.Message,
			})
			continue
		}
		result.AssignedApplications = append(result.AssignedApplications, *assigned)
		result.AssignedCount++
		if s.notifier != nil {
			s.notifier.NotifyApplicantAssigned(assigned.ApplicantID, assigned.ID)
		}
	}
	result.Success = result.AssignedCount > 0
	result.CompletedAt = time.Now().UTC()

	if s.metrics != nil {
		s.metrics.RecordDistribution(string(scope.Type), result.AssignedCount, conflicts)
	}
	if result.AssignedCount > 0 && s.notifier != nil {
		s.notifier.NotifyOfficerAssigned(req.OfficerID, result.AssignedCount)
	}
	if s.cache != nil {
		if err := s.cache.DeleteByPattern(ctx, previewCachePrefix+":*"); err != nil {
			s.logger.Warn("failed to invalidate preview cache", zap.Error(err))
		}
	}
	s.emitAudit(ctx, actorID, result, scope)

	s.logger.Info("distribution batch completed",
		zap.String("officer_id", req.OfficerID),
		zap.String("scope", string(scope.Type)),
		zap.Int("requested", result.TotalRequested),
		zap.Int("assigned", result.AssignedCount),
		zap.Int("conflicts", conflicts))
	return result, nil
}

// OfficerApplications lists the applications currently held by an officer.
func (s *AssignmentService) OfficerApplications(ctx context.Context, officerID string, page, pageSize int) ([]models.ApplicationDetail, int, error) {
	if _, err := s.officers.FindOfficer(ctx, officerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, appErrors.Clone(appErrors.ErrNotFound, "officer not found")
		}
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load officer")
	}

	filter := models.ApplicationFilter{
		OfficerID: officerID,
		SortBy:    "assigned_at",
		SortOrder: "DESC",
		Page:      page,
		PageSize:  pageSize,
	}
	apps, total, err := s.applications.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list officer applications")
	}
	return apps, total, nil
}

func (s *AssignmentService) recordCacheOperation(hit bool, elapsed time.Duration) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit, elapsed)
	}
}

// resolveScope validates the scope vocabulary, confirms the target exists and
// returns the resolved filter plus a display name for previews. RANDOM takes
// no target; any provided one is ignored.
func (s *AssignmentService) resolveScope(ctx context.Context, scopeType, targetID, sessionID string) (models.AssignmentScope, string, error) {
	if !models.ValidScopeType(scopeType) {
		return models.AssignmentScope{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown scope type: %s", scopeType))
	}
	scope := models.AssignmentScope{Type: models.ScopeType(scopeType), SessionID: sessionID}

	var targetName string
	switch scope.Type {
	case models.ScopeRandom:
	default:
		if targetID == "" {
			return models.AssignmentScope{}, "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("scope %s requires a target", scopeType))
		}
		scope.TargetID = targetID
		name, err := s.resolveTargetName(ctx, scope.Type, targetID)
		if err != nil {
			return models.AssignmentScope{}, "", err
		}
		targetName = name
	}

	if sessionID != "" {
		if _, err := s.programs.FindSession(ctx, sessionID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return models.AssignmentScope{}, "", appErrors.Clone(appErrors.ErrNotFound, "admission session not found")
			}
			return models.AssignmentScope{}, "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load admission session")
		}
	}
	return scope, targetName, nil
}

func (s *AssignmentService) resolveTargetName(ctx context.Context, scopeType models.ScopeType, targetID string) (string, error) {
	var (
		name string
		err  error
	)
	switch scopeType {
	case models.ScopeFaculty:
		var faculty *models.Faculty
		if faculty, err = s.programs.FindFaculty(ctx, targetID); err == nil {
			name = faculty.Name
		}
	case models.ScopeDepartment:
		var department *models.Department
		if department, err = s.programs.FindDepartment(ctx, targetID); err == nil {
			name = department.Name
		}
	case models.ScopeProgram:
		var program *models.Program
		if program, err = s.programs.FindProgram(ctx, targetID); err == nil {
			name = program.Name
		}
	}
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", appErrors.Clone(appErrors.ErrNotFound, fmt.Sprintf("%s target not found", scopeType))
		}
		return "", appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve scope target")
	}
	return name, nil
}

func (s *AssignmentService) emitAudit(ctx context.Context, actorID string, result *models.AssignmentResult, scope models.AssignmentScope) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]interface{}{
		"officer_id":      result.OfficerID,
		"scope_type":      scope.Type,
		"scope_target_id": scope.TargetID,
		"session_id":      scope.SessionID,
		"requested":       result.TotalRequested,
		"assigned":        result.AssignedCount,
	})
	var userID *string
	if actorID != "" {
		userID = &actorID
	}
	log := &models.AuditLog{
		UserID:    userID,
		Action:    models.AuditActionAssignBatch,
		Resource:  "assignment",
		NewValues: payload,
		IPAddress: "system",
		UserAgent: "assignment-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
