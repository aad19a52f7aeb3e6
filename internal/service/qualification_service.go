package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/dto"
	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type qualificationStore interface {
	GetByID(ctx context.Context, id string) (*models.SSCQualification, error)
	GetByApplication(ctx context.Context, applicationID string) (*models.SSCQualification, error)
	Create(ctx context.Context, q *models.SSCQualification) error
	Update(ctx context.Context, q *models.SSCQualification) error
}

type requirementReader interface {
	GetByProgram(ctx context.Context, programID string) (*models.ProgramSSCRequirement, error)
}

type qualificationApplicationRepo interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	SetSSCComplete(ctx context.Context, id string, complete bool, at time.Time) error
}

// ValidateCompletion itemizes what is still missing from a qualification
// record. Completion is structural only; it says nothing about grades.
func ValidateCompletion(q *models.SSCQualification, maxSittings int) models.QualificationValidation {
	var missing []string

	if q == nil {
		return models.QualificationValidation{MissingFields: []string{"qualification"}}
	}
	if q.NumberOfSittings <= 0 || q.NumberOfSittings > maxSittings {
		missing = append(missing, "number_of_sittings")
	}
	if len(q.CertificateTypes) == 0 {
		missing = append(missing, "certificate_types")
	}
	for _, ct := range q.CertificateTypes {
		if !models.ValidCertificateType(ct) {
			missing = append(missing, "certificate_types")
			break
		}
	}
	if len(q.Subjects) < models.MaxSubjectSlots {
		for slot := len(q.Subjects) + 1; slot <= models.MaxSubjectSlots; slot++ {
			missing = append(missing, fmt.Sprintf("subject_slot_%d", slot))
		}
	}
	for _, s := range q.Subjects {
		if s.SubjectID == "" || !s.Grade.Valid() {
			missing = append(missing, fmt.Sprintf("subject_slot_%d", s.Slot))
		}
	}

	return models.QualificationValidation{Complete: len(missing) == 0, MissingFields: missing}
}

// PassingSubjects returns the subjects graded at the credit cut-off or better.
func PassingSubjects(q *models.SSCQualification) []models.SSCSubject {
	passing := make([]models.SSCSubject, 0, len(q.Subjects))
	for _, s := range q.Subjects {
		if s.Grade.IsPassing() {
			passing = append(passing, s)
		}
	}
	return passing
}

// PerformanceScore maps the declared grades onto a 0-100 scale. Each grade
// contributes linearly with its rank, A1 scoring 100 and F9 scoring 0, and
// the result is the mean over the gradeable subjects. No subjects scores zero.
func PerformanceScore(q *models.SSCQualification) float64 {
	span := float64(models.GradeWorstRank - models.GradeBestRank)
	var total float64
	graded := 0
	for _, s := range q.Subjects {
		rank := s.Grade.Rank()
		if rank == 0 {
			continue
		}
		total += float64(models.GradeWorstRank-rank) / span * 100
		graded++
	}
	if graded == 0 {
		return 0
	}
	return total / float64(graded)
}

// MeetsMinimumRequirements checks the qualification against a program's SSC
// requirement with AND semantics: every required subject must be present at
// its minimum grade or better. An alternate subject satisfies its slot under
// the same grade bar. A nil requirement can never be met.
func MeetsMinimumRequirements(q *models.SSCQualification, req *models.ProgramSSCRequirement) bool {
	if req == nil {
		return false
	}
	if q.NumberOfSittings > req.MaximumNumberOfSittings {
		return false
	}
	if len(req.CertificateTypes) > 0 && !req.AcceptsCertificate(q.CertificateTypes) {
		return false
	}
	for _, want := range req.Subjects {
		if !subjectSatisfied(q, want) {
			return false
		}
	}
	return true
}

func subjectSatisfied(q *models.SSCQualification, want models.RequirementSubject) bool {
	if grade, ok := q.GradeFor(want.SubjectID); ok && grade.IsAtLeast(want.MinimumGrade) {
		return true
	}
	if want.AlternateSubjectID != nil {
		if grade, ok := q.GradeFor(*want.AlternateSubjectID); ok && grade.IsAtLeast(want.MinimumGrade) {
			return true
		}
	}
	return false
}

// QualificationService owns the SSC qualification record and its eligibility
// evaluation against program requirements.
type QualificationService struct {
	qualifications qualificationStore
	requirements   requirementReader
	applications   qualificationApplicationRepo
	audit          auditWriter
	validator      *validator.Validate
	logger         *zap.Logger
	maxSittings    int
}

// NewQualificationService constructs the service.
func NewQualificationService(
	qualifications qualificationStore,
	requirements requirementReader,
	applications qualificationApplicationRepo,
	audit auditWriter,
	validate *validator.Validate,
	logger *zap.Logger,
	maxSittings int,
) *QualificationService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSittings <= 0 {
		maxSittings = 2
	}
	return &QualificationService{
		qualifications: qualifications,
		requirements:   requirements,
		applications:   applications,
		audit:          audit,
		validator:      validate,
		logger:         logger,
		maxSittings:    maxSittings,
	}
}

// GetByApplication returns the qualification record for an application.
func (s *QualificationService) GetByApplication(ctx context.Context, applicationID string) (*models.SSCQualification, error) {
	q, err := s.qualifications.GetByApplication(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "qualification not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load qualification")
	}
	return q, nil
}

// Evaluate runs the full evaluation for an application's qualification:
// completion, passing subjects, performance score and the minimum-requirement
// verdict for the application's program.
func (s *QualificationService) Evaluate(ctx context.Context, applicationID string) (*models.EvaluationReport, error) {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}

	q, err := s.GetByApplication(ctx, applicationID)
	if err != nil {
		return nil, err
	}

	req, err := s.requirements.GetByProgram(ctx, app.ProgramID)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program requirement")
		}
		s.logger.Warn("program has no ssc requirement configured", zap.String("program_id", app.ProgramID))
		req = nil
	}

	return s.buildReport(q, req), nil
}

// Update rewrites the qualification record for an application, re-validates
// completion, and returns a fresh evaluation. The request carries the version
// the caller read; a stale version is a conflict.
func (s *QualificationService) Update(ctx context.Context, applicationID string, req dto.UpdateQualificationRequest, actorID string) (*models.EvaluationReport, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid qualification payload")
	}
	if req.NumberOfSittings > s.maxSittings {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("number of sittings may not exceed %d", s.maxSittings))
	}
	for _, ct := range req.CertificateTypes {
		if !models.ValidCertificateType(ct) {
			return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown certificate type: %s", ct))
		}
	}

	subjects, err := buildSubjects(req.Subjects)
	if err != nil {
		return nil, err
	}

	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	if app.Status != models.ApplicationStatusDraft {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "qualification can only be edited while the application is a draft")
	}

	q, err := s.qualifications.GetByApplication(ctx, applicationID)
	switch {
	case err == nil:
		q.NumberOfSittings = req.NumberOfSittings
		q.CertificateTypes = pq.StringArray(req.CertificateTypes)
		q.Subjects = subjects
		q.Version = req.Version
		if err := s.qualifications.Update(ctx, q); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, appErrors.Clone(appErrors.ErrConflict, "qualification was modified concurrently, reload and retry")
			}
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update qualification")
		}
	case errors.Is(err, sql.ErrNoRows):
		q = &models.SSCQualification{
			ApplicationID:    applicationID,
			NumberOfSittings: req.NumberOfSittings,
			CertificateTypes: pq.StringArray(req.CertificateTypes),
			Subjects:         subjects,
		}
		if err := s.qualifications.Create(ctx, q); err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create qualification")
		}
	default:
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load qualification")
	}

	validation := ValidateCompletion(q, s.maxSittings)
	if err := s.applications.SetSSCComplete(ctx, applicationID, validation.Complete, time.Now().UTC()); err != nil {
		s.logger.Error("failed to flag ssc completion", zap.String("application_id", applicationID), zap.Error(err))
	}

	var requirement *models.ProgramSSCRequirement
	if loaded, reqErr := s.requirements.GetByProgram(ctx, app.ProgramID); reqErr == nil {
		requirement = loaded
	} else if !errors.Is(reqErr, sql.ErrNoRows) {
		return nil, appErrors.Wrap(reqErr, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program requirement")
	}

	s.emitAudit(ctx, actorID, applicationID, q)
	return s.buildReport(q, requirement), nil
}

func (s *QualificationService) buildReport(q *models.SSCQualification, req *models.ProgramSSCRequirement) *models.EvaluationReport {
	validation := ValidateCompletion(q, s.maxSittings)
	return &models.EvaluationReport{
		Qualification:            q,
		Validation:               validation,
		Complete:                 validation.Complete,
		PassingSubjects:          PassingSubjects(q),
		PerformanceScore:         PerformanceScore(q),
		MeetsMinimumRequirements: MeetsMinimumRequirements(q, req),
	}
}

func buildSubjects(slots []dto.SubjectSlot) ([]models.SSCSubject, error) {
	subjects := make([]models.SSCSubject, 0, len(slots))
	seen := make(map[string]struct{}, len(slots))
	for i, slot := range slots {
		grade, err := models.ParseGrade(slot.Grade)
		if err != nil {
			return nil, appErrors.Clone(appErrors.ErrValidation, err.Error())
		}
		if _, dup := seen[slot.SubjectID]; dup {
			return nil, appErrors.Clone(appErrors.ErrValidation, "a subject may only be declared once")
		}
		seen[slot.SubjectID] = struct{}{}
		subjects = append(subjects, models.SSCSubject{
			Slot:      i + 1,
			SubjectID: slot.SubjectID,
			Grade:     grade,
		})
	}
	return subjects, nil
}

func (s *QualificationService) emitAudit(ctx context.Context, actorID, applicationID string, q *models.SSCQualification) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(q)
	var userID *string
	if actorID != "" {
		userID = &actorID
	}
	log := &models.AuditLog{
		UserID:     userID,
		Action:     models.AuditActionQualificationUp,
		Resource:   "ssc_qualification",
		ResourceID: &applicationID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "qualification-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
