package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	appErrors "github.com/noah-isme/uni-admissions-api/pkg/errors"
)

type workflowApplicationRepo interface {
	FindByID(ctx context.Context, id string) (*models.Application, error)
	MarkSubmitted(ctx context.Context, id string, at time.Time) error
	Claim(ctx context.Context, id, officerID string, at time.Time) error
	Reassign(ctx context.Context, id, fromOfficerID, toOfficerID string, at time.Time) error
	RecordDecision(ctx context.Context, id string, from, to models.ApplicationStatus, reason, comments *string, at time.Time) error
	MarkAdmitted(ctx context.Context, id string, at time.Time) error
}

type officerReader interface {
	FindOfficer(ctx context.Context, id string) (*models.User, error)
}

type auditWriter interface {
	CreateAuditLog(ctx context.Context, log *models.AuditLog) error
}

type transitionRecorder interface {
	RecordTransition(transition, result string)
}

type decisionNotifier interface {
	NotifyDecision(applicantID, applicationID string, status models.ApplicationStatus)
}

// WorkflowService is the application status state machine. Every status
// change in the system flows through one of its transition methods; guard
// legality is defined once in the models transition table and enforced here,
// backed by status-guarded updates so an illegal or raced transition mutates
// nothing.
type WorkflowService struct {
	applications workflowApplicationRepo
	officers     officerReader
	audit        auditWriter
	notifier     decisionNotifier
	metrics      transitionRecorder
	logger       *zap.Logger
}

// NewWorkflowService constructs the state machine service.
func NewWorkflowService(applications workflowApplicationRepo, officers officerReader, audit auditWriter, notifier decisionNotifier, metrics transitionRecorder, logger *zap.Logger) *WorkflowService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WorkflowService{
		applications: applications,
		officers:     officers,
		audit:        audit,
		notifier:     notifier,
		metrics:      metrics,
		logger:       logger,
	}
}

// Submit moves a draft application into SUBMITTED. The application's
// mandatory sub-records must have been marked complete by their owning flows.
func (s *WorkflowService) Submit(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(app.Status, models.TransitionSubmit) {
		return nil, appErrors.InvalidTransition(string(app.Status), string(models.TransitionSubmit))
	}

	var missing []string
	if !app.BiodataComplete {
		missing = append(missing, "biodata")
	}
	if !app.SSCComplete {
		missing = append(missing, "ssc_qualification")
	}
	if len(missing) > 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "application is incomplete: "+strings.Join(missing, ", "))
	}

	now := time.Now().UTC()
	if err := s.applications.MarkSubmitted(ctx, app.ID, now); err != nil {
		return nil, s.mapTransitionErr(err, app.Status, models.TransitionSubmit)
	}

	app.Status = models.ApplicationStatusSubmitted
	app.SubmittedAt = &now
	app.UpdatedAt = now
	s.recordTransition(models.TransitionSubmit, "success")
	s.emitAudit(ctx, nil, app.ID, models.TransitionSubmit, app.Status)
	return app, nil
}

// Assign claims an unassigned reviewable application for an officer and
// moves it into UNDER_REVIEW. An application already under review by the
// same officer is a no-op; one held by anybody else is a conflict, and the
// only way out of that is the explicit Reassign operation.
func (s *WorkflowService) Assign(ctx context.Context, applicationID, officerID string) (*models.Application, error) {
	officer, err := s.officers.FindOfficer(ctx, officerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "officer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load officer")
	}
	if !officer.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "officer is inactive")
	}

	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.AssignedOfficerID != nil {
		if *app.AssignedOfficerID == officerID && app.Status == models.ApplicationStatusUnderReview {
			return app, nil
		}
		return nil, appErrors.Clone(appErrors.ErrConflict, "application is already assigned")
	}
	if !models.CanTransition(app.Status, models.TransitionAssign) {
		return nil, appErrors.InvalidTransition(string(app.Status), string(models.TransitionAssign))
	}

	now := time.Now().UTC()
	if err := s.applications.Claim(ctx, app.ID, officerID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Lost the claim race to a concurrent distribution.
			s.recordTransition(models.TransitionAssign, "conflict")
			return nil, appErrors.Clone(appErrors.ErrConflict, "application was claimed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to claim application")
	}

	app.Status = models.ApplicationStatusUnderReview
	app.AssignedOfficerID = &officerID
	app.AssignedAt = &now
	app.UpdatedAt = now
	s.recordTransition(models.TransitionAssign, "success")
	s.emitAudit(ctx, &officerID, app.ID, models.TransitionAssign, app.Status)
	return app, nil
}

// Reassign moves an already-assigned application to another officer. This is
// the only legal way to change a non-null assignee.
func (s *WorkflowService) Reassign(ctx context.Context, applicationID, toOfficerID string, actorID string) (*models.Application, error) {
	officer, err := s.officers.FindOfficer(ctx, toOfficerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "officer not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load officer")
	}
	if !officer.Active {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "officer is inactive")
	}

	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if app.AssignedOfficerID == nil {
		return nil, appErrors.Clone(appErrors.ErrPreconditionFailed, "application has no assigned officer")
	}
	if *app.AssignedOfficerID == toOfficerID {
		return app, nil
	}
	if app.Status.IsTerminal() {
		return nil, appErrors.InvalidTransition(string(app.Status), "reassign")
	}

	now := time.Now().UTC()
	if err := s.applications.Reassign(ctx, app.ID, *app.AssignedOfficerID, toOfficerID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "application assignment changed concurrently")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign application")
	}

	previous := *app.AssignedOfficerID
	app.AssignedOfficerID = &toOfficerID
	app.AssignedAt = &now
	app.UpdatedAt = now
	s.logger.Info("application reassigned",
		zap.String("application_id", app.ID),
		zap.String("from_officer", previous),
		zap.String("to_officer", toOfficerID))
	s.emitAuditAction(ctx, &actorID, app.ID, models.AuditActionReassign, app.Status)
	return app, nil
}

// Decide records the reviewer verdict. A rejection without a reason is a
// validation error, never a silent default.
func (s *WorkflowService) Decide(ctx context.Context, applicationID string, outcome models.DecisionOutcome, reason, comments string, actorID string) (*models.Application, error) {
	if outcome != models.DecisionApproved && outcome != models.DecisionRejected {
		return nil, appErrors.Clone(appErrors.ErrValidation, "outcome must be APPROVED or REJECTED")
	}
	if outcome == models.DecisionRejected && strings.TrimSpace(reason) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "a rejection requires a reason")
	}

	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(app.Status, models.TransitionDecide) {
		return nil, appErrors.InvalidTransition(string(app.Status), string(models.TransitionDecide))
	}

	target := models.ApplicationStatusApproved
	var rejectionReason *string
	if outcome == models.DecisionRejected {
		target = models.ApplicationStatusRejected
		trimmed := strings.TrimSpace(reason)
		rejectionReason = &trimmed
	}
	var adminComments *string
	if trimmed := strings.TrimSpace(comments); trimmed != "" {
		adminComments = &trimmed
	}

	now := time.Now().UTC()
	if err := s.applications.RecordDecision(ctx, app.ID, app.Status, target, rejectionReason, adminComments, now); err != nil {
		return nil, s.mapTransitionErr(err, app.Status, models.TransitionDecide)
	}

	app.Status = target
	app.RejectionReason = rejectionReason
	if adminComments != nil {
		app.AdminComments = adminComments
	}
	app.UpdatedAt = now
	s.recordTransition(models.TransitionDecide, "success")
	s.emitAudit(ctx, &actorID, app.ID, models.TransitionDecide, app.Status)
	if s.notifier != nil {
		s.notifier.NotifyDecision(app.ApplicantID, app.ID, app.Status)
	}
	return app, nil
}

// Admit finalizes an approved application once the acceptance fee has been
// confirmed by the payment flow.
func (s *WorkflowService) Admit(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := s.load(ctx, applicationID)
	if err != nil {
		return nil, err
	}
	if !models.CanTransition(app.Status, models.TransitionAdmit) {
		return nil, appErrors.InvalidTransition(string(app.Status), string(models.TransitionAdmit))
	}

	now := time.Now().UTC()
	if err := s.applications.MarkAdmitted(ctx, app.ID, now); err != nil {
		return nil, s.mapTransitionErr(err, app.Status, models.TransitionAdmit)
	}

	app.Status = models.ApplicationStatusAdmitted
	app.UpdatedAt = now
	s.recordTransition(models.TransitionAdmit, "success")
	s.emitAudit(ctx, nil, app.ID, models.TransitionAdmit, app.Status)
	return app, nil
}

func (s *WorkflowService) load(ctx context.Context, applicationID string) (*models.Application, error) {
	app, err := s.applications.FindByID(ctx, applicationID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "application not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load application")
	}
	return app, nil
}

func (s *WorkflowService) recordTransition(t models.Transition, result string) {
	if s.metrics != nil {
		s.metrics.RecordTransition(string(t), result)
	}
}

// mapTransitionErr translates a guarded-update miss into a conflict: the
// status guard passed in memory but the row moved on before the write.
func (s *WorkflowService) mapTransitionErr(err error, from models.ApplicationStatus, t models.Transition) error {
	if errors.Is(err, sql.ErrNoRows) {
		s.recordTransition(t, "conflict")
		return appErrors.Clone(appErrors.ErrConflict, "application status changed concurrently")
	}
	s.logger.Error("transition failed",
		zap.String("transition", string(t)),
		zap.String("from", string(from)),
		zap.Error(err))
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to apply transition")
}

func (s *WorkflowService) emitAudit(ctx context.Context, actorID *string, applicationID string, t models.Transition, result models.ApplicationStatus) {
	s.emitAuditAction(ctx, actorID, applicationID, models.AuditActionTransition+":"+strings.ToUpper(string(t)), result)
}

func (s *WorkflowService) emitAuditAction(ctx context.Context, actorID *string, applicationID, action string, result models.ApplicationStatus) {
	if s.audit == nil {
		return
	}
	payload, _ := json.Marshal(map[string]string{"status": string(result)})
	log := &models.AuditLog{
		UserID:     actorID,
		Action:     action,
		Resource:   "application",
		ResourceID: &applicationID,
		NewValues:  payload,
		IPAddress:  "system",
		UserAgent:  "workflow-service",
	}
	if err := s.audit.CreateAuditLog(ctx, log); err != nil {
		s.logger.Warn("failed to persist audit log", zap.Error(err))
	}
}
