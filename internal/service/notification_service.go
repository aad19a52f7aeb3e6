package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/pkg/config"
	"github.com/noah-isme/uni-admissions-api/pkg/jobs"
)

type notificationPublisher interface {
	Publish(ctx context.Context, channel string, value interface{}) error
}

// NotificationService delivers best-effort outbound notifications through an
// in-memory worker queue. Delivery publishes to a Redis channel consumed by
// the realtime gateway; a failed delivery is retried by the queue and, once
// retries are exhausted, dropped and logged. Nothing here ever rolls back the
// workflow change that produced the notification.
type NotificationService struct {
	queue     *jobs.Queue
	publisher notificationPublisher
	logger    *zap.Logger
	channel   string
	enabled   bool
}

// NewNotificationService constructs the dispatcher and its queue.
func NewNotificationService(publisher notificationPublisher, logger *zap.Logger, cfg config.NotificationsConfig) *NotificationService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &NotificationService{
		publisher: publisher,
		logger:    logger,
		channel:   cfg.Channel,
		enabled:   cfg.Enabled,
	}
	s.queue = jobs.NewQueue("notifications", s.deliver, jobs.QueueConfig{
		Workers:    cfg.Workers,
		BufferSize: cfg.BufferSize,
		MaxRetries: cfg.MaxRetries,
		RetryDelay: cfg.RetryDelay,
		Logger:     logger,
	})
	return s
}

// Start launches the delivery workers.
func (s *NotificationService) Start(ctx context.Context) {
	if !s.enabled {
		s.logger.Info("notifications disabled")
		return
	}
	s.queue.Start(ctx)
}

// Stop drains the workers.
func (s *NotificationService) Stop() {
	if !s.enabled {
		return
	}
	s.queue.Stop()
}

// Dispatch enqueues a notification without blocking the caller's flow.
func (s *NotificationService) Dispatch(n models.Notification) {
	if !s.enabled {
		return
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now().UTC()
	}
	job := jobs.Job{
		ID:      uuid.NewString(),
		Type:    string(n.Kind),
		Payload: n,
	}
	if err := s.queue.Enqueue(job); err != nil {
		s.logger.Warn("failed to enqueue notification",
			zap.String("kind", string(n.Kind)),
			zap.String("recipient_id", n.RecipientID),
			zap.Error(err))
	}
}

// NotifyOfficerAssigned tells an officer about a freshly distributed batch.
func (s *NotificationService) NotifyOfficerAssigned(officerID string, assigned int) {
	s.Dispatch(models.Notification{
		RecipientID: officerID,
		Kind:        models.NotificationOfficerAssigned,
		Subject:     "Applications assigned to you",
		Body:        fmt.Sprintf("%d application(s) have been assigned to you for review.", assigned),
	})
}

// NotifyApplicantAssigned tells an applicant their application is under review.
func (s *NotificationService) NotifyApplicantAssigned(applicantID, applicationID string) {
	s.Dispatch(models.Notification{
		RecipientID:   applicantID,
		Kind:          models.NotificationApplicantAssigned,
		Subject:       "Your application is under review",
		Body:          "Your application has been assigned to an admission officer for review.",
		ApplicationID: applicationID,
	})
}

// NotifyDecision tells an applicant the review outcome.
func (s *NotificationService) NotifyDecision(applicantID, applicationID string, status models.ApplicationStatus) {
	s.Dispatch(models.Notification{
		RecipientID:   applicantID,
		Kind:          models.NotificationDecision,
		Subject:       "Your application has been reviewed",
		Body:          fmt.Sprintf("Your application status is now %s.", status),
		ApplicationID: applicationID,
	})
}

func (s *NotificationService) deliver(ctx context.Context, job jobs.Job) error {
	n, ok := job.Payload.(models.Notification)
	if !ok {
		s.logger.Error("dropping notification with unexpected payload", zap.String("job_id", job.ID))
		return nil
	}
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, s.channel, n); err != nil {
			return err
		}
	}
	s.logger.Info("notification delivered",
		zap.String("kind", string(n.Kind)),
		zap.String("recipient_id", n.RecipientID),
		zap.String("application_id", n.ApplicationID))
	return nil
}
