package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/uni-admissions-api/internal/models"
	"github.com/noah-isme/uni-admissions-api/pkg/config"
)

type publisherStub struct {
	published chan publishedMessage
}

type publishedMessage struct {
	channel string
	value   interface{}
}

func (p *publisherStub) Publish(ctx context.Context, channel string, value interface{}) error {
	p.published <- publishedMessage{channel: channel, value: value}
	return nil
}

func notificationConfig(enabled bool) config.NotificationsConfig {
	return config.NotificationsConfig{
		Enabled:    enabled,
		Channel:    "admissions.notifications",
		Workers:    1,
		BufferSize: 4,
		MaxRetries: 1,
		RetryDelay: 10 * time.Millisecond,
	}
}

func TestNotificationServiceDeliversDecision(t *testing.T) {
	pub := &publisherStub{published: make(chan publishedMessage, 1)}
	svc := NewNotificationService(pub, nil, notificationConfig(true))
	svc.Start(context.Background())
	defer svc.Stop()

	svc.NotifyDecision("applicant-1", "app-1", models.ApplicationStatusApproved)

	select {
	case msg := <-pub.published:
		assert.Equal(t, "admissions.notifications", msg.channel)
		n, ok := msg.value.(models.Notification)
		require.True(t, ok)
		assert.Equal(t, models.NotificationDecision, n.Kind)
		assert.Equal(t, "applicant-1", n.RecipientID)
		assert.Equal(t, "app-1", n.ApplicationID)
		assert.Contains(t, n.Body, "APPROVED")
		assert.False(t, n.CreatedAt.IsZero())
	case <-time.After(2 * time.Second):
		t.Fatal("notification was not delivered")
	}
}

func TestNotificationServiceDisabledDropsSilently(t *testing.T) {
	pub := &publisherStub{published: make(chan publishedMessage, 1)}
	svc := NewNotificationService(pub, nil, notificationConfig(false))
	svc.Start(context.Background())
	defer svc.Stop()

	svc.NotifyOfficerAssigned("officer-1", 5)

	select {
	case <-pub.published:
		t.Fatal("disabled service must not publish")
	case <-time.After(50 * time.Millisecond):
	}
}
