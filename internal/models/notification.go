package models

import "time"

// NotificationKind distinguishes outbound notification templates.
type NotificationKind string

const (
	NotificationOfficerAssigned   NotificationKind = "OFFICER_ASSIGNED"
	NotificationApplicantAssigned NotificationKind = "APPLICANT_ASSIGNED"
	NotificationDecision          NotificationKind = "APPLICATION_DECISION"
)

// Notification is a best-effort outbound message. Delivery failures are
// logged and never roll back the workflow change that triggered them.
type Notification struct {
	RecipientID   string           `json:"recipient_id"`
	Kind          NotificationKind `json:"kind"`
	Subject       string           `json:"subject"`
	Body          string           `json:"body"`
	ApplicationID string           `json:"application_id,omitempty"`
	CreatedAt     time.Time        `json:"created_at"`
}
