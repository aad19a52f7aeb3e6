package models

import "time"

// ApplicationStatus captures the workflow state of an admission application.
type ApplicationStatus string

const (
	ApplicationStatusDraft           ApplicationStatus = "DRAFT"
	ApplicationStatusSubmitted       ApplicationStatus = "SUBMITTED"
	ApplicationStatusUnderReview     ApplicationStatus = "UNDER_REVIEW"
	ApplicationStatusPendingApproval ApplicationStatus = "PENDING_APPROVAL"
	ApplicationStatusApproved        ApplicationStatus = "APPROVED"
	ApplicationStatusRejected        ApplicationStatus = "REJECTED"
	ApplicationStatusAdmitted        ApplicationStatus = "ADMITTED"
)

// Transition names the workflow operations that move an application between
// statuses.
type Transition string

const (
	TransitionSubmit Transition = "submit"
	TransitionAssign Transition = "assign"
	TransitionDecide Transition = "decide"
	TransitionAdmit  Transition = "admit"
)

// transitionSources defines, per transition, the statuses it may start from.
// Guard legality lives here and nowhere else; services consult this table
// instead of re-checking roles or statuses per endpoint.
var transitionSources = map[Transition][]ApplicationStatus{
	TransitionSubmit: {ApplicationStatusDraft},
	TransitionAssign: {ApplicationStatusSubmitted, ApplicationStatusUnderReview},
	TransitionDecide: {ApplicationStatusUnderReview, ApplicationStatusPendingApproval},
	TransitionAdmit:  {ApplicationStatusApproved},
}

// CanTransition reports whether the transition is legal from the given status.
func CanTransition(from ApplicationStatus, t Transition) bool {
	for _, s := range transitionSources[t] {
		if s == from {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition can leave the status.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusRejected || s == ApplicationStatusAdmitted
}

// DecisionOutcome is the reviewer verdict recorded by the decide transition.
type DecisionOutcome string

const (
	DecisionApproved DecisionOutcome = "APPROVED"
	DecisionRejected DecisionOutcome = "REJECTED"
)

// Application represents one admission application. Relationships are carried
// as identifiers; related records are loaded through their own repositories.
type Application struct {
	ID                string            `db:"id" json:"id"`
	ApplicantID       string            `db:"applicant_id" json:"applicant_id"`
	ProgramID         string            `db:"program_id" json:"program_id"`
	SessionID         string            `db:"session_id" json:"session_id"`
	Status            ApplicationStatus `db:"status" json:"status"`
	AssignedOfficerID *string           `db:"assigned_officer_id" json:"assigned_officer_id,omitempty"`
	AssignedAt        *time.Time        `db:"assigned_at" json:"assigned_at,omitempty"`
	SubmittedAt       *time.Time        `db:"submitted_at" json:"submitted_at,omitempty"`
	BiodataComplete   bool              `db:"biodata_complete" json:"biodata_complete"`
	SSCComplete       bool              `db:"ssc_complete" json:"ssc_complete"`
	RejectionReason   *string           `db:"rejection_reason" json:"rejection_reason,omitempty"`
	AdminComments     *string           `db:"admin_comments" json:"admin_comments,omitempty"`
	HOAComments       *string           `db:"hoa_comments" json:"hoa_comments,omitempty"`
	CreatedAt         time.Time         `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time         `db:"updated_at" json:"updated_at"`
}

// ApplicationDetail joins contextual names onto an application row.
type ApplicationDetail struct {
	Application
	ApplicantName string `db:"applicant_name" json:"applicant_name"`
	ProgramName   string `db:"program_name" json:"program_name"`
	SessionName   string `db:"session_name" json:"session_name"`
}

// ApplicationFilter constrains application listing queries.
type ApplicationFilter struct {
	Status      []ApplicationStatus
	ApplicantID string
	ProgramID   string
	SessionID   string
	OfficerID   string
	Page        int
	PageSize    int
	SortBy      string
	SortOrder   string
}
