package models

import "time"

// ScopeType selects which organizational unit a distribution call draws
// candidates from.
type ScopeType string

const (
	ScopeFaculty    ScopeType = "FACULTY"
	ScopeDepartment ScopeType = "DEPARTMENT"
	ScopeProgram    ScopeType = "PROGRAM"
	ScopeRandom     ScopeType = "RANDOM"
)

// ValidScopeType reports whether the raw value names a known scope.
func ValidScopeType(raw string) bool {
	switch ScopeType(raw) {
	case ScopeFaculty, ScopeDepartment, ScopeProgram, ScopeRandom:
		return true
	}
	return false
}

// AssignmentScope is the resolved candidate filter for distribution and
// preview queries.
type AssignmentScope struct {
	Type      ScopeType
	TargetID  string
	SessionID string
}

// AssignmentItemError records a single candidate that could not be assigned.
// Losing the claim race is recorded here, never escalated to the batch.
type AssignmentItemError struct {
	ApplicationID string `json:"application_id"`
	Code          string `json:"code"`
	Message       string `json:"message"`
}

// AssignmentResult reports the outcome of one distribution batch. Partial
// success is a first-class outcome: callers compare AssignedCount against
// TotalRequested rather than relying on Success alone.
type AssignmentResult struct {
	OfficerID            string                `json:"officer_id"`
	TotalRequested       int                   `json:"total_requested"`
	AssignedCount        int                   `json:"assigned_count"`
	Success              bool                  `json:"success"`
	AssignedApplications []Application         `json:"assigned_applications"`
	Errors               []AssignmentItemError `json:"errors,omitempty"`
	CompletedAt          time.Time             `json:"completed_at"`
}

// AssignmentPreview summarises what a distribution call over the same scope
// would see, without claiming anything.
type AssignmentPreview struct {
	TotalAvailable  int    `json:"total_available"`
	AssignedCount   int    `json:"assigned_count"`
	UnassignedCount int    `json:"unassigned_count"`
	TargetName      string `json:"target_name,omitempty"`
}
