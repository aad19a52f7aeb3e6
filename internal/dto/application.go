package dto

// DecisionRequest carries a reviewer verdict. Reason is mandatory when the
// outcome is REJECTED.
type DecisionRequest struct {
	Outcome  string `json:"outcome" validate:"required,oneof=APPROVED REJECTED"`
	Reason   string `json:"reason"`
	Comments string `json:"comments"`
}

// ReassignRequest moves an already-assigned application to another officer.
type ReassignRequest struct {
	OfficerID string `json:"officerId" validate:"required"`
}
