package dto

// DistributeRequest asks for a batch of unassigned applications to be handed
// to one officer.
type DistributeRequest struct {
	OfficerID     string `json:"officerId" validate:"required"`
	ScopeType     string `json:"scopeType" validate:"required"`
	ScopeTargetID string `json:"scopeTargetId"`
	SessionID     string `json:"sessionId"`
	Count         int    `json:"count" validate:"required,gt=0"`
}

// PreviewQuery mirrors the preview endpoint's scope filter.
type PreviewQuery struct {
	ScopeType     string
	ScopeTargetID string
	SessionID     string
}
