package dto

// SubjectSlot is one declared subject/grade pair. Both halves are required;
// a half-filled slot is rejected, never stored.
type SubjectSlot struct {
	SubjectID string `json:"subjectId" validate:"required"`
	Grade     string `json:"grade" validate:"required"`
}

// UpdateQualificationRequest rewrites an applicant's SSC record. Version is
// the value read before editing; a stale version is rejected with a conflict.
type UpdateQualificationRequest struct {
	NumberOfSittings int           `json:"numberOfSittings" validate:"required,gt=0"`
	CertificateTypes []string      `json:"certificateTypes" validate:"required,min=1"`
	Subjects         []SubjectSlot `json:"subjects" validate:"max=5,dive"`
	Version          int           `json:"version"`
}
