package models

import (
	"time"

	"github.com/lib/pq"
)

// RequirementSubject names a subject a program demands, the minimum grade it
// accepts, and an optional alternate subject that may satisfy the slot
// instead (e.g. Further Mathematics in place of Biology).
type RequirementSubject struct {
	ID                 string  `db:"id" json:"id"`
	RequirementID      string  `db:"requirement_id" json:"requirement_id"`
	SubjectID          string  `db:"subject_id" json:"subject_id"`
	SubjectName        string  `db:"subject_name" json:"subject_name"`
	MinimumGrade       Grade   `db:"minimum_grade" json:"minimum_grade"`
	AlternateSubjectID *string `db:"alternate_subject_id" json:"alternate_subject_id,omitempty"`
}

// ProgramSSCRequirement is a program's SSC admission requirement record.
type ProgramSSCRequirement struct {
	ID                      string               `db:"id" json:"id"`
	ProgramID               string               `db:"program_id" json:"program_id"`
	MaximumNumberOfSittings int                  `db:"maximum_number_of_sittings" json:"maximum_number_of_sittings"`
	CertificateTypes        pq.StringArray       `db:"certificate_types" json:"certificate_types"`
	CreatedAt               time.Time            `db:"created_at" json:"created_at"`
	UpdatedAt               time.Time            `db:"updated_at" json:"updated_at"`
	Subjects                []RequirementSubject `json:"subjects"`
}

// AcceptsCertificate reports whether any of the applicant's certificate types
// is accepted by the requirement.
func (r *ProgramSSCRequirement) AcceptsCertificate(types []string) bool {
	for _, have := range types {
		for _, want := range r.CertificateTypes {
			if have == want {
				return true
			}
		}
	}
	return false
}
