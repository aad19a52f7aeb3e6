package models

import (
	"time"

	"github.com/lib/pq"
)

// CertificateType identifies the examination body that issued an SSC result.
type CertificateType string

const (
	CertificateWAEC   CertificateType = "WAEC"
	CertificateNECO   CertificateType = "NECO"
	CertificateGCE    CertificateType = "GCE"
	CertificateNABTEB CertificateType = "NABTEB"
)

// CertificateTypes lists the accepted vocabulary.
var CertificateTypes = []CertificateType{CertificateWAEC, CertificateNECO, CertificateGCE, CertificateNABTEB}

// ValidCertificateType reports whether the value is part of the vocabulary.
func ValidCertificateType(raw string) bool {
	for _, ct := range CertificateTypes {
		if string(ct) == raw {
			return true
		}
	}
	return false
}

// MaxSubjectSlots is the number of named subject slots an applicant may declare.
const MaxSubjectSlots = 5

// SSCSubject is one fully populated subject slot: a named subject and the
// grade achieved in it. A slot missing either half is invalid, never stored.
type SSCSubject struct {
	ID              string `db:"id" json:"id"`
	QualificationID string `db:"qualification_id" json:"qualification_id"`
	Slot            int    `db:"slot" json:"slot"`
	SubjectID       string `db:"subject_id" json:"subject_id"`
	SubjectName     string `db:"subject_name" json:"subject_name"`
	Grade           Grade  `db:"grade" json:"grade"`
}

// SSCQualification holds an applicant's secondary-school certificate record.
// Version guards concurrent edits: updates carry the version they read and
// fail on mismatch rather than silently overwriting.
type SSCQualification struct {
	ID               string         `db:"id" json:"id"`
	ApplicationID    string         `db:"application_id" json:"application_id"`
	NumberOfSittings int            `db:"number_of_sittings" json:"number_of_sittings"`
	CertificateTypes pq.StringArray `db:"certificate_types" json:"certificate_types"`
	Version          int            `db:"version" json:"version"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
	Subjects         []SSCSubject   `json:"subjects"`
}

// GradeFor returns the applicant's grade for the named subject.
func (q *SSCQualification) GradeFor(subjectID string) (Grade, bool) {
	for _, s := range q.Subjects {
		if s.SubjectID == subjectID {
			return s.Grade, true
		}
	}
	return "", false
}

// QualificationValidation is the itemized outcome of a completion check.
type QualificationValidation struct {
	Complete      bool     `json:"complete"`
	MissingFields []string `json:"missing_fields,omitempty"`
}

// EvaluationReport bundles every evaluator result for one qualification.
type EvaluationReport struct {
	Qualification            *SSCQualification       `json:"qualification"`
	Validation               QualificationValidation `json:"validation"`
	Complete                 bool                    `json:"complete"`
	PassingSubjects          []SSCSubject            `json:"passing_subjects"`
	PerformanceScore         float64                 `json:"performance_score"`
	MeetsMinimumRequirements bool                    `json:"meets_minimum_requirements"`
}
