package models

import "fmt"

// Grade is a single symbol on the SSC grading scale (WAEC-style).
type Grade string

const (
	GradeA1 Grade = "A1"
	GradeB2 Grade = "B2"
	GradeB3 Grade = "B3"
	GradeC4 Grade = "C4"
	GradeC5 Grade = "C5"
	GradeC6 Grade = "C6"
	GradeD7 Grade = "D7"
	GradeE8 Grade = "E8"
	GradeF9 Grade = "F9"
)

// gradeRanks is the single rank table shared by every grade comparison.
// A lower rank is a better grade.
var gradeRanks = map[Grade]int{
	GradeA1: 1,
	GradeB2: 2,
	GradeB3: 3,
	GradeC4: 4,
	GradeC5: 5,
	GradeC6: 6,
	GradeD7: 7,
	GradeE8: 8,
	GradeF9: 9,
}

const (
	// GradeBestRank is the rank of the best grade on the scale (A1).
	GradeBestRank = 1
	// GradeWorstRank is the rank of the worst grade on the scale (F9).
	GradeWorstRank = 9
	// GradePassingRank is the credit cut-off: C6 and better count as a pass.
	GradePassingRank = 6
)

// AllGrades lists the scale from best to worst.
var AllGrades = []Grade{GradeA1, GradeB2, GradeB3, GradeC4, GradeC5, GradeC6, GradeD7, GradeE8, GradeF9}

// Rank returns the numeric rank of the grade, or 0 when the symbol is not
// part of the scale.
func (g Grade) Rank() int {
	return gradeRanks[g]
}

// Valid reports whether the symbol belongs to the scale.
func (g Grade) Valid() bool {
	_, ok := gradeRanks[g]
	return ok
}

// IsAtLeast reports whether the grade meets or beats the required grade.
func (g Grade) IsAtLeast(required Grade) bool {
	actualRank, ok := gradeRanks[g]
	if !ok {
		return false
	}
	requiredRank, ok := gradeRanks[required]
	if !ok {
		return false
	}
	return actualRank <= requiredRank
}

// IsPassing reports whether the grade clears the credit cut-off.
func (g Grade) IsPassing() bool {
	rank, ok := gradeRanks[g]
	return ok && rank <= GradePassingRank
}

// ParseGrade validates a raw grade symbol against the scale.
func ParseGrade(raw string) (Grade, error) {
	g := Grade(raw)
	if !g.Valid() {
		return "", fmt.Errorf("unknown grade symbol: %q", raw)
	}
	return g, nil
}
