package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGradeIsAtLeast(t *testing.T) {
	assert.True(t, GradeA1.IsAtLeast(GradeC6))
	assert.True(t, GradeC6.IsAtLeast(GradeC6))
	assert.False(t, GradeD7.IsAtLeast(GradeC6))
	assert.False(t, GradeF9.IsAtLeast(GradeC6))
	assert.False(t, Grade("X1").IsAtLeast(GradeC6))
	assert.False(t, GradeA1.IsAtLeast(Grade("X1")))
}

func TestGradePassingCutoff(t *testing.T) {
	assert.True(t, GradeC6.IsPassing())
	assert.True(t, GradeA1.IsPassing())
	assert.False(t, GradeD7.IsPassing())
	assert.False(t, GradeF9.IsPassing())
}

func TestGradeRanksAreStrictlyOrdered(t *testing.T) {
	previous := 0
	for _, g := range AllGrades {
		require.True(t, g.Valid())
		assert.Greater(t, g.Rank(), previous, "grade %s out of order", g)
		previous = g.Rank()
	}
}

func TestParseGrade(t *testing.T) {
	g, err := ParseGrade("B3")
	require.NoError(t, err)
	assert.Equal(t, GradeB3, g)

	_, err = ParseGrade("A2")
	assert.Error(t, err)

	_, err = ParseGrade("")
	assert.Error(t, err)
}
