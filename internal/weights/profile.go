// Package weights resolves grading weight profiles from a module's
// assessment availability.
//
// Every module grades course contribution; quizzes, assignments and the
// final assessment are optional per module. Each of the eight possible
// availability combinations maps to a fixed weight profile whose
// percentages sum to exactly 100, so a cumulative score is always on a
// 0-100 scale regardless of which assessment types a module carries.
package weights

import (
	"errors"
	"fmt"
)

// Availability describes which optional assessment types a module carries.
type Availability struct {
	Quizzes         bool `json:"hasQuizzes"`
	Assignments     bool `json:"hasAssignments"`
	FinalAssessment bool `json:"hasFinalAssessment"`
}

// ReadingOnly reports whether the module carries no optional assessments,
// leaving course contribution as the entire grade.
func (a Availability) ReadingOnly() bool {
	return !a.Quizzes && !a.Assignments && !a.FinalAssessment
}

// Profile is a set of component weight percentages. A well-formed profile
// has no negative weights and sums to exactly 100.
type Profile struct {
	CourseContribution int `json:"courseContribution"`
	Quizzes            int `json:"quizzes"`
	Assignments        int `json:"assignments"`
	FinalAssessment    int `json:"finalAssessment"`
}

// Sum returns the total of the four weights.
func (p Profile) Sum() int {
	return p.CourseContribution + p.Quizzes + p.Assignments + p.FinalAssessment
}

// DefaultProfile returns the all-assessments profile. Malformed custom
// profiles resolve to it instead of propagating partial weights into
// scoring.
func DefaultProfile() Profile {
	return Profile{CourseContribution: 10, Quizzes: 30, Assignments: 40, FinalAssessment: 20}
}

// ErrMalformedProfile marks a profile with negative weights or a sum
// other than 100.
var ErrMalformedProfile = errors.New("malformed weight profile")

// Validate checks that a profile has no negative weights and sums to 100.
// Failures wrap ErrMalformedProfile.
func Validate(p Profile) error {
	if p.CourseContribution < 0 || p.Quizzes < 0 || p.Assignments < 0 || p.FinalAssessment < 0 {
		return fmt.Errorf("%w: negative weight in %+v", ErrMalformedProfile, p)
	}
	if s := p.Sum(); s != 100 {
		return fmt.Errorf("%w: weights sum to %d, want 100", ErrMalformedProfile, s)
	}
	return nil
}
