// Package course defines the progression data model shared across the
// engine: module metadata, per-learner progress records, grading policy
// defaults, and course-level scans over ordered module lists.
package course

import "github.com/Desire-2/afriprog/internal/scoring"

// Policy holds course-wide grading defaults applied to records that do
// not carry their own values.
type Policy struct {
	PassingThreshold float64 `json:"passingThreshold"`
	MaxAttempts      int     `json:"maxAttempts"`
}

// DefaultPolicy returns the standard grading policy: pass at 80, three
// attempts per module.
func DefaultPolicy() Policy {
	return Policy{PassingThreshold: 80, MaxAttempts: 3}
}

// ProgressRecord is one learner's progress through one module. The four
// component scores are raw 0-100 values supplied by upstream graders.
// CumulativeScore is optional: when the upstream source has already
// aggregated it, that value is authoritative and the engine skips its
// own computation.
type ProgressRecord struct {
	Status                  Status   `json:"status"`
	CourseContributionScore float64  `json:"courseContributionScore"`
	QuizScore               float64  `json:"quizScore"`
	AssignmentScore         float64  `json:"assignmentScore"`
	FinalAssessmentScore    float64  `json:"finalAssessmentScore"`
	CumulativeScore         *float64 `json:"cumulativeScore,omitempty"`
	AttemptsCount           int      `json:"attemptsCount"`
	MaxAttempts             int      `json:"maxAttempts"`
	PassingThreshold        float64  `json:"passingThreshold,omitempty"`
}

// Normalize applies policy defaults and bounds to a copy of rec. A nil
// record becomes a fresh locked record, scores are clamped to [0,100],
// and missing policy fields pick up defaults from pol. Absence of data
// is not an error anywhere in the engine.
func Normalize(rec *ProgressRecord, pol Policy) ProgressRecord {
	if pol.MaxAttempts < 1 {
		pol.MaxAttempts = DefaultPolicy().MaxAttempts
	}
	if pol.PassingThreshold <= 0 {
		pol.PassingThreshold = DefaultPolicy().PassingThreshold
	}

	var out ProgressRecord
	if rec != nil {
		out = *rec
	}
	if !out.Status.Valid() {
		out.Status = StatusLocked
	}
	out.CourseContributionScore = scoring.Clamp(out.CourseContributionScore)
	out.QuizScore = scoring.Clamp(out.QuizScore)
	out.AssignmentScore = scoring.Clamp(out.AssignmentScore)
	out.FinalAssessmentScore = scoring.Clamp(out.FinalAssessmentScore)
	if out.CumulativeScore != nil {
		v := scoring.Clamp(*out.CumulativeScore)
		out.CumulativeScore = &v
	}
	if out.AttemptsCount < 0 {
		out.AttemptsCount = 0
	}
	if out.MaxAttempts < 1 {
		out.MaxAttempts = pol.MaxAttempts
	}
	if out.PassingThreshold <= 0 {
		out.PassingThreshold = pol.PassingThreshold
	}
	return out
}

// Components extracts the four raw component scores from the record.
func (r ProgressRecord) Components() scoring.Components {
	return scoring.Components{
		CourseContribution: r.CourseContributionScore,
		Quizzes:            r.QuizScore,
		Assignments:        r.AssignmentScore,
		FinalAssessment:    r.FinalAssessmentScore,
	}
}
