package progression

import (
	"fmt"
	"sort"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/scoring"
	"github.com/Desire-2/afriprog/internal/weights"
)

// Warning strings produced by Validate.
const (
	WarnWellBelowThreshold = "score significantly below threshold"
	WarnBelowOptimal       = "score below optimal"
	WarnFinalAttempt       = "final attempt: failure will suspend course access"
	WarnAttemptsLow        = "attempts running low"
	WarnQuizLow            = "quiz score below 60"
	WarnAssignmentLow      = "assignment score below 60"
)

// RecGeneral closes every recommendation list.
const RecGeneral = "review the module study resources and practice materials"

// Report is the progression validation result for one module. It is
// purely informational; producing it never mutates state.
type Report struct {
	CanProceed      bool                     `json:"canProceed"`
	CurrentScore    float64                  `json:"currentScore"`
	RequiredScore   float64                  `json:"requiredScore"`
	MissingPoints   float64                  `json:"missingPoints"`
	Breakdown       []scoring.ComponentScore `json:"breakdown"`
	Warnings        []string                 `json:"warnings,omitempty"`
	Recommendations []string                 `json:"recommendations"`
}

// Validate reports whether the learner may proceed past the module,
// with the score breakdown, warnings and recommendations. A missing
// progress record validates as a fresh locked record.
func (g *Gate) Validate(md course.ModuleData) Report {
	rec := course.Normalize(md.Progress, g.policy)
	profile := g.resolver.Resolve(md.Module.Assessments)
	score, _ := scoring.Cumulative(rec.CumulativeScore, rec.Components(), profile)

	missing := rec.PassingThreshold - score
	if missing < 0 {
		missing = 0
	}

	return Report{
		CanProceed:      score >= rec.PassingThreshold,
		CurrentScore:    score,
		RequiredScore:   rec.PassingThreshold,
		MissingPoints:   scoring.Round2(missing),
		Breakdown:       scoring.Breakdown(rec.Components(), profile),
		Warnings:        warnings(rec, profile, score),
		Recommendations: recommendations(rec.Components(), profile),
	}
}

// warnings derives the textual flags for a record. Score and attempt
// warnings cascade so only the most severe of each group fires.
// Component warnings apply only to components carrying weight.
func warnings(rec course.ProgressRecord, p weights.Profile, score float64) []string {
	var out []string

	switch {
	case score < 50:
		out = append(out, WarnWellBelowThreshold)
	case score < 70:
		out = append(out, WarnBelowOptimal)
	}

	switch {
	case rec.AttemptsCount >= rec.MaxAttempts-1:
		out = append(out, WarnFinalAttempt)
	case rec.AttemptsCount >= rec.MaxAttempts-2:
		out = append(out, WarnAttemptsLow)
	}

	if p.Quizzes > 0 && rec.QuizScore < 60 {
		out = append(out, WarnQuizLow)
	}
	if p.Assignments > 0 && rec.AssignmentScore < 60 {
		out = append(out, WarnAssignmentLow)
	}
	return out
}

// recommendations lists underperforming components, highest weight
// first, closing with generic study guidance. A component is
// underperforming when it carries weight and scores below 70.
func recommendations(s scoring.Components, p weights.Profile) []string {
	type candidate struct {
		comp   scoring.Component
		weight int
	}

	var under []candidate
	for _, c := range scoring.ComponentOrder {
		w := scoring.WeightOf(p, c)
		if w > 0 && s.Get(c) < 70 {
			under = append(under, candidate{comp: c, weight: w})
		}
	}
	sort.SliceStable(under, func(i, j int) bool {
		return under[i].weight > under[j].weight
	})

	out := make([]string, 0, len(under)+1)
	for _, u := range under {
		out = append(out, fmt.Sprintf("focus on %s (%d%% of the grade, currently %.1f)",
			u.comp.Label(), u.weight, s.Get(u.comp)))
	}
	return append(out, RecGeneral)
}
