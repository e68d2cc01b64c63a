package scoring

import "github.com/Desire-2/afriprog/internal/weights"

// Component identifies one of the four graded score components.
type Component string

const (
	CourseContribution Component = "courseContribution"
	Quizzes            Component = "quizzes"
	Assignments        Component = "assignments"
	FinalAssessment    Component = "finalAssessment"
)

// ComponentOrder is the display order used in breakdowns and
// recommendations.
var ComponentOrder = []Component{CourseContribution, Quizzes, Assignments, FinalAssessment}

// Label returns the human-readable component name.
func (c Component) Label() string {
	switch c {
	case CourseContribution:
		return "course contribution"
	case Quizzes:
		return "quizzes"
	case Assignments:
		return "assignments"
	case FinalAssessment:
		return "final assessment"
	}
	return string(c)
}

// Components holds the four raw component scores, each on a 0-100 scale.
type Components struct {
	CourseContribution float64 `json:"courseContribution"`
	Quizzes            float64 `json:"quizzes"`
	Assignments        float64 `json:"assignments"`
	FinalAssessment    float64 `json:"finalAssessment"`
}

// Get returns the raw score for component c.
func (s Components) Get(c Component) float64 {
	switch c {
	case CourseContribution:
		return s.CourseContribution
	case Quizzes:
		return s.Quizzes
	case Assignments:
		return s.Assignments
	case FinalAssessment:
		return s.FinalAssessment
	}
	return 0
}

// WeightOf returns the weight percentage p assigns to component c.
func WeightOf(p weights.Profile, c Component) int {
	switch c {
	case CourseContribution:
		return p.CourseContribution
	case Quizzes:
		return p.Quizzes
	case Assignments:
		return p.Assignments
	case FinalAssessment:
		return p.FinalAssessment
	}
	return 0
}
