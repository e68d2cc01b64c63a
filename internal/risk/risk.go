// Package risk classifies suspension risk from a module's cumulative
// score, attempt usage and retake eligibility.
package risk

import (
	"fmt"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/retake"
)

// Level classifies how close a learner is to losing course access.
type Level string

const (
	LevelLow      Level = "low"
	LevelMedium   Level = "medium"
	LevelHigh     Level = "high"
	LevelCritical Level = "critical"
)

// Rank orders levels from low (0) to critical (3). Unknown levels rank
// below low.
func (l Level) Rank() int {
	switch l {
	case LevelLow:
		return 0
	case LevelMedium:
		return 1
	case LevelHigh:
		return 2
	case LevelCritical:
		return 3
	}
	return -1
}

// Assessment is the suspension-risk report for one module.
type Assessment struct {
	AtRisk             bool     `json:"isAtRisk"`
	Level              Level    `json:"riskLevel"`
	Reasons            []string `json:"reasons,omitempty"`
	RecommendedActions []string `json:"recommendedActions"`
}

// Reason strings for the critical classifications.
const (
	ReasonMaxAttemptsReached = "maximum attempts reached"
	ReasonFinalAttempt       = "final attempt remaining"
)

// Assess classifies suspension risk for one module. Rules run in
// precedence order and the first match wins, so a final attempt is
// critical even when the score is passing. A missing progress record is
// low risk with an informational reason.
func Assess(md course.ModuleData, cumulative float64, elig retake.Eligibility) Assessment {
	if md.Progress == nil {
		return Assessment{
			Level:              LevelLow,
			Reasons:            []string{retake.ReasonNoProgress},
			RecommendedActions: []string{"start the module to begin tracking progress"},
		}
	}
	rec := course.Normalize(md.Progress, course.DefaultPolicy())

	switch {
	case rec.Status == course.StatusFailed && elig.RemainingAttempts == 0:
		return Assessment{
			AtRisk:  true,
			Level:   LevelCritical,
			Reasons: []string{ReasonMaxAttemptsReached},
			RecommendedActions: []string{
				"submit an appeal to regain course access",
				"contact the course instructor",
			},
		}
	case elig.IsLastAttempt:
		return Assessment{
			AtRisk:  true,
			Level:   LevelCritical,
			Reasons: []string{ReasonFinalAttempt},
			RecommendedActions: []string{
				"review all module materials before attempting",
				"complete the available practice exercises",
				"seek help from mentors or discussion forums",
			},
		}
	case cumulative < 60 && elig.RemainingAttempts <= 1:
		return Assessment{
			AtRisk: true,
			Level:  LevelHigh,
			Reasons: []string{
				fmt.Sprintf("cumulative score %.1f is below 60", cumulative),
				"one attempt remaining or fewer",
			},
			RecommendedActions: []string{
				"prioritize the highest-weighted components",
				"focus on assignment quality",
			},
		}
	case cumulative < 70 || rec.AttemptsCount > 1:
		a := Assessment{
			AtRisk: true,
			Level:  LevelMedium,
			RecommendedActions: []string{
				"review instructor feedback on submitted work",
				"schedule additional practice time",
			},
		}
		if cumulative < 70 {
			a.Reasons = append(a.Reasons, fmt.Sprintf("cumulative score %.1f is below 70", cumulative))
		}
		if rec.AttemptsCount > 1 {
			a.Reasons = append(a.Reasons, fmt.Sprintf("%d attempts already used", rec.AttemptsCount))
		}
		return a
	default:
		return Assessment{
			Level:              LevelLow,
			RecommendedActions: []string{"maintain the current study approach"},
		}
	}
}
