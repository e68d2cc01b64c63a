// Package retake implements the bounded-retry policy for failed
// modules.
package retake

import "github.com/Desire-2/afriprog/internal/course"

// Reasons reported when a retake is not permitted.
const (
	ReasonNotFailed   = "module not in failed status"
	ReasonMaxAttempts = "maximum attempts exceeded"
	ReasonNoProgress  = "progress not initialized"
)

// Eligibility reports whether a failed module may be retried and how
// many attempts remain.
type Eligibility struct {
	CanRetake         bool   `json:"canRetake"`
	AttemptsUsed      int    `json:"attemptsUsed"`
	MaxAttempts       int    `json:"maxAttempts"`
	RemainingAttempts int    `json:"remainingAttempts"`
	IsLastAttempt     bool   `json:"isLastAttempt"`
	Reason            string `json:"reason,omitempty"`
}

// Evaluate determines retake eligibility for one progress record. This
// is a read-only check: a nil record yields canRetake false with an
// explanatory reason, never an error.
func Evaluate(rec *course.ProgressRecord, pol course.Policy) Eligibility {
	if rec == nil {
		maxAttempts := pol.MaxAttempts
		if maxAttempts < 1 {
			maxAttempts = course.DefaultPolicy().MaxAttempts
		}
		return Eligibility{
			MaxAttempts:       maxAttempts,
			RemainingAttempts: maxAttempts,
			Reason:            ReasonNoProgress,
		}
	}

	r := course.Normalize(rec, pol)
	e := Eligibility{
		AttemptsUsed:      r.AttemptsCount,
		MaxAttempts:       r.MaxAttempts,
		RemainingAttempts: max(0, r.MaxAttempts-r.AttemptsCount),
		IsLastAttempt:     r.AttemptsCount == r.MaxAttempts-1,
	}
	e.CanRetake = r.Status == course.StatusFailed && r.AttemptsCount < r.MaxAttempts
	if !e.CanRetake {
		if r.Status != course.StatusFailed {
			e.Reason = ReasonNotFailed
		} else {
			e.Reason = ReasonMaxAttempts
		}
	}
	return e
}
