// Package scoring computes weighted cumulative scores from raw
// per-component assessment scores.
//
// A cumulative score is the weighted sum of the four component scores
// under a weight profile, on a 0-100 scale and rounded to two decimal
// places. Components carrying zero weight contribute nothing, so a
// module without quizzes is never penalized for an empty quiz score.
package scoring

import (
	"math"

	"github.com/Desire-2/afriprog/internal/weights"
)

// Round2 rounds to two decimal places, half away from zero.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Clamp bounds a raw score to the 0-100 scale.
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// Aggregate combines component scores under a weight profile into a
// cumulative score.
func Aggregate(s Components, p weights.Profile) float64 {
	var total float64
	for _, c := range ComponentOrder {
		total += s.Get(c) * float64(WeightOf(p, c)) / 100
	}
	return Round2(total)
}

// Cumulative returns the authoritative cumulative score for a record.
// An upstream-computed value wins when present; otherwise the score is
// aggregated locally. The boolean reports whether aggregation ran.
func Cumulative(upstream *float64, s Components, p weights.Profile) (float64, bool) {
	if upstream != nil {
		return Round2(*upstream), false
	}
	return Aggregate(s, p), true
}

// ComponentScore is one line of a score breakdown.
type ComponentScore struct {
	Component Component `json:"component"`
	Score     float64   `json:"score"`
	MaxScore  float64   `json:"maxScore"`
	Weight    int       `json:"weight"`
	Weighted  float64   `json:"weightedPoints"`
}

// Breakdown expands component scores under a profile into per-component
// lines in display order.
func Breakdown(s Components, p weights.Profile) []ComponentScore {
	out := make([]ComponentScore, 0, len(ComponentOrder))
	for _, c := range ComponentOrder {
		w := WeightOf(p, c)
		out = append(out, ComponentScore{
			Component: c,
			Score:     s.Get(c),
			MaxScore:  100,
			Weight:    w,
			Weighted:  Round2(s.Get(c) * float64(w) / 100),
		})
	}
	return out
}
