package risk

import (
	"testing"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/retake"
)

func assess(t *testing.T, rec *course.ProgressRecord, cumulative float64) Assessment {
	t.Helper()
	md := course.ModuleData{Module: course.Module{ID: "m1"}, Progress: rec}
	elig := retake.Evaluate(rec, course.DefaultPolicy())
	return Assess(md, cumulative, elig)
}

func TestAssessCriticalOnExhaustedAttempts(t *testing.T) {
	rec := &course.ProgressRecord{Status: course.StatusFailed, AttemptsCount: 3, MaxAttempts: 3}
	a := assess(t, rec, 55)

	if a.Level != LevelCritical {
		t.Fatalf("level = %s, want critical", a.Level)
	}
	if !a.AtRisk {
		t.Error("isAtRisk = false, want true")
	}
	if len(a.Reasons) == 0 || a.Reasons[0] != ReasonMaxAttemptsReached {
		t.Errorf("reasons = %v, want [%q]", a.Reasons, ReasonMaxAttemptsReached)
	}
}

func TestAssessCriticalOnLastAttempt(t *testing.T) {
	rec := &course.ProgressRecord{Status: course.StatusFailed, AttemptsCount: 2, MaxAttempts: 3}

	// Last attempt outranks even a passing score.
	for _, score := range []float64{30, 75, 95} {
		a := assess(t, rec, score)
		if a.Level != LevelCritical {
			t.Errorf("score %v: level = %s, want critical", score, a.Level)
		}
		if len(a.Reasons) == 0 || a.Reasons[0] != ReasonFinalAttempt {
			t.Errorf("score %v: reasons = %v, want [%q]", score, a.Reasons, ReasonFinalAttempt)
		}
	}
}

func TestAssessHigh(t *testing.T) {
	// Attempts exhausted but status not failed, so neither critical arm
	// matches; low score with no attempts left classifies high.
	rec := &course.ProgressRecord{Status: course.StatusInProgress, AttemptsCount: 3, MaxAttempts: 3}
	a := assess(t, rec, 55)

	if a.Level != LevelHigh {
		t.Fatalf("level = %s, want high", a.Level)
	}
	if !a.AtRisk {
		t.Error("isAtRisk = false, want true")
	}
}

func TestAssessMediumOnLowScore(t *testing.T) {
	rec := &course.ProgressRecord{Status: course.StatusInProgress, AttemptsCount: 0, MaxAttempts: 3}
	a := assess(t, rec, 65)

	if a.Level != LevelMedium {
		t.Fatalf("level = %s, want medium", a.Level)
	}
	if len(a.Reasons) != 1 {
		t.Errorf("reasons = %v, want one score reason", a.Reasons)
	}
}

func TestAssessMediumOnRepeatedAttempts(t *testing.T) {
	rec := &course.ProgressRecord{Status: course.StatusInProgress, AttemptsCount: 2, MaxAttempts: 5}
	a := assess(t, rec, 82)

	if a.Level != LevelMedium {
		t.Fatalf("level = %s, want medium", a.Level)
	}
}

func TestAssessLow(t *testing.T) {
	rec := &course.ProgressRecord{Status: course.StatusInProgress, AttemptsCount: 0, MaxAttempts: 3}
	a := assess(t, rec, 85)

	if a.Level != LevelLow {
		t.Fatalf("level = %s, want low", a.Level)
	}
	if a.AtRisk {
		t.Error("isAtRisk = true, want false")
	}
	if len(a.RecommendedActions) == 0 {
		t.Error("low risk should still carry a recommended action")
	}
}

func TestAssessMissingRecord(t *testing.T) {
	md := course.ModuleData{Module: course.Module{ID: "m1"}}
	a := Assess(md, 0, retake.Evaluate(nil, course.DefaultPolicy()))

	if a.Level != LevelLow {
		t.Fatalf("level = %s, want low", a.Level)
	}
	if a.AtRisk {
		t.Error("isAtRisk = true, want false")
	}
	if len(a.Reasons) != 1 || a.Reasons[0] != retake.ReasonNoProgress {
		t.Errorf("reasons = %v, want [%q]", a.Reasons, retake.ReasonNoProgress)
	}
}

func TestLevelRank(t *testing.T) {
	order := []Level{LevelLow, LevelMedium, LevelHigh, LevelCritical}
	for i := 1; i < len(order); i++ {
		if order[i].Rank() <= order[i-1].Rank() {
			t.Errorf("%s should rank above %s", order[i], order[i-1])
		}
	}
	if Level("unknown").Rank() != -1 {
		t.Error("unknown level should rank -1")
	}
}
