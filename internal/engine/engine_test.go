package engine

import (
	"testing"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/progression"
	"github.com/Desire-2/afriprog/internal/risk"
	"github.com/Desire-2/afriprog/internal/weights"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func TestEvaluateFailedModuleOnLastAttempt(t *testing.T) {
	e := newTestEngine(t)
	md := course.ModuleData{
		Module: course.Module{
			ID:          "m1",
			Assessments: weights.Availability{Quizzes: true, Assignments: true},
		},
		Progress: &course.ProgressRecord{
			Status:                  course.StatusFailed,
			CourseContributionScore: 70,
			QuizScore:               60,
			AssignmentScore:         55,
			AttemptsCount:           2,
			MaxAttempts:             3,
		},
	}

	ev := e.Evaluate(md)

	if ev.ModuleID != "m1" {
		t.Errorf("moduleId = %s, want m1", ev.ModuleID)
	}
	// 70*0.15 + 60*0.40 + 55*0.45 = 59.25
	if ev.Score != 59.25 {
		t.Errorf("score = %v, want 59.25", ev.Score)
	}
	if !ev.Retake.CanRetake {
		t.Error("canRetake = false, want true")
	}
	if !ev.Retake.IsLastAttempt {
		t.Error("isLastAttempt = false, want true")
	}
	if ev.Risk.Level != risk.LevelCritical {
		t.Errorf("risk level = %s, want critical", ev.Risk.Level)
	}
	if ev.Report.CanProceed {
		t.Error("canProceed = true, want false")
	}
}

func TestNewRejectsMalformedOverrideButStillWorks(t *testing.T) {
	quizOnly := weights.Availability{Quizzes: true}
	cfg := DefaultConfig()
	cfg.Profiles = map[weights.Availability]weights.Profile{
		quizOnly: {CourseContribution: 90, Quizzes: 90},
	}

	e, err := New(cfg)
	if err == nil {
		t.Fatal("New with malformed override should report an error")
	}
	if e == nil {
		t.Fatal("New should still return a usable engine")
	}

	// The rejected combination falls back to the default profile, not
	// the canonical quiz-only row.
	if got := e.Profile(quizOnly); got != weights.DefaultProfile() {
		t.Errorf("Profile(quizOnly) = %+v, want default fallback", got)
	}
}

func TestNewAppliesValidOverride(t *testing.T) {
	quizOnly := weights.Availability{Quizzes: true}
	custom := weights.Profile{CourseContribution: 50, Quizzes: 50}
	cfg := DefaultConfig()
	cfg.Profiles = map[weights.Availability]weights.Profile{quizOnly: custom}

	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if got := e.Profile(quizOnly); got != custom {
		t.Errorf("Profile(quizOnly) = %+v, want %+v", got, custom)
	}
}

func TestTransitionDelegation(t *testing.T) {
	e := newTestEngine(t)
	md := course.ModuleData{
		Module:   course.Module{ID: "m1"},
		Progress: &course.ProgressRecord{Status: course.StatusLocked, MaxAttempts: 3},
	}

	rec, err := e.Transition(md, progression.EventUnlock)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if rec.Status != course.StatusUnlocked {
		t.Errorf("status = %s, want unlocked", rec.Status)
	}
}

func TestCourseDelegation(t *testing.T) {
	e := newTestEngine(t)
	done := 90.0
	modules := []course.ModuleData{
		{
			Module:   course.Module{ID: "m1", Order: 1},
			Progress: &course.ProgressRecord{Status: course.StatusCompleted, CumulativeScore: &done, MaxAttempts: 3},
		},
		{
			Module: course.Module{ID: "m2", Order: 2},
		},
	}

	next := e.NextUnlockable(modules)
	if next == nil || next.Module.ID != "m2" {
		t.Fatalf("NextUnlockable = %v, want m2", next)
	}

	rollup := e.Rollup(modules)
	if rollup.CompletedModules != 1 || rollup.OverallProgress != 50 {
		t.Errorf("rollup = %+v, want 1 completed at 50%%", rollup)
	}
}

func TestWeightTable(t *testing.T) {
	e := newTestEngine(t)
	rows := e.WeightTable()

	if len(rows) != 8 {
		t.Fatalf("WeightTable returned %d rows, want 8", len(rows))
	}
	seen := make(map[weights.Availability]bool, len(rows))
	for _, row := range rows {
		if seen[row.Availability] {
			t.Errorf("duplicate availability %+v", row.Availability)
		}
		seen[row.Availability] = true
		if s := row.Profile.Sum(); s != 100 {
			t.Errorf("profile for %+v sums to %d, want 100", row.Availability, s)
		}
	}
}

func TestCustomPolicyThreadsThrough(t *testing.T) {
	cfg := Config{Policy: course.Policy{PassingThreshold: 60, MaxAttempts: 5}}
	e, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	md := course.ModuleData{
		Module: course.Module{ID: "m1"},
		Progress: &course.ProgressRecord{
			Status:                  course.StatusInProgress,
			CourseContributionScore: 65,
		},
	}

	rep := e.Validate(md)
	if !rep.CanProceed {
		t.Error("canProceed = false, want true at threshold 60")
	}
	if elig := e.RetakeEligibility(nil); elig.MaxAttempts != 5 {
		t.Errorf("maxAttempts = %d, want 5", elig.MaxAttempts)
	}
}
