package progression

import (
	"slices"
	"strings"
	"testing"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/weights"
)

func TestValidatePassing(t *testing.T) {
	g := newTestGate(t)
	md := quizAssignmentModule(&course.ProgressRecord{
		Status:                  course.StatusInProgress,
		CourseContributionScore: 70,
		QuizScore:               80,
		AssignmentScore:         90,
		MaxAttempts:             3,
	})

	rep := g.Validate(md)

	if !rep.CanProceed {
		t.Error("canProceed = false, want true")
	}
	if rep.CurrentScore != 83.0 {
		t.Errorf("currentScore = %v, want 83.0", rep.CurrentScore)
	}
	if rep.RequiredScore != 80 {
		t.Errorf("requiredScore = %v, want 80", rep.RequiredScore)
	}
	if rep.MissingPoints != 0 {
		t.Errorf("missingPoints = %v, want 0", rep.MissingPoints)
	}
	if len(rep.Breakdown) != 4 {
		t.Errorf("breakdown has %d lines, want 4", len(rep.Breakdown))
	}
}

func TestValidateReadingOnlyModule(t *testing.T) {
	g := newTestGate(t)
	md := course.ModuleData{
		Module: course.Module{ID: "m1"},
		Progress: &course.ProgressRecord{
			Status:                  course.StatusInProgress,
			CourseContributionScore: 75,
			MaxAttempts:             3,
		},
	}

	rep := g.Validate(md)

	if rep.CanProceed {
		t.Error("canProceed = true, want false")
	}
	if rep.CurrentScore != 75 {
		t.Errorf("currentScore = %v, want 75", rep.CurrentScore)
	}
	if rep.MissingPoints != 5 {
		t.Errorf("missingPoints = %v, want 5", rep.MissingPoints)
	}
}

// readingOnly builds a reading-only module whose entire grade is the
// given course contribution score.
func readingOnly(contribution float64, attempts, maxAttempts int) course.ModuleData {
	return course.ModuleData{
		Module: course.Module{ID: "m1"},
		Progress: &course.ProgressRecord{
			Status:                  course.StatusInProgress,
			CourseContributionScore: contribution,
			AttemptsCount:           attempts,
			MaxAttempts:             maxAttempts,
		},
	}
}

func TestWarnScoreBands(t *testing.T) {
	g := newTestGate(t)

	rep := g.Validate(readingOnly(45, 0, 3))
	if !slices.Contains(rep.Warnings, WarnWellBelowThreshold) {
		t.Errorf("score 45 warnings = %v, missing %q", rep.Warnings, WarnWellBelowThreshold)
	}
	if slices.Contains(rep.Warnings, WarnBelowOptimal) {
		t.Errorf("score 45 warnings = %v, should cascade past %q", rep.Warnings, WarnBelowOptimal)
	}

	rep = g.Validate(readingOnly(60, 0, 3))
	if !slices.Contains(rep.Warnings, WarnBelowOptimal) {
		t.Errorf("score 60 warnings = %v, missing %q", rep.Warnings, WarnBelowOptimal)
	}

	rep = g.Validate(readingOnly(85, 0, 3))
	if slices.Contains(rep.Warnings, WarnWellBelowThreshold) || slices.Contains(rep.Warnings, WarnBelowOptimal) {
		t.Errorf("score 85 warnings = %v, want no score warnings", rep.Warnings)
	}
}

func TestWarnAttemptCascade(t *testing.T) {
	g := newTestGate(t)

	// Two of three attempts used: this is the final attempt.
	rep := g.Validate(readingOnly(85, 2, 3))
	if !slices.Contains(rep.Warnings, WarnFinalAttempt) {
		t.Errorf("attempts 2/3 warnings = %v, missing %q", rep.Warnings, WarnFinalAttempt)
	}
	if slices.Contains(rep.Warnings, WarnAttemptsLow) {
		t.Errorf("attempts 2/3 warnings = %v, final attempt should supersede %q", rep.Warnings, WarnAttemptsLow)
	}

	// One attempt used: attempts are running low.
	rep = g.Validate(readingOnly(85, 1, 3))
	if !slices.Contains(rep.Warnings, WarnAttemptsLow) {
		t.Errorf("attempts 1/3 warnings = %v, missing %q", rep.Warnings, WarnAttemptsLow)
	}
	if slices.Contains(rep.Warnings, WarnFinalAttempt) {
		t.Errorf("attempts 1/3 warnings = %v, should not contain %q", rep.Warnings, WarnFinalAttempt)
	}

	// Fresh record: no attempt warnings.
	rep = g.Validate(readingOnly(85, 0, 3))
	if slices.Contains(rep.Warnings, WarnFinalAttempt) || slices.Contains(rep.Warnings, WarnAttemptsLow) {
		t.Errorf("attempts 0/3 warnings = %v, want no attempt warnings", rep.Warnings)
	}
}

func TestWarnComponentAvailability(t *testing.T) {
	g := newTestGate(t)

	// Quizzes graded and below 60: flagged.
	md := quizAssignmentModule(&course.ProgressRecord{
		Status:                  course.StatusInProgress,
		CourseContributionScore: 90,
		QuizScore:               55,
		AssignmentScore:         90,
		MaxAttempts:             3,
	})
	rep := g.Validate(md)
	if !slices.Contains(rep.Warnings, WarnQuizLow) {
		t.Errorf("warnings = %v, missing %q", rep.Warnings, WarnQuizLow)
	}
	if slices.Contains(rep.Warnings, WarnAssignmentLow) {
		t.Errorf("warnings = %v, should not contain %q", rep.Warnings, WarnAssignmentLow)
	}

	// Same quiz score on a reading-only module carries no weight, so no
	// warning.
	rep = g.Validate(course.ModuleData{
		Module: course.Module{ID: "m2"},
		Progress: &course.ProgressRecord{
			Status:                  course.StatusInProgress,
			CourseContributionScore: 90,
			QuizScore:               55,
			MaxAttempts:             3,
		},
	})
	if slices.Contains(rep.Warnings, WarnQuizLow) {
		t.Errorf("warnings = %v, quiz warning should be suppressed without quiz weight", rep.Warnings)
	}
}

func TestValidateRecommendationOrder(t *testing.T) {
	g := newTestGate(t)
	md := quizAssignmentModule(&course.ProgressRecord{
		Status:                  course.StatusInProgress,
		CourseContributionScore: 60,
		QuizScore:               65,
		AssignmentScore:         68,
		MaxAttempts:             3,
	})

	rep := g.Validate(md)

	if len(rep.Recommendations) != 4 {
		t.Fatalf("recommendations = %v, want 3 components plus general guidance", rep.Recommendations)
	}
	// Weight order for quizzes+assignments is assignments 45, quizzes 40,
	// course contribution 15.
	wantOrder := []string{"assignments", "quizzes", "course contribution"}
	for i, name := range wantOrder {
		if !strings.Contains(rep.Recommendations[i], name) {
			t.Errorf("recommendation %d = %q, want mention of %s", i, rep.Recommendations[i], name)
		}
	}
	if rep.Recommendations[3] != RecGeneral {
		t.Errorf("last recommendation = %q, want %q", rep.Recommendations[3], RecGeneral)
	}
}

func TestValidateHealthyScoresStillGetGeneralGuidance(t *testing.T) {
	g := newTestGate(t)
	md := quizAssignmentModule(&course.ProgressRecord{
		Status:                  course.StatusInProgress,
		CourseContributionScore: 90,
		QuizScore:               95,
		AssignmentScore:         92,
		MaxAttempts:             3,
	})

	rep := g.Validate(md)
	if len(rep.Recommendations) != 1 || rep.Recommendations[0] != RecGeneral {
		t.Errorf("recommendations = %v, want only general guidance", rep.Recommendations)
	}
}

func TestValidateMissingRecord(t *testing.T) {
	g := newTestGate(t)
	md := course.ModuleData{Module: course.Module{ID: "m1"}}

	rep := g.Validate(md)

	if rep.CanProceed {
		t.Error("canProceed = true, want false")
	}
	if rep.CurrentScore != 0 {
		t.Errorf("currentScore = %v, want 0", rep.CurrentScore)
	}
	if rep.RequiredScore != 80 {
		t.Errorf("requiredScore = %v, want 80", rep.RequiredScore)
	}
	if rep.MissingPoints != 80 {
		t.Errorf("missingPoints = %v, want 80", rep.MissingPoints)
	}
}
