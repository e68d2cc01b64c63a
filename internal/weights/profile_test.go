package weights

import (
	"errors"
	"testing"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		profile Profile
		wantErr bool
	}{
		{"default", DefaultProfile(), false},
		{"reading only", Profile{CourseContribution: 100}, false},
		{"sum too low", Profile{CourseContribution: 10, Quizzes: 30, Assignments: 40}, true},
		{"sum too high", Profile{CourseContribution: 50, Quizzes: 30, Assignments: 40, FinalAssessment: 20}, true},
		{"negative weight", Profile{CourseContribution: 120, Quizzes: -20, Assignments: 0, FinalAssessment: 0}, true},
		{"zero profile", Profile{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.profile)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Validate(%+v) = nil, want error", tt.profile)
				}
				if !errors.Is(err, ErrMalformedProfile) {
					t.Errorf("Validate(%+v) = %v, want ErrMalformedProfile", tt.profile, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Validate(%+v) = %v, want nil", tt.profile, err)
			}
		})
	}
}

func TestDefaultProfile(t *testing.T) {
	p := DefaultProfile()
	want := Profile{CourseContribution: 10, Quizzes: 30, Assignments: 40, FinalAssessment: 20}
	if p != want {
		t.Errorf("DefaultProfile() = %+v, want %+v", p, want)
	}
}

func TestReadingOnly(t *testing.T) {
	if !(Availability{}).ReadingOnly() {
		t.Error("empty availability should be reading-only")
	}
	if (Availability{Quizzes: true}).ReadingOnly() {
		t.Error("availability with quizzes should not be reading-only")
	}
}
