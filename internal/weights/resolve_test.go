package weights

import "testing"

func TestResolveAllCombinations(t *testing.T) {
	tests := []struct {
		name  string
		avail Availability
		want  Profile
	}{
		{"reading only", Availability{}, Profile{100, 0, 0, 0}},
		{"only final", Availability{FinalAssessment: true}, Profile{40, 0, 0, 60}},
		{"only assignments", Availability{Assignments: true}, Profile{30, 0, 70, 0}},
		{"only quizzes", Availability{Quizzes: true}, Profile{30, 70, 0, 0}},
		{"assignments and final", Availability{Assignments: true, FinalAssessment: true}, Profile{15, 0, 55, 30}},
		{"quizzes and final", Availability{Quizzes: true, FinalAssessment: true}, Profile{15, 55, 0, 30}},
		{"quizzes and assignments", Availability{Quizzes: true, Assignments: true}, Profile{15, 40, 45, 0}},
		{"all assessments", Availability{Quizzes: true, Assignments: true, FinalAssessment: true}, Profile{10, 30, 40, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.avail)
			if got != tt.want {
				t.Errorf("Resolve(%+v) = %+v, want %+v", tt.avail, got, tt.want)
			}
			if s := got.Sum(); s != 100 {
				t.Errorf("Resolve(%+v) sums to %d, want 100", tt.avail, s)
			}
		})
	}
}

func TestVerifyTable(t *testing.T) {
	if err := VerifyTable(); err != nil {
		t.Errorf("VerifyTable() = %v, want nil", err)
	}
}

func TestResolverOverride(t *testing.T) {
	all := Availability{Quizzes: true, Assignments: true, FinalAssessment: true}
	custom := Profile{CourseContribution: 20, Quizzes: 20, Assignments: 40, FinalAssessment: 20}

	r, err := NewResolver(map[Availability]Profile{all: custom})
	if err != nil {
		t.Fatalf("NewResolver: %v", err)
	}
	if got := r.Resolve(all); got != custom {
		t.Errorf("Resolve(all) = %+v, want override %+v", got, custom)
	}

	// Combinations without an override still use the canonical table.
	quizOnly := Availability{Quizzes: true}
	if got := r.Resolve(quizOnly); got != Resolve(quizOnly) {
		t.Errorf("Resolve(quizOnly) = %+v, want canonical %+v", got, Resolve(quizOnly))
	}
}

func TestResolverRejectsMalformedOverride(t *testing.T) {
	all := Availability{Quizzes: true, Assignments: true, FinalAssessment: true}
	broken := Profile{CourseContribution: 50, Quizzes: 50, Assignments: 50}

	r, err := NewResolver(map[Availability]Profile{all: broken})
	if err == nil {
		t.Fatal("NewResolver with malformed override should return an error")
	}

	// The rejected combination falls back to the default profile.
	if got := r.Resolve(all); got != DefaultProfile() {
		t.Errorf("Resolve(all) = %+v, want default %+v", got, DefaultProfile())
	}
}

func TestNilResolver(t *testing.T) {
	var r *Resolver
	a := Availability{Quizzes: true}
	if got := r.Resolve(a); got != Resolve(a) {
		t.Errorf("nil resolver Resolve(%+v) = %+v, want canonical", a, got)
	}
}
