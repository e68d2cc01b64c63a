// Package progression implements the module state machine and the
// progression validation report.
//
// The gate is pure: transitions map a (record, event) pair to a new
// record without touching the input, and validation only reports. All
// persistence and locking live with the caller, which must apply a
// returned record atomically against its backing store.
package progression

import (
	"errors"
	"fmt"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/retake"
	"github.com/Desire-2/afriprog/internal/scoring"
	"github.com/Desire-2/afriprog/internal/weights"
)

// Event is an externally triggered progression action.
type Event string

const (
	// EventUnlock releases a locked module once its prerequisites are
	// completed.
	EventUnlock Event = "unlock"
	// EventStart marks the learner beginning a module.
	EventStart Event = "start"
	// EventSubmit closes out an attempt; the score decides completion.
	EventSubmit Event = "submit"
	// EventRetake re-enters a failed module, consuming an attempt.
	EventRetake Event = "retake"
)

// AllEvents returns every progression event.
func AllEvents() []Event {
	return []Event{EventUnlock, EventStart, EventSubmit, EventRetake}
}

// Valid reports whether e is a known event.
func (e Event) Valid() bool {
	switch e {
	case EventUnlock, EventStart, EventSubmit, EventRetake:
		return true
	}
	return false
}

// ErrInvalidTransition marks an event that does not apply to the
// record's current status.
var ErrInvalidTransition = errors.New("invalid transition")

func invalidTransition(s course.Status, ev Event) error {
	return fmt.Errorf("%w: %s does not apply to status %s", ErrInvalidTransition, ev, s)
}

// Gate drives the module state machine and produces progression
// validation reports.
type Gate struct {
	resolver *weights.Resolver
	policy   course.Policy
}

// NewGate builds a gate. A nil resolver uses the canonical weight
// table; zero policy fields pick up the course defaults.
func NewGate(resolver *weights.Resolver, pol course.Policy) *Gate {
	def := course.DefaultPolicy()
	if pol.MaxAttempts < 1 {
		pol.MaxAttempts = def.MaxAttempts
	}
	if pol.PassingThreshold <= 0 {
		pol.PassingThreshold = def.PassingThreshold
	}
	return &Gate{resolver: resolver, policy: pol}
}

// Policy returns the grading policy the gate applies to records without
// their own values.
func (g *Gate) Policy() course.Policy {
	return g.policy
}

// Score resolves the module's weight profile and returns its cumulative
// score alongside the profile used.
func (g *Gate) Score(md course.ModuleData) (float64, weights.Profile) {
	rec := course.Normalize(md.Progress, g.policy)
	profile := g.resolver.Resolve(md.Module.Assessments)
	score, _ := scoring.Cumulative(rec.CumulativeScore, rec.Components(), profile)
	return score, profile
}

// Transition applies one event to the module's progress and returns the
// updated record. The input is never mutated. Submission decides
// completion against the passing threshold; a retake is allowed only
// when the retake policy permits it and is the sole transition that
// increments the attempt count. Inapplicable or unknown events return
// ErrInvalidTransition with the normalized record unchanged.
func (g *Gate) Transition(md course.ModuleData, ev Event) (course.ProgressRecord, error) {
	rec := course.Normalize(md.Progress, g.policy)

	switch ev {
	case EventUnlock:
		if rec.Status != course.StatusLocked {
			return rec, invalidTransition(rec.Status, ev)
		}
		rec.Status = course.StatusUnlocked
	case EventStart:
		if rec.Status != course.StatusUnlocked {
			return rec, invalidTransition(rec.Status, ev)
		}
		rec.Status = course.StatusInProgress
	case EventSubmit:
		if rec.Status != course.StatusInProgress {
			return rec, invalidTransition(rec.Status, ev)
		}
		score, _ := g.Score(md)
		if score >= rec.PassingThreshold {
			rec.Status = course.StatusCompleted
		} else {
			rec.Status = course.StatusFailed
		}
	case EventRetake:
		elig := retake.Evaluate(&rec, g.policy)
		if !elig.CanRetake {
			return rec, fmt.Errorf("%w: retake refused: %s", ErrInvalidTransition, elig.Reason)
		}
		rec.Status = course.StatusInProgress
		rec.AttemptsCount++
	default:
		return rec, fmt.Errorf("%w: unknown event %q", ErrInvalidTransition, ev)
	}
	return rec, nil
}
