// Package engine assembles the progression pipeline behind one facade:
// weight resolution, score aggregation, the progression gate, retake
// policy, risk assessment and course scans.
//
// Every method is a pure function of its inputs, so one Engine is safe
// to share across goroutines and results are identical on repeated
// evaluation of the same record.
package engine

import (
	"fmt"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/progression"
	"github.com/Desire-2/afriprog/internal/retake"
	"github.com/Desire-2/afriprog/internal/risk"
	"github.com/Desire-2/afriprog/internal/weights"
)

// Config carries the tunable policy for an Engine. Zero values fall
// back to the course defaults and the canonical weight table.
type Config struct {
	// Policy supplies the passing threshold and attempt limit applied
	// to records that do not carry their own.
	Policy course.Policy
	// Profiles overrides weight profiles per availability combination.
	// Overrides that fail validation resolve to the default profile.
	Profiles map[weights.Availability]weights.Profile
}

// DefaultConfig returns the standard engine configuration.
func DefaultConfig() Config {
	return Config{Policy: course.DefaultPolicy()}
}

// Engine evaluates learner progression through course modules.
type Engine struct {
	gate     *progression.Gate
	resolver *weights.Resolver
	policy   course.Policy
}

// New builds an Engine after verifying the canonical weight table. When
// cfg carries malformed profile overrides the returned error reports
// them, but the engine itself is still returned and usable: rejected
// combinations resolve to the default profile.
func New(cfg Config) (*Engine, error) {
	if err := weights.VerifyTable(); err != nil {
		return nil, fmt.Errorf("verify weight table: %w", err)
	}

	resolver, resolverErr := weights.NewResolver(cfg.Profiles)
	if resolverErr != nil {
		resolverErr = fmt.Errorf("weight profile overrides: %w", resolverErr)
	}

	gate := progression.NewGate(resolver, cfg.Policy)
	return &Engine{
		gate:     gate,
		resolver: resolver,
		policy:   gate.Policy(),
	}, resolverErr
}

// Policy returns the grading policy in effect.
func (e *Engine) Policy() course.Policy {
	return e.policy
}

// Profile returns the weight profile in effect for an availability
// combination.
func (e *Engine) Profile(a weights.Availability) weights.Profile {
	return e.resolver.Resolve(a)
}

// Evaluation bundles every assessment of one module.
type Evaluation struct {
	ModuleID string             `json:"moduleId"`
	Score    float64            `json:"cumulativeScore"`
	Profile  weights.Profile    `json:"weights"`
	Report   progression.Report `json:"validation"`
	Retake   retake.Eligibility `json:"retake"`
	Risk     risk.Assessment    `json:"risk"`
}

// Evaluate runs the full assessment pipeline for one module: cumulative
// score, validation report, retake eligibility and suspension risk.
func (e *Engine) Evaluate(md course.ModuleData) Evaluation {
	score, profile := e.gate.Score(md)
	elig := retake.Evaluate(md.Progress, e.policy)
	return Evaluation{
		ModuleID: md.Module.ID,
		Score:    score,
		Profile:  profile,
		Report:   e.gate.Validate(md),
		Retake:   elig,
		Risk:     risk.Assess(md, score, elig),
	}
}

// Score computes the cumulative score and effective weight profile for
// one module.
func (e *Engine) Score(md course.ModuleData) (float64, weights.Profile) {
	return e.gate.Score(md)
}

// Validate reports whether the learner may proceed past the module.
func (e *Engine) Validate(md course.ModuleData) progression.Report {
	return e.gate.Validate(md)
}

// RetakeEligibility evaluates the bounded-retry policy for a record.
func (e *Engine) RetakeEligibility(rec *course.ProgressRecord) retake.Eligibility {
	return retake.Evaluate(rec, e.policy)
}

// Risk classifies suspension risk for one module.
func (e *Engine) Risk(md course.ModuleData) risk.Assessment {
	score, _ := e.gate.Score(md)
	return risk.Assess(md, score, e.RetakeEligibility(md.Progress))
}

// Transition applies a progression event to a module's record.
func (e *Engine) Transition(md course.ModuleData, ev progression.Event) (course.ProgressRecord, error) {
	return e.gate.Transition(md, ev)
}

// NextUnlockable returns the next module that may be unlocked in a
// course, or nil.
func (e *Engine) NextUnlockable(modules []course.ModuleData) *course.ModuleData {
	return course.NextUnlockable(modules)
}

// Rollup summarizes course-level progress.
func (e *Engine) Rollup(modules []course.ModuleData) course.Rollup {
	return course.Summarize(modules, e.resolver)
}

// WeightRow pairs one availability combination with its effective
// profile.
type WeightRow struct {
	Availability weights.Availability `json:"availability"`
	Profile      weights.Profile      `json:"profile"`
}

// WeightTable returns the effective profile for all eight availability
// combinations, overrides included. Consumers holding a local copy of
// the table compare against this to detect drift.
func (e *Engine) WeightTable() []WeightRow {
	rows := make([]WeightRow, 0, 8)
	for i := 0; i < 8; i++ {
		a := weights.Availability{
			Quizzes:         i&1 != 0,
			Assignments:     i&2 != 0,
			FinalAssessment: i&4 != 0,
		}
		rows = append(rows, WeightRow{Availability: a, Profile: e.resolver.Resolve(a)})
	}
	return rows
}
