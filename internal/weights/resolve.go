package weights

import (
	"errors"
	"fmt"
)

// table maps every availability combination to its canonical profile.
// Keys are {Quizzes, Assignments, FinalAssessment}. As assessment types
// drop out, their weight shifts onto course contribution and the
// remaining types.
var table = map[Availability]Profile{
	{false, false, false}: {100, 0, 0, 0},
	{false, false, true}:  {40, 0, 0, 60},
	{false, true, false}:  {30, 0, 70, 0},
	{true, false, false}:  {30, 70, 0, 0},
	{false, true, true}:   {15, 0, 55, 30},
	{true, false, true}:   {15, 55, 0, 30},
	{true, true, false}:   {15, 40, 45, 0},
	{true, true, true}:    {10, 30, 40, 20},
}

// Resolve returns the canonical weight profile for an availability
// combination.
func Resolve(a Availability) Profile {
	return table[a]
}

// VerifyTable checks that the canonical table covers all eight
// availability combinations and that every profile is well formed.
func VerifyTable() error {
	var errs []error
	if len(table) != 8 {
		errs = append(errs, fmt.Errorf("weight table has %d entries, want 8", len(table)))
	}
	for a, p := range table {
		if err := Validate(p); err != nil {
			errs = append(errs, fmt.Errorf("availability %+v: %w", a, err))
		}
	}
	return errors.Join(errs...)
}

// Resolver resolves weight profiles, applying per-combination overrides
// on top of the canonical table. A combination whose override failed
// validation resolves to DefaultProfile rather than the broken override
// or the canonical row.
type Resolver struct {
	overrides map[Availability]Profile
	rejected  map[Availability]bool
}

// NewResolver builds a Resolver from a set of overrides. Malformed
// overrides are rejected and reported in the combined error; the
// Resolver remains usable either way.
func NewResolver(overrides map[Availability]Profile) (*Resolver, error) {
	r := &Resolver{}
	var errs []error
	for a, p := range overrides {
		if err := Validate(p); err != nil {
			if r.rejected == nil {
				r.rejected = make(map[Availability]bool)
			}
			r.rejected[a] = true
			errs = append(errs, fmt.Errorf("override for %+v: %w", a, err))
			continue
		}
		if r.overrides == nil {
			r.overrides = make(map[Availability]Profile)
		}
		r.overrides[a] = p
	}
	return r, errors.Join(errs...)
}

// Resolve returns the profile for a. A nil Resolver resolves from the
// canonical table.
func (r *Resolver) Resolve(a Availability) Profile {
	if r == nil {
		return Resolve(a)
	}
	if r.rejected[a] {
		return DefaultProfile()
	}
	if p, ok := r.overrides[a]; ok {
		return p
	}
	return Resolve(a)
}
