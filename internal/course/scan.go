package course

import (
	"sort"

	"github.com/Desire-2/afriprog/internal/scoring"
	"github.com/Desire-2/afriprog/internal/weights"
)

// Score returns the cumulative score for one module under its resolved
// weight profile. A nil resolver uses the canonical weight table; a nil
// progress record scores zero.
func Score(md ModuleData, r *weights.Resolver) float64 {
	rec := Normalize(md.Progress, DefaultPolicy())
	profile := r.Resolve(md.Module.Assessments)
	score, _ := scoring.Cumulative(rec.CumulativeScore, rec.Components(), profile)
	return score
}

// NextUnlockable returns the first locked module, in course order, whose
// preceding modules are all completed. It returns nil when every module
// is past locked or an earlier module is still unfinished.
func NextUnlockable(modules []ModuleData) *ModuleData {
	ordered := sortByOrder(modules)
	for i := range ordered {
		rec := Normalize(ordered[i].Progress, DefaultPolicy())
		if rec.Status != StatusLocked {
			continue
		}
		// Any later locked module is behind this one, so the first
		// locked module is the only candidate.
		for _, prev := range ordered[:i] {
			prevRec := Normalize(prev.Progress, DefaultPolicy())
			if prevRec.Status != StatusCompleted {
				return nil
			}
		}
		m := ordered[i]
		return &m
	}
	return nil
}

// Rollup summarizes course-level progress across a module list.
type Rollup struct {
	TotalModules     int             `json:"totalModules"`
	CompletedModules int             `json:"completedModules"`
	OverallProgress  float64         `json:"overallProgress"`
	AverageScore     float64         `json:"averageScore"`
	Modules          []ModuleSummary `json:"modules"`
}

// ModuleSummary is one module's line in a course rollup.
type ModuleSummary struct {
	ModuleID string  `json:"moduleId"`
	Title    string  `json:"title"`
	Status   Status  `json:"status"`
	Score    float64 `json:"score"`
	Attempts int     `json:"attempts"`
}

// Summarize computes the course rollup: overall progress as the share
// of completed modules, average score over completed modules only, and
// a per-module breakdown in course order.
func Summarize(modules []ModuleData, r *weights.Resolver) Rollup {
	ordered := sortByOrder(modules)

	out := Rollup{
		TotalModules: len(ordered),
		Modules:      make([]ModuleSummary, 0, len(ordered)),
	}
	var completedTotal float64
	for _, md := range ordered {
		rec := Normalize(md.Progress, DefaultPolicy())
		score := Score(md, r)
		if rec.Status == StatusCompleted {
			out.CompletedModules++
			completedTotal += score
		}
		out.Modules = append(out.Modules, ModuleSummary{
			ModuleID: md.Module.ID,
			Title:    md.Module.Title,
			Status:   rec.Status,
			Score:    score,
			Attempts: rec.AttemptsCount,
		})
	}
	if out.TotalModules > 0 {
		out.OverallProgress = scoring.Round2(float64(out.CompletedModules) / float64(out.TotalModules) * 100)
	}
	if out.CompletedModules > 0 {
		out.AverageScore = scoring.Round2(completedTotal / float64(out.CompletedModules))
	}
	return out
}

// sortByOrder returns a copy of modules sorted by Module.Order,
// preserving input order for ties.
func sortByOrder(modules []ModuleData) []ModuleData {
	ordered := make([]ModuleData, len(modules))
	copy(ordered, modules)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Module.Order < ordered[j].Module.Order
	})
	return ordered
}
