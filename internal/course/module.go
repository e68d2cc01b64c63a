package course

import "github.com/Desire-2/afriprog/internal/weights"

// Module is the static metadata for one course module. Order defines
// the course sequence; assessments determine the weight profile.
type Module struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Order       int                  `json:"order"`
	Assessments weights.Availability `json:"assessments"`
}

// ModuleData pairs a module with one learner's progress. A nil Progress
// means the learner has no record for the module yet.
type ModuleData struct {
	Module   Module          `json:"module"`
	Progress *ProgressRecord `json:"progress,omitempty"`
}
