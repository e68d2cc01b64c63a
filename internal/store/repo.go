package store

import (
	"context"
	"time"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/retake"
)

// QueryOpts configures event queries with filtering and pagination.
type QueryOpts struct {
	Limit  int   // max results (0 = unlimited)
	After  int64 // sequence > After
	Before int64 // sequence < Before
}

// Mutation inspects the current stored record and returns the record to
// persist plus the audit event to append. current is nil when the learner
// has no row for the module yet; a nil event skips the audit log entry.
// The function runs inside the update transaction and must be pure.
type Mutation func(current *course.ProgressRecord) (course.ProgressRecord, *TransitionEventData, error)

// ProgressRepo manages per-learner per-module progress records.
type ProgressRepo interface {
	// Get returns the record for one learner and module, or nil if none
	// has been stored yet.
	Get(ctx context.Context, learnerID, moduleID string) (*course.ProgressRecord, error)

	// Put stores the record, replacing any existing row for the pair.
	Put(ctx context.Context, learnerID, moduleID string, rec course.ProgressRecord) error

	// ForLearner returns all stored records for a learner keyed by module ID.
	ForLearner(ctx context.Context, learnerID string) (map[string]course.ProgressRecord, error)

	// ApplyTransition runs fn against the current record and persists its
	// result in a single transaction, appending the returned event to the
	// audit log. The stored row is authoritative: fn receives what is in
	// the database, not what the caller last saw.
	ApplyTransition(ctx context.Context, learnerID, moduleID string, fn Mutation) (*course.ProgressRecord, error)

	// BeginRetake re-checks retake eligibility against the stored record
	// and, when eligible, moves the module to in_progress and increments
	// the attempt count exactly once, all inside one transaction. The
	// returned eligibility reflects the pre-retake state; when it denies
	// the retake the record is returned unchanged.
	BeginRetake(ctx context.Context, learnerID, moduleID string, pol course.Policy) (*course.ProgressRecord, retake.Eligibility, error)
}

// TransitionEventData captures the data for a single status transition event.
type TransitionEventData struct {
	LearnerID       string
	ModuleID        string
	FromStatus      string
	ToStatus        string
	Trigger         string
	CumulativeScore float64
	Attempts        int
}

// TransitionRecord is a stored transition event with its log position.
type TransitionRecord struct {
	Sequence        int64
	Timestamp       time.Time
	LearnerID       string
	ModuleID        string
	FromStatus      string
	ToStatus        string
	Trigger         string
	CumulativeScore float64
	Attempts        int
}

// EventRepo provides append and query access to the transition log.
type EventRepo interface {
	// AppendTransition records a status transition event.
	AppendTransition(ctx context.Context, data TransitionEventData) error

	// History returns transition events for one learner and module, newest
	// first.
	History(ctx context.Context, learnerID, moduleID string, opts QueryOpts) ([]TransitionRecord, error)
}
