package store

// Transition log infrastructure.
//
// Every audit event shares one global sequence so the log reads as a
// single ordered stream even when future event types land in their own
// ent-managed tables. The counter is raw SQL because ent has no
// database-level atomic counter; the mutex serializes within the process
// and the RETURNING clause makes the increment atomic at the database
// level.

import (
	"context"
	"database/sql"
	"fmt"
	"sync"

	"github.com/Desire-2/afriprog/ent"
	"github.com/Desire-2/afriprog/ent/transitionevent"
)

// sequenceCounter manages the global monotonic sequence number shared
// across all event types. Per-table auto-increment IDs cannot establish
// cross-type ordering, so every append draws from this single counter.
type sequenceCounter struct {
	mu sync.Mutex
	db *sql.DB
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(db *sql.DB) (*sequenceCounter, error) {
	_, err := db.Exec(`CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	_, err = db.Exec(`INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{db: db}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var seq int64
	err := sc.db.QueryRowContext(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
	).Scan(&seq)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, nil
}

// eventRepo implements EventRepo backed by ent and the global sequence counter.
type eventRepo struct {
	client *ent.Client
	seq    *sequenceCounter
}

func (r *eventRepo) AppendTransition(ctx context.Context, data TransitionEventData) error {
	seqNum, err := r.seq.Next(ctx)
	if err != nil {
		return fmt.Errorf("next sequence: %w", err)
	}

	_, err = r.client.TransitionEvent.Create().
		SetSequence(seqNum).
		SetLearnerID(data.LearnerID).
		SetModuleID(data.ModuleID).
		SetFromStatus(data.FromStatus).
		SetToStatus(data.ToStatus).
		SetTrigger(data.Trigger).
		SetCumulativeScore(data.CumulativeScore).
		SetAttempts(data.Attempts).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save transition event: %w", err)
	}
	return nil
}

func (r *eventRepo) History(ctx context.Context, learnerID, moduleID string, opts QueryOpts) ([]TransitionRecord, error) {
	query := r.client.TransitionEvent.Query().
		Where(
			transitionevent.LearnerID(learnerID),
			transitionevent.ModuleID(moduleID),
		).
		Order(ent.Desc(transitionevent.FieldSequence))

	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	if opts.After > 0 {
		query = query.Where(transitionevent.SequenceGT(opts.After))
	}
	if opts.Before > 0 {
		query = query.Where(transitionevent.SequenceLT(opts.Before))
	}

	events, err := query.All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query transition events: %w", err)
	}

	records := make([]TransitionRecord, len(events))
	for i, e := range events {
		records[i] = TransitionRecord{
			Sequence:        e.Sequence,
			Timestamp:       e.Timestamp,
			LearnerID:       e.LearnerID,
			ModuleID:        e.ModuleID,
			FromStatus:      e.FromStatus,
			ToStatus:        e.ToStatus,
			Trigger:         e.Trigger,
			CumulativeScore: e.CumulativeScore,
			Attempts:        e.Attempts,
		}
	}
	return records, nil
}

// appendTx writes a transition event inside tx with a pre-allocated sequence.
func appendTx(ctx context.Context, tx *ent.Tx, seq int64, data TransitionEventData) error {
	_, err := tx.TransitionEvent.Create().
		SetSequence(seq).
		SetLearnerID(data.LearnerID).
		SetModuleID(data.ModuleID).
		SetFromStatus(data.FromStatus).
		SetToStatus(data.ToStatus).
		SetTrigger(data.Trigger).
		SetCumulativeScore(data.CumulativeScore).
		SetAttempts(data.Attempts).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("save transition event: %w", err)
	}
	return nil
}
