package store

import (
	"context"
	"fmt"

	"github.com/Desire-2/afriprog/ent"
	"github.com/Desire-2/afriprog/ent/moduleprogress"
	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/retake"
)

// progressRepo implements ProgressRepo using the ent client.
type progressRepo struct {
	store *Store
}

func (r *progressRepo) Get(ctx context.Context, learnerID, moduleID string) (*course.ProgressRecord, error) {
	row, err := r.store.client.ModuleProgress.Query().
		Where(
			moduleprogress.LearnerID(learnerID),
			moduleprogress.ModuleID(moduleID),
		).
		Only(ctx)
	if ent.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}

	rec := rowToRecord(row)
	return &rec, nil
}

func (r *progressRepo) Put(ctx context.Context, learnerID, moduleID string, rec course.ProgressRecord) error {
	return r.store.withTx(ctx, func(tx *ent.Tx) error {
		row, err := txGet(ctx, tx, learnerID, moduleID)
		if err != nil {
			return err
		}
		return persist(ctx, tx, row, learnerID, moduleID, rec)
	})
}

func (r *progressRepo) ForLearner(ctx context.Context, learnerID string) (map[string]course.ProgressRecord, error) {
	rows, err := r.store.client.ModuleProgress.Query().
		Where(moduleprogress.LearnerID(learnerID)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("query learner progress: %w", err)
	}

	out := make(map[string]course.ProgressRecord, len(rows))
	for _, row := range rows {
		out[row.ModuleID] = rowToRecord(row)
	}
	return out, nil
}

func (r *progressRepo) ApplyTransition(ctx context.Context, learnerID, moduleID string, fn Mutation) (*course.ProgressRecord, error) {
	// The sequence number is allocated before the transaction opens so the
	// counter update cannot contend with the row locks held below. A rolled
	// back transition leaves a gap in the sequence, which is harmless.
	seq, err := r.store.seq.Next(ctx)
	if err != nil {
		return nil, err
	}

	var out course.ProgressRecord
	err = r.store.withTx(ctx, func(tx *ent.Tx) error {
		row, err := txGet(ctx, tx, learnerID, moduleID)
		if err != nil {
			return err
		}

		var current *course.ProgressRecord
		if row != nil {
			rec := rowToRecord(row)
			current = &rec
		}

		next, event, err := fn(current)
		if err != nil {
			return err
		}

		if err := persist(ctx, tx, row, learnerID, moduleID, next); err != nil {
			return err
		}
		if event != nil {
			event.LearnerID = learnerID
			event.ModuleID = moduleID
			if err := appendTx(ctx, tx, seq, *event); err != nil {
				return err
			}
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *progressRepo) BeginRetake(ctx context.Context, learnerID, moduleID string, pol course.Policy) (*course.ProgressRecord, retake.Eligibility, error) {
	seq, err := r.store.seq.Next(ctx)
	if err != nil {
		return nil, retake.Eligibility{}, err
	}

	var (
		out  course.ProgressRecord
		elig retake.Eligibility
	)
	err = r.store.withTx(ctx, func(tx *ent.Tx) error {
		row, err := txGet(ctx, tx, learnerID, moduleID)
		if err != nil {
			return err
		}

		var current *course.ProgressRecord
		if row != nil {
			rec := rowToRecord(row)
			current = &rec
		}

		// Eligibility is decided on the stored row inside the transaction,
		// so two racing retakes cannot both consume the final attempt.
		elig = retake.Evaluate(current, pol)
		out = course.Normalize(current, pol)
		if !elig.CanRetake {
			return nil
		}

		from := out.Status
		out.Status = course.StatusInProgress
		out.AttemptsCount++

		if err := persist(ctx, tx, row, learnerID, moduleID, out); err != nil {
			return err
		}

		var cum float64
		if out.CumulativeScore != nil {
			cum = *out.CumulativeScore
		}
		return appendTx(ctx, tx, seq, TransitionEventData{
			LearnerID:       learnerID,
			ModuleID:        moduleID,
			FromStatus:      string(from),
			ToStatus:        string(out.Status),
			Trigger:         "retake",
			CumulativeScore: cum,
			Attempts:        out.AttemptsCount,
		})
	})
	if err != nil {
		return nil, retake.Eligibility{}, err
	}
	return &out, elig, nil
}

// txGet loads the row for one learner and module inside tx, or nil when
// no row exists yet.
func txGet(ctx context.Context, tx *ent.Tx, learnerID, moduleID string) (*ent.ModuleProgress, error) {
	row, err := tx.ModuleProgress.Query().
		Where(
			moduleprogress.LearnerID(learnerID),
			moduleprogress.ModuleID(moduleID),
		).
		Only(ctx)
	if ent.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query progress: %w", err)
	}
	return row, nil
}

// persist writes rec as the row for the pair, creating it when row is nil
// and updating it otherwise. Entities loaded through tx stay bound to it,
// so the update runs inside the same transaction.
func persist(ctx context.Context, tx *ent.Tx, row *ent.ModuleProgress, learnerID, moduleID string, rec course.ProgressRecord) error {
	if row == nil {
		builder := tx.ModuleProgress.Create().
			SetLearnerID(learnerID).
			SetModuleID(moduleID).
			SetStatus(string(rec.Status)).
			SetCourseContributionScore(rec.CourseContributionScore).
			SetQuizScore(rec.QuizScore).
			SetAssignmentScore(rec.AssignmentScore).
			SetFinalAssessmentScore(rec.FinalAssessmentScore).
			SetAttemptsCount(rec.AttemptsCount).
			SetMaxAttempts(rec.MaxAttempts).
			SetPassingThreshold(rec.PassingThreshold)
		if rec.CumulativeScore != nil {
			builder = builder.SetCumulativeScore(*rec.CumulativeScore)
		}
		if _, err := builder.Save(ctx); err != nil {
			return fmt.Errorf("create progress: %w", err)
		}
		return nil
	}

	builder := row.Update().
		SetStatus(string(rec.Status)).
		SetCourseContributionScore(rec.CourseContributionScore).
		SetQuizScore(rec.QuizScore).
		SetAssignmentScore(rec.AssignmentScore).
		SetFinalAssessmentScore(rec.FinalAssessmentScore).
		SetAttemptsCount(rec.AttemptsCount).
		SetMaxAttempts(rec.MaxAttempts).
		SetPassingThreshold(rec.PassingThreshold)
	if rec.CumulativeScore != nil {
		builder = builder.SetCumulativeScore(*rec.CumulativeScore)
	} else {
		builder = builder.ClearCumulativeScore()
	}
	if _, err := builder.Save(ctx); err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	return nil
}

// rowToRecord converts an ent row into the domain record.
func rowToRecord(row *ent.ModuleProgress) course.ProgressRecord {
	rec := course.ProgressRecord{
		Status:                  course.Status(row.Status),
		CourseContributionScore: row.CourseContributionScore,
		QuizScore:               row.QuizScore,
		AssignmentScore:         row.AssignmentScore,
		FinalAssessmentScore:    row.FinalAssessmentScore,
		AttemptsCount:           row.AttemptsCount,
		MaxAttempts:             row.MaxAttempts,
		PassingThreshold:        row.PassingThreshold,
	}
	if row.CumulativeScore != nil {
		v := *row.CumulativeScore
		rec.CumulativeScore = &v
	}
	return rec
}
