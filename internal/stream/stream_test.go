package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/engine"
	"github.com/Desire-2/afriprog/internal/store"
	"github.com/Desire-2/afriprog/internal/telemetry"
)

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func newTestSubscriber(t *testing.T) (*Subscriber, *fakePublisher, *store.Store) {
	t.Helper()
	eng, err := engine.New(engine.DefaultConfig())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	st, err := store.Open("file::memory:?cache=shared")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := st.Close(); err != nil {
			t.Errorf("close store: %v", err)
		}
	})
	pub := &fakePublisher{}
	sub := &Subscriber{
		pub:        pub,
		eng:        eng,
		progress:   st.ProgressRepo(),
		events:     st.EventRepo(),
		subject:    "progress.events.>",
		riskPrefix: "progress.risk",
		logger:     zap.NewNop(),
		metrics:    telemetry.NewMetrics(),
	}
	return sub, pub, st
}

// event builds an envelope for a quiz-and-assignment module, whose
// weights resolve to 15/40/45/0.
func event(learnerID, moduleID, progress string) []byte {
	md := fmt.Sprintf(`{
		"module": {
			"id": %q,
			"title": "Kinematics",
			"order": 1,
			"assessments": {"hasQuizzes": true, "hasAssignments": true, "hasFinalAssessment": false}
		},
		"progress": %s
	}`, moduleID, progress)
	return []byte(fmt.Sprintf(`{"learnerId": %q, "moduleData": %s}`, learnerID, md))
}

func TestHandleStoresSnapshot(t *testing.T) {
	sub, pub, st := newTestSubscriber(t)
	ctx := context.Background()

	msg := event("l1", "m1", `{"status":"in_progress","courseContributionScore":90,"quizScore":80,"assignmentScore":85}`)
	if err := sub.handle(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rec, err := st.ProgressRepo().Get(ctx, "l1", "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("expected stored record")
	}
	if rec.Status != course.StatusInProgress {
		t.Errorf("status = %q, want in_progress", rec.Status)
	}
	if rec.QuizScore != 80 {
		t.Errorf("quiz score = %v, want 80", rec.QuizScore)
	}
	if rec.MaxAttempts != 3 || rec.PassingThreshold != 80 {
		t.Errorf("policy defaults not applied: max=%d threshold=%v", rec.MaxAttempts, rec.PassingThreshold)
	}

	history, err := st.EventRepo().History(ctx, "l1", "m1", store.QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}
	evt := history[0]
	if evt.FromStatus != "locked" || evt.ToStatus != "in_progress" || evt.Trigger != "sync" {
		t.Errorf("unexpected event: %+v", evt)
	}
	if evt.CumulativeScore != 83.75 {
		t.Errorf("event score = %v, want 83.75", evt.CumulativeScore)
	}

	if len(pub.subjects) != 0 {
		t.Errorf("unexpected publishes: %v", pub.subjects)
	}
}

func TestHandleAuditsOnlyStatusChanges(t *testing.T) {
	sub, _, st := newTestSubscriber(t)
	ctx := context.Background()

	first := event("l2", "m1", `{"status":"in_progress","courseContributionScore":90,"quizScore":80,"assignmentScore":85}`)
	if err := sub.handle(ctx, first); err != nil {
		t.Fatalf("first handle: %v", err)
	}
	second := event("l2", "m1", `{"status":"in_progress","courseContributionScore":90,"quizScore":85,"assignmentScore":85}`)
	if err := sub.handle(ctx, second); err != nil {
		t.Fatalf("second handle: %v", err)
	}

	history, err := st.EventRepo().History(ctx, "l2", "m1", store.QueryOpts{})
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("history length = %d, want 1", len(history))
	}

	rec, err := st.ProgressRepo().Get(ctx, "l2", "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec.QuizScore != 85 {
		t.Errorf("quiz score = %v, want 85 after second event", rec.QuizScore)
	}
}

func TestHandlePublishesRiskChange(t *testing.T) {
	sub, pub, _ := newTestSubscriber(t)
	ctx := context.Background()

	// Two of three attempts used puts the learner on the final attempt,
	// which assesses critical regardless of score.
	msg := event("l3", "m1", `{"status":"in_progress","courseContributionScore":90,"quizScore":80,"assignmentScore":85,"attemptsCount":2}`)
	if err := sub.handle(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	if len(pub.subjects) != 1 {
		t.Fatalf("publish count = %d, want 1", len(pub.subjects))
	}
	if pub.subjects[0] != "progress.risk.l3.m1" {
		t.Errorf("subject = %q, want progress.risk.l3.m1", pub.subjects[0])
	}

	var evt riskEvent
	if err := json.Unmarshal(pub.payloads[0], &evt); err != nil {
		t.Fatalf("decode published event: %v", err)
	}
	if evt.EventID == "" {
		t.Error("expected non-empty eventId")
	}
	if evt.From != "low" || evt.To != "critical" {
		t.Errorf("levels = %q -> %q, want low -> critical", evt.From, evt.To)
	}
	if !evt.Assessment.AtRisk {
		t.Error("expected at-risk assessment")
	}
}

func TestHandleToleratesPublishFailure(t *testing.T) {
	sub, pub, st := newTestSubscriber(t)
	pub.err = errors.New("broker down")
	ctx := context.Background()

	msg := event("l4", "m1", `{"status":"in_progress","quizScore":10,"attemptsCount":2}`)
	if err := sub.handle(ctx, msg); err != nil {
		t.Fatalf("handle: %v", err)
	}

	rec, err := st.ProgressRepo().Get(ctx, "l4", "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec == nil {
		t.Fatal("record should be stored even when the publish fails")
	}
}

func TestHandleRejectsMalformed(t *testing.T) {
	sub, _, st := newTestSubscriber(t)
	ctx := context.Background()

	cases := []struct {
		name string
		data string
	}{
		{"not json", `not json`},
		{"missing learner", `{"moduleData": {"module": {"id": "m1"}}}`},
		{"bad module data", `{"learnerId": "l5", "moduleData": {"module": {"id": 7}}}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := sub.handle(ctx, []byte(tc.data)); err == nil {
				t.Fatal("expected error")
			}
		})
	}

	rec, err := st.ProgressRepo().Get(ctx, "l5", "m1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rec != nil {
		t.Error("rejected event must not create a record")
	}
}

func TestHandleChecksContractVersion(t *testing.T) {
	sub, _, _ := newTestSubscriber(t)
	ctx := context.Background()

	md := `{
		"module": {
			"id": "m1",
			"title": "Kinematics",
			"order": 1,
			"assessments": {"hasQuizzes": true, "hasAssignments": true, "hasFinalAssessment": false}
		},
		"progress": {"status": "in_progress", "quizScore": 50}
	}`

	cases := []struct {
		name    string
		version string
		wantErr bool
	}{
		{"unpinned", "", false},
		{"older compatible pin", "v1.0.0", false},
		{"newer than engine", "v1.99.0", true},
		{"major mismatch", "v2.0.0", true},
		{"unparseable", "1.0", true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			msg := []byte(fmt.Sprintf(`{"learnerId": "l6", "contractVersion": %q, "moduleData": %s}`, tc.version, md))
			err := sub.handle(ctx, msg)
			if tc.wantErr && err == nil {
				t.Fatal("expected rejection")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("handle: %v", err)
			}
		})
	}
}
