// Package stream ingests learner progress events from NATS and keeps
// the store in sync with the upstream gradebook. Each event carries a
// full module snapshot that replaces the stored row; a status change is
// recorded in the audit log, and a risk level change is published back
// onto the bus for downstream consumers such as notification services.
package stream

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"github.com/Desire-2/afriprog/internal/contract"
	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/engine"
	"github.com/Desire-2/afriprog/internal/risk"
	"github.com/Desire-2/afriprog/internal/store"
	"github.com/Desire-2/afriprog/internal/telemetry"
)

// Connect dials NATS for a long-lived subscriber. A failed initial
// connect retries in the background, and a dropped connection attempts
// up to five reconnects one second apart.
func Connect(url string) (*nats.Conn, error) {
	nc, err := nats.Connect(url,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(1*time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats at %s: %w", url, err)
	}
	return nc, nil
}

// publisher sends one message to a subject. *nats.Conn satisfies it.
type publisher interface {
	Publish(subject string, data []byte) error
}

// Options configures a Subscriber. Conn, Engine and Progress are
// required; Events may be nil to skip audit logging.
type Options struct {
	Conn              *nats.Conn
	Engine            *engine.Engine
	Progress          store.ProgressRepo
	Events            store.EventRepo
	Subject           string // subscription subject, may contain wildcards
	RiskSubjectPrefix string // prefix for published risk change subjects
	Logger            *zap.Logger
	Metrics           *telemetry.Metrics
}

// Subscriber consumes progress events from a NATS subject and applies
// them to the store.
type Subscriber struct {
	conn       *nats.Conn
	pub        publisher
	eng        *engine.Engine
	progress   store.ProgressRepo
	events     store.EventRepo
	subject    string
	riskPrefix string
	logger     *zap.Logger
	metrics    *telemetry.Metrics
}

// NewSubscriber builds a Subscriber from opts. Logger and Metrics fall
// back to a no-op logger and the process-wide metrics set.
func NewSubscriber(opts Options) (*Subscriber, error) {
	if opts.Conn == nil {
		return nil, errors.New("nats connection is required")
	}
	if opts.Engine == nil {
		return nil, errors.New("engine is required")
	}
	if opts.Progress == nil {
		return nil, errors.New("progress repository is required")
	}
	if opts.Subject == "" {
		return nil, errors.New("subject is required")
	}
	if opts.RiskSubjectPrefix == "" {
		opts.RiskSubjectPrefix = "progress.risk"
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Metrics == nil {
		opts.Metrics = telemetry.NewMetrics()
	}
	return &Subscriber{
		conn:       opts.Conn,
		pub:        opts.Conn,
		eng:        opts.Engine,
		progress:   opts.Progress,
		events:     opts.Events,
		subject:    opts.Subject,
		riskPrefix: opts.RiskSubjectPrefix,
		logger:     opts.Logger,
		metrics:    opts.Metrics,
	}, nil
}

// Run subscribes to the configured subject and applies events until ctx
// is cancelled. A rejected event is logged and counted, never fatal.
func (s *Subscriber) Run(ctx context.Context) error {
	msgChan := make(chan *nats.Msg, 10)
	sub, err := s.conn.ChanSubscribe(s.subject, msgChan)
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", s.subject, err)
	}
	defer func() {
		_ = sub.Unsubscribe()
	}()

	s.logger.Info("listening for progress events", zap.String("subject", s.subject))
	for {
		select {
		case msg := <-msgChan:
			if err := s.handle(ctx, msg.Data); err != nil {
				s.metrics.RecordStreamEvent("rejected")
				s.logger.Warn("progress event rejected", zap.Error(err))
				continue
			}
			s.metrics.RecordStreamEvent("applied")
		case <-ctx.Done():
			return nil
		}
	}
}

// envelope is the wire form of one upstream progress event. Publishers
// may pin the contract version they were built against; an event pinned
// to an incompatible version is rejected before decoding.
type envelope struct {
	LearnerID       string          `json:"learnerId"`
	ContractVersion string          `json:"contractVersion"`
	ModuleData      json.RawMessage `json:"moduleData"`
}

// riskEvent is published when an applied event moves a learner's risk
// level for a module.
type riskEvent struct {
	EventID    string          `json:"eventId"`
	LearnerID  string          `json:"learnerId"`
	ModuleID   string          `json:"moduleId"`
	From       risk.Level      `json:"from"`
	To         risk.Level      `json:"to"`
	Assessment risk.Assessment `json:"assessment"`
}

// handle applies one event. The snapshot in the envelope is
// authoritative: it replaces the stored row wholesale rather than being
// merged, because the upstream gradebook owns these learners.
func (s *Subscriber) handle(ctx context.Context, data []byte) error {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return fmt.Errorf("decode envelope: %w", err)
	}
	if env.LearnerID == "" {
		return errors.New("envelope missing learnerId")
	}
	if env.ContractVersion != "" && !contract.CompatibleWith(env.ContractVersion) {
		return fmt.Errorf("contract version %s is not compatible with %s", env.ContractVersion, contract.Version)
	}
	md, err := contract.DecodeModuleData(env.ModuleData)
	if err != nil {
		return fmt.Errorf("decode module data: %w", err)
	}

	stored, err := s.progress.Get(ctx, env.LearnerID, md.Module.ID)
	if err != nil {
		return fmt.Errorf("load stored record: %w", err)
	}
	before := s.eng.Risk(course.ModuleData{Module: md.Module, Progress: stored})
	fromStatus := course.Normalize(stored, s.eng.Policy()).Status

	rec := course.Normalize(md.Progress, s.eng.Policy())
	if err := s.progress.Put(ctx, env.LearnerID, md.Module.ID, rec); err != nil {
		return fmt.Errorf("store record: %w", err)
	}
	score, _ := s.eng.Score(course.ModuleData{Module: md.Module, Progress: &rec})

	if s.events != nil && rec.Status != fromStatus {
		evt := store.TransitionEventData{
			LearnerID:       env.LearnerID,
			ModuleID:        md.Module.ID,
			FromStatus:      string(fromStatus),
			ToStatus:        string(rec.Status),
			Trigger:         "sync",
			CumulativeScore: score,
			Attempts:        rec.AttemptsCount,
		}
		if err := s.events.AppendTransition(ctx, evt); err != nil {
			return fmt.Errorf("append transition event: %w", err)
		}
	}

	after := s.eng.Risk(course.ModuleData{Module: md.Module, Progress: &rec})
	s.metrics.RecordRiskLevel(string(after.Level))
	if after.Level != before.Level {
		// The row is already stored, so a publish failure must not
		// reject the event. The next sync re-evaluates and retries.
		if err := s.publishRiskChange(env.LearnerID, md.Module.ID, before.Level, after); err != nil {
			s.logger.Warn("risk change not published",
				zap.String("learner", env.LearnerID),
				zap.String("module", md.Module.ID),
				zap.Error(err))
		} else {
			s.logger.Info("risk level changed",
				zap.String("learner", env.LearnerID),
				zap.String("module", md.Module.ID),
				zap.String("from", string(before.Level)),
				zap.String("to", string(after.Level)))
		}
	}

	s.logger.Info("progress event applied",
		zap.String("learner", env.LearnerID),
		zap.String("module", md.Module.ID),
		zap.String("status", string(rec.Status)),
		zap.Float64("cumulativeScore", score))
	return nil
}

func (s *Subscriber) publishRiskChange(learnerID, moduleID string, from risk.Level, a risk.Assessment) error {
	evt := riskEvent{
		EventID:    uuid.NewString(),
		LearnerID:  learnerID,
		ModuleID:   moduleID,
		From:       from,
		To:         a.Level,
		Assessment: a,
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("marshal risk event: %w", err)
	}
	subject := fmt.Sprintf("%s.%s.%s", s.riskPrefix, learnerID, moduleID)
	if err := s.pub.Publish(subject, data); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}
