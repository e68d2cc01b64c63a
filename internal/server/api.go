package server

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/Desire-2/afriprog/internal/contract"
	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/engine"
	"github.com/Desire-2/afriprog/internal/progression"
	"github.com/Desire-2/afriprog/internal/retake"
	"github.com/Desire-2/afriprog/internal/store"
	"github.com/Desire-2/afriprog/internal/telemetry"
	"github.com/Desire-2/afriprog/internal/weights"
)

type progressionAPI struct {
	eng      *engine.Engine
	progress store.ProgressRepo
	validate *validator.Validate
	logger   *zap.Logger
	metrics  *telemetry.Metrics
}

func registerProgressionAPI(g *echo.Group, opts *Options) {
	api := progressionAPI{
		eng:      opts.Engine,
		progress: opts.Progress,
		validate: validator.New(),
		logger:   opts.Logger.With(zap.String("component", "api")),
		metrics:  opts.Metrics,
	}

	pg := g.Group("/progression")
	pg.POST("/validate", api.validateProgression)
	pg.POST("/transition", api.transition)

	g.POST("/retake/eligibility", api.retakeEligibility)
	g.POST("/risk/assessment", api.riskAssessment)
	g.POST("/course/scan", api.courseScan)
	g.GET("/weights/profiles", api.weightProfiles)
}

// Handlers

// validateProgression evaluates one module payload and returns the
// progression report.
func (api *progressionAPI) validateProgression(ctx echo.Context) error {
	start := time.Now()

	raw, err := readBody(ctx)
	if err != nil {
		return err
	}
	md, err := contract.DecodeModuleData(raw)
	if err != nil {
		return err
	}

	report := api.eng.Validate(md)
	api.metrics.RecordEvaluation("validate", time.Since(start).Seconds())
	return ctx.JSON(http.StatusOK, report)
}

// retakeEligibility evaluates the bounded-retry policy for the progress
// block of a module payload.
func (api *progressionAPI) retakeEligibility(ctx echo.Context) error {
	start := time.Now()

	raw, err := readBody(ctx)
	if err != nil {
		return err
	}
	md, err := contract.DecodeModuleData(raw)
	if err != nil {
		return err
	}

	elig := api.eng.RetakeEligibility(md.Progress)
	api.metrics.RecordEvaluation("retake", time.Since(start).Seconds())
	return ctx.JSON(http.StatusOK, elig)
}

// riskAssessment classifies suspension risk for one module payload.
func (api *progressionAPI) riskAssessment(ctx echo.Context) error {
	start := time.Now()

	raw, err := readBody(ctx)
	if err != nil {
		return err
	}
	md, err := contract.DecodeModuleData(raw)
	if err != nil {
		return err
	}

	assessment := api.eng.Risk(md)
	api.metrics.RecordEvaluation("risk", time.Since(start).Seconds())
	api.metrics.RecordRiskLevel(string(assessment.Level))
	return ctx.JSON(http.StatusOK, assessment)
}

type courseScanResponse struct {
	NextUnlockable *course.Module `json:"nextUnlockable"`
	Rollup         course.Rollup  `json:"rollup"`
}

// courseScan runs the course-level scan over a modules payload.
func (api *progressionAPI) courseScan(ctx echo.Context) error {
	start := time.Now()

	raw, err := readBody(ctx)
	if err != nil {
		return err
	}
	modules, err := contract.DecodeCourse(raw)
	if err != nil {
		return err
	}

	resp := courseScanResponse{Rollup: api.eng.Rollup(modules)}
	if next := api.eng.NextUnlockable(modules); next != nil {
		resp.NextUnlockable = &next.Module
	}

	api.metrics.RecordEvaluation("scan", time.Since(start).Seconds())
	return ctx.JSON(http.StatusOK, resp)
}

// weightProfiles returns the effective weight table.
func (api *progressionAPI) weightProfiles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, echo.Map{
		"contractVersion": contract.Version,
		"default":         weights.DefaultProfile(),
		"profiles":        api.eng.WeightTable(),
	})
}

type transitionRequest struct {
	LearnerID string          `json:"learnerId" validate:"required,max=128"`
	Event     string          `json:"event" validate:"required,oneof=unlock start submit retake"`
	Data      json.RawMessage `json:"moduleData" validate:"required"`
}

type transitionResponse struct {
	TransitionID    string                `json:"transitionId"`
	LearnerID       string                `json:"learnerId"`
	ModuleID        string                `json:"moduleId"`
	Event           string                `json:"event"`
	CumulativeScore float64               `json:"cumulativeScore"`
	Record          course.ProgressRecord `json:"record"`
	Eligibility     *retake.Eligibility   `json:"eligibility,omitempty"`
}

// transition applies a progression event against the stored record.
// Component scores travel with the request; lifecycle fields (status,
// attempts) are server-authoritative once a row exists.
func (api *progressionAPI) transition(ctx echo.Context) error {
	if api.progress == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "persistence not configured")
	}

	var req transitionRequest
	if err := ctx.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "malformed request body").SetInternal(err)
	}
	if err := api.validate.Struct(req); err != nil {
		return err
	}

	md, err := contract.DecodeModuleData(req.Data)
	if err != nil {
		return err
	}

	ev := progression.Event(req.Event)
	if ev == progression.EventRetake {
		return api.beginRetake(ctx, req.LearnerID, md)
	}

	applied, err := api.progress.ApplyTransition(ctx.Request().Context(), req.LearnerID, md.Module.ID,
		func(current *course.ProgressRecord) (course.ProgressRecord, *store.TransitionEventData, error) {
			merged := md
			merged.Progress = mergeLifecycle(md.Progress, current)

			next, err := api.eng.Transition(merged, ev)
			if err != nil {
				return course.ProgressRecord{}, nil, err
			}

			scored := merged
			scored.Progress = &next
			score, _ := api.eng.Score(scored)

			from := course.Normalize(merged.Progress, api.eng.Policy()).Status
			return next, &store.TransitionEventData{
				FromStatus:      string(from),
				ToStatus:        string(next.Status),
				Trigger:         req.Event,
				CumulativeScore: score,
				Attempts:        next.AttemptsCount,
			}, nil
		})
	if err != nil {
		api.metrics.RecordTransition(req.Event, "refused")
		return err
	}
	api.metrics.RecordTransition(req.Event, "applied")

	scored := md
	scored.Progress = applied
	score, _ := api.eng.Score(scored)

	api.logger.Info("transition applied",
		zap.String("learnerId", req.LearnerID),
		zap.String("moduleId", md.Module.ID),
		zap.String("event", req.Event),
		zap.String("status", string(applied.Status)),
	)

	return ctx.JSON(http.StatusOK, transitionResponse{
		TransitionID:    uuid.NewString(),
		LearnerID:       req.LearnerID,
		ModuleID:        md.Module.ID,
		Event:           req.Event,
		CumulativeScore: score,
		Record:          *applied,
	})
}

// beginRetake routes transition(retake) through the store's atomic
// retake so the eligibility re-check and the attempt increment share one
// transaction. The stored record is authoritative; a denial returns 409
// with the eligibility detail.
func (api *progressionAPI) beginRetake(ctx echo.Context, learnerID string, md course.ModuleData) error {
	rec, elig, err := api.progress.BeginRetake(ctx.Request().Context(), learnerID, md.Module.ID, api.eng.Policy())
	if err != nil {
		api.metrics.RecordTransition("retake", "refused")
		return err
	}
	if !elig.CanRetake {
		api.metrics.RecordTransition("retake", "refused")
		return echo.NewHTTPError(http.StatusConflict, echo.Map{
			"error":       "retake not permitted",
			"reason":      elig.Reason,
			"eligibility": elig,
		})
	}
	api.metrics.RecordTransition("retake", "applied")

	scored := md
	scored.Progress = rec
	score, _ := api.eng.Score(scored)

	api.logger.Info("retake granted",
		zap.String("learnerId", learnerID),
		zap.String("moduleId", md.Module.ID),
		zap.Int("attempt", rec.AttemptsCount),
	)

	return ctx.JSON(http.StatusOK, transitionResponse{
		TransitionID:    uuid.NewString(),
		LearnerID:       learnerID,
		ModuleID:        md.Module.ID,
		Event:           string(progression.EventRetake),
		CumulativeScore: score,
		Record:          *rec,
		Eligibility:     &elig,
	})
}

// mergeLifecycle combines request-supplied scores with stored lifecycle
// fields. The caller grades; the server owns the state machine.
func mergeLifecycle(incoming, stored *course.ProgressRecord) *course.ProgressRecord {
	if stored == nil {
		return incoming
	}
	if incoming == nil {
		return stored
	}
	merged := *incoming
	merged.Status = stored.Status
	merged.AttemptsCount = stored.AttemptsCount
	merged.MaxAttempts = stored.MaxAttempts
	if stored.PassingThreshold > 0 {
		merged.PassingThreshold = stored.PassingThreshold
	}
	return &merged
}

func readBody(ctx echo.Context) (json.RawMessage, error) {
	raw, err := io.ReadAll(ctx.Request().Body)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "reading request body").SetInternal(err)
	}
	return raw, nil
}
