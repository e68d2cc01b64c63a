package contract

import (
	"encoding/json"

	"github.com/Desire-2/afriprog/internal/course"
	"github.com/Desire-2/afriprog/internal/weights"
)

// moduleWire mirrors course.Module with an optional assessments field,
// so a payload that omits availability can be told apart from one that
// declares a reading-only module.
type moduleWire struct {
	ID          string                `json:"id"`
	Title       string                `json:"title"`
	Order       int                   `json:"order"`
	Assessments *weights.Availability `json:"assessments"`
}

type moduleDataWire struct {
	Module   moduleWire             `json:"module"`
	Progress *course.ProgressRecord `json:"progress"`
}

func (w moduleDataWire) toModuleData() course.ModuleData {
	md := course.ModuleData{
		Module: course.Module{
			ID:    w.Module.ID,
			Title: w.Module.Title,
			Order: w.Module.Order,
		},
		Progress: w.Progress,
	}
	if w.Module.Assessments != nil {
		md.Module.Assessments = *w.Module.Assessments
	} else {
		// Unknown availability assumes all assessment types so the
		// default weight profile applies.
		md.Module.Assessments = weights.Availability{
			Quizzes:         true,
			Assignments:     true,
			FinalAssessment: true,
		}
	}
	return md
}

// DecodeRecord validates and decodes a progress record payload.
func DecodeRecord(raw json.RawMessage) (*course.ProgressRecord, error) {
	if err := Validate(RecordSchema, raw); err != nil {
		return nil, err
	}
	var rec course.ProgressRecord
	if err := json.Unmarshal(raw, &rec); err != nil {
		return nil, &ErrInvalidPayload{Schema: RecordSchema.Name, Payload: raw, Err: err}
	}
	return &rec, nil
}

// DecodeModuleData validates and decodes a module-plus-progress
// payload. A module without an assessments field decodes with all
// assessment types present.
func DecodeModuleData(raw json.RawMessage) (course.ModuleData, error) {
	if err := Validate(ModuleDataSchema, raw); err != nil {
		return course.ModuleData{}, err
	}
	var wire moduleDataWire
	if err := json.Unmarshal(raw, &wire); err != nil {
		return course.ModuleData{}, &ErrInvalidPayload{Schema: ModuleDataSchema.Name, Payload: raw, Err: err}
	}
	return wire.toModuleData(), nil
}

// DecodeCourse validates and decodes an ordered course payload.
func DecodeCourse(raw json.RawMessage) ([]course.ModuleData, error) {
	if err := Validate(CourseSchema, raw); err != nil {
		return nil, err
	}
	var wire struct {
		Modules []moduleDataWire `json:"modules"`
	}
	if err := json.Unmarshal(raw, &wire); err != nil {
		return nil, &ErrInvalidPayload{Schema: CourseSchema.Name, Payload: raw, Err: err}
	}
	out := make([]course.ModuleData, 0, len(wire.Modules))
	for _, w := range wire.Modules {
		out = append(out, w.toModuleData())
	}
	return out, nil
}
