package contract

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// schemaCache caches compiled JSON schemas by name.
var schemaCache sync.Map // map[string]*jsonschema.Schema

// ErrInvalidPayload indicates a payload that does not conform to its
// schema.
type ErrInvalidPayload struct {
	Schema  string
	Payload json.RawMessage
	Err     error
}

func (e *ErrInvalidPayload) Error() string {
	return fmt.Sprintf("invalid %s payload: %v", e.Schema, e.Err)
}

func (e *ErrInvalidPayload) Unwrap() error { return e.Err }

// Validate checks raw JSON against the given schema. It returns
// *ErrInvalidPayload on malformed JSON or schema violations.
func Validate(schema *Schema, raw json.RawMessage) error {
	var parsed any
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return &ErrInvalidPayload{
			Schema:  schema.Name,
			Payload: raw,
			Err:     fmt.Errorf("invalid JSON: %w", err),
		}
	}

	compiled, err := compiledSchema(schema)
	if err != nil {
		return &ErrInvalidPayload{
			Schema:  schema.Name,
			Payload: raw,
			Err:     fmt.Errorf("compile schema: %w", err),
		}
	}

	if err := compiled.Validate(parsed); err != nil {
		return &ErrInvalidPayload{
			Schema:  schema.Name,
			Payload: raw,
			Err:     err,
		}
	}
	return nil
}

// compiledSchema returns a cached compiled schema or compiles and
// caches it.
func compiledSchema(schema *Schema) (*jsonschema.Schema, error) {
	if cached, ok := schemaCache.Load(schema.Name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The compiler wants a parsed JSON value, not raw bytes. Round-trip
	// the Go definition through the library's decoder, which keeps
	// numbers as json.Number.
	defBytes, err := json.Marshal(schema.Definition)
	if err != nil {
		return nil, fmt.Errorf("marshal schema definition: %w", err)
	}
	defParsed, err := jsonschema.UnmarshalJSON(bytes.NewReader(defBytes))
	if err != nil {
		return nil, fmt.Errorf("parse schema definition: %w", err)
	}

	c := jsonschema.NewCompiler()
	schemaURL := fmt.Sprintf("schema://%s.json", schema.Name)
	if err := c.AddResource(schemaURL, defParsed); err != nil {
		return nil, fmt.Errorf("add resource: %w", err)
	}

	compiled, err := c.Compile(schemaURL)
	if err != nil {
		return nil, fmt.Errorf("compile: %w", err)
	}

	schemaCache.Store(schema.Name, compiled)
	return compiled, nil
}
