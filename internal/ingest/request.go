// Package ingest validates inbound action requests against the JSON Schema
// reflected from model.ActionRequest. Every transport decodes through Parse
// so HTTP, gRPC, MCP and CLI reject the same inputs the same way.
package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/invopop/jsonschema"
	schemavalidator "github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ppiankov/ontoguard/internal/model"
)

const schemaURL = "ontoguard://action-request.json"

// Violation is one schema failure.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error reports every violation found in a request.
type Error struct {
	Violations []Violation
}

func (e *Error) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

var (
	schemaOnce sync.Once
	schemaJSON []byte
	compiled   *schemavalidator.Schema
	schemaErr  error
)

// Schema returns the JSON Schema of model.ActionRequest.
func Schema() ([]byte, error) {
	if err := load(); err != nil {
		return nil, err
	}
	return schemaJSON, nil
}

func load() error {
	schemaOnce.Do(func() {
		r := &jsonschema.Reflector{
			Anonymous:                 true,
			DoNotReference:            true,
			AllowAdditionalProperties: true,
		}
		s := r.Reflect(&model.ActionRequest{})
		s.Title = "ontoguard action request"

		schemaJSON, schemaErr = json.MarshalIndent(s, "", "  ")
		if schemaErr != nil {
			schemaErr = fmt.Errorf("marshal request schema: %w", schemaErr)
			return
		}

		c := schemavalidator.NewCompiler()
		if err := c.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add request schema: %w", err)
			return
		}
		compiled, schemaErr = c.Compile(schemaURL)
		if schemaErr != nil {
			schemaErr = fmt.Errorf("compile request schema: %w", schemaErr)
		}
	})
	return schemaErr
}

// Parse decodes and validates a JSON request body.
func Parse(data []byte) (model.ActionRequest, error) {
	var req model.ActionRequest
	if len(bytes.TrimSpace(data)) == 0 {
		return req, &Error{Violations: []Violation{{Message: "no JSON data received"}}}
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return req, &Error{Violations: []Violation{{Message: "malformed JSON: " + err.Error()}}}
	}
	if err := validateDoc(doc); err != nil {
		return req, err
	}
	if err := json.Unmarshal(data, &req); err != nil {
		return req, &Error{Violations: []Violation{{Message: err.Error()}}}
	}
	return req, nil
}

// Validate checks an already-decoded request.
func Validate(req model.ActionRequest) error {
	b, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}
	var doc any
	if err := json.Unmarshal(b, &doc); err != nil {
		return fmt.Errorf("prepare request: %w", err)
	}
	return validateDoc(doc)
}

// ParseFile reads and validates a request from a JSON file.
func ParseFile(path string) (model.ActionRequest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.ActionRequest{}, fmt.Errorf("read request: %w", err)
	}
	return Parse(data)
}

func validateDoc(doc any) error {
	if err := load(); err != nil {
		return err
	}
	err := compiled.Validate(doc)
	if err == nil {
		return nil
	}

	var ve *schemavalidator.ValidationError
	if !errors.As(err, &ve) {
		return &Error{Violations: []Violation{{Message: err.Error()}}}
	}
	return &Error{Violations: violations(ve)}
}

// violations flattens the cause tree into its leaves.
func violations(ve *schemavalidator.ValidationError) []Violation {
	var out []Violation
	var walk func(e *schemavalidator.ValidationError)
	walk = func(e *schemavalidator.ValidationError) {
		if len(e.Causes) == 0 {
			out = append(out, Violation{
				Field:   fieldName(e.InstanceLocation),
				Message: e.Message,
			})
			return
		}
		for _, c := range e.Causes {
			walk(c)
		}
	}
	walk(ve)

	sort.SliceStable(out, func(i, j int) bool { return out[i].Field < out[j].Field })
	return out
}

func fieldName(loc string) string {
	return strings.TrimPrefix(loc, "/")
}
