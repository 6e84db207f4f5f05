package decide

import (
	"errors"
	"strings"

	"github.com/ppiankov/ontoguard/internal/graph"
	"github.com/ppiankov/ontoguard/internal/ingest"
	"github.com/ppiankov/ontoguard/internal/model"
)

// ValidationError reports a request that cannot be recorded. Nothing is
// persisted when it is returned.
type ValidationError struct {
	Violations []ingest.Violation
	err        error
}

// Unwrap returns the graph error behind a field conflict, if any.
func (e *ValidationError) Unwrap() error {
	return e.err
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		if v.Field == "" {
			parts = append(parts, v.Message)
			continue
		}
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func invalidField(field string, err error) *ValidationError {
	return &ValidationError{
		Violations: []ingest.Violation{{Field: field, Message: err.Error()}},
		err:        err,
	}
}

func fromIngest(err error) error {
	var ie *ingest.Error
	if errors.As(err, &ie) {
		return &ValidationError{Violations: ie.Violations}
	}
	return err
}

// ErrorResponse maps an error from Decide onto the outbound error status.
func ErrorResponse(err error) model.Response {
	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		return model.Response{Status: model.StatusError, Message: ve.Error()}
	case errors.Is(err, graph.ErrStoreUnavailable):
		return model.Response{Status: model.StatusError, Message: "knowledge graph unavailable, retry later"}
	default:
		return model.Response{Status: model.StatusError, Message: "An error occurred: " + err.Error()}
	}
}

// IsValidation reports whether err is a client error.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
