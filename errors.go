package recipeagent

import "errors"

var (
	// ErrInvalidInput marks a request rejected before any backend is called.
	ErrInvalidInput = errors.New("invalid input")

	// ErrBackendUnavailable is returned when no backend produced a completion.
	ErrBackendUnavailable = errors.New("backend unavailable")

	// ErrMalformedOutput is returned when model output holds no parsable JSON object.
	ErrMalformedOutput = errors.New("malformed model output")

	// ErrSchemaViolation is returned when parsed model output lacks required fields.
	ErrSchemaViolation = errors.New("model output violates schema")
)
