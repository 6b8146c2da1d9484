// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Success is always false here; the success envelope lives in the handlers.
type APIError struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Success: false, Detail: msg}
}

// ValidationError wraps multiple field errors from request binding.
type ValidationError struct {
	Success bool              `json:"success"`
	Detail  string            `json:"detail"`
	Fields  map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Success: false, Detail: "validation failed", Fields: fields}
}
