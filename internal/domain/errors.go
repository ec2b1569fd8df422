package domain

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// Error types for consistent error handling across the BFA.

// ErrNotFound indicates a resource was not found.
type ErrNotFound struct {
	Resource string
	ID       string
}

func (e *ErrNotFound) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrExternalService indicates a failure in an external service call.
type ErrExternalService struct {
	Service string
	Err     error
}

func (e *ErrExternalService) Error() string {
	return fmt.Sprintf("external service error [%s]: %v", e.Service, e.Err)
}

func (e *ErrExternalService) Unwrap() error {
	return e.Err
}

// ErrCircuitOpen indicates the circuit breaker is open.
type ErrCircuitOpen struct {
	Service string
}

func (e *ErrCircuitOpen) Error() string {
	return fmt.Sprintf("circuit breaker open for service: %s", e.Service)
}

// ErrValidation indicates a validation error (bad input).
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error on '%s': %s", e.Field, e.Message)
}

// ErrUnauthorized indicates a missing or invalid session.
type ErrUnauthorized struct {
	Message string
}

func (e *ErrUnauthorized) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return "unauthorized"
}

// ErrIncompleteStep is returned when forward navigation is refused because
// visible required fields of the current step are empty.
type ErrIncompleteStep struct {
	Step   int
	Fields []string
}

func (e *ErrIncompleteStep) Error() string {
	return fmt.Sprintf("step %d has empty required fields: %s", e.Step, strings.Join(e.Fields, ", "))
}

// ErrReportClosed is returned when a report operation needs an open sub-form.
type ErrReportClosed struct{}

func (e *ErrReportClosed) Error() string {
	return "report form is not open"
}

// ============================================================
// Upstream API errors
// ============================================================

// ErrorKind classifies an upstream error so callers never match on wording.
type ErrorKind string

const (
	KindUnknown      ErrorKind = "unknown"
	KindValidation   ErrorKind = "validation"
	KindNotFound     ErrorKind = "not_found"
	KindUnauthorized ErrorKind = "unauthorized"
	KindPrecondition ErrorKind = "precondition"
	KindServer       ErrorKind = "server"
)

// ErrAPI is a normalized non-2xx response from the backend.
// Exactly one of Detail or Fields is usually set; when neither is, the
// message falls back to the status line.
type ErrAPI struct {
	Status     int
	StatusText string
	Detail     string
	Code       string
	Fields     map[string][]string
	Kind       ErrorKind
}

func (e *ErrAPI) Error() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case len(e.Fields) > 0:
		return FlattenFieldErrors(e.Fields)
	default:
		text := e.StatusText
		if text == "" {
			text = http.StatusText(e.Status)
		}
		return fmt.Sprintf("status %d: %s", e.Status, text)
	}
}

// FlattenFieldErrors renders a field-keyed error map as
// "field: msg1, msg2; other: msg". Keys are sorted for stable output.
func FlattenFieldErrors(fields map[string][]string) string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(fields[k], ", ")))
	}
	return strings.Join(parts, "; ")
}

// IsNotFound reports whether err is a 404-equivalent.
func IsNotFound(err error) bool {
	var nf *ErrNotFound
	if errors.As(err, &nf) {
		return true
	}
	var apiErr *ErrAPI
	return errors.As(err, &apiErr) && apiErr.Kind == KindNotFound
}

// IsKind reports whether err carries an upstream error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	var apiErr *ErrAPI
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}
