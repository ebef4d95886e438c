// Package apperr defines the error taxonomy shared by the CreatorHub client
// components. Callers classify failures with errors.Is against the
// sentinels below.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

var (
	// ErrValidation marks a local, field-scoped failure that never reaches the network.
	ErrValidation = errors.New("validation failed")
	// ErrInvalidCredentials is returned when the backend rejects a login.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrNotFound is returned for a missing listing or profile.
	ErrNotFound = errors.New("not found")
	// ErrNetwork covers transport failures and timeouts.
	ErrNetwork = errors.New("network failure")
	// ErrUnauthorized is returned when no valid session backs a request.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden is returned when the session's role does not allow the action.
	ErrForbidden = errors.New("forbidden")
	// ErrRejected is returned when the backend refuses a request as invalid.
	ErrRejected = errors.New("request rejected")
	// ErrServer is returned for backend-side failures.
	ErrServer = errors.New("server error")
)

// ValidationError holds per-field messages produced by local validation.
type ValidationError struct {
	Fields map[string]string
}

// NewValidationError returns an empty ValidationError ready for Add.
func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records a message for field.
func (e *ValidationError) Add(field, msg string) {
	if e.Fields == nil {
		e.Fields = make(map[string]string)
	}
	e.Fields[field] = msg
}

// Empty reports whether no field failed.
func (e *ValidationError) Empty() bool {
	return e == nil || len(e.Fields) == 0
}

// Field returns the message recorded for field, if any.
func (e *ValidationError) Field(name string) string {
	if e == nil {
		return ""
	}
	return e.Fields[name]
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// APIError is a classified failure answered by the backend. Message holds
// the backend's own text verbatim when it sent one.
type APIError struct {
	Status  int
	Message string
	Kind    error
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%v (%d): %s", e.Kind, e.Status, e.Message)
	}
	return fmt.Sprintf("%v (%d)", e.Kind, e.Status)
}

func (e *APIError) Unwrap() error { return e.Kind }

// KindForStatus maps an HTTP status onto the taxonomy.
func KindForStatus(status int) error {
	switch {
	case status == http.StatusUnauthorized:
		return ErrUnauthorized
	case status == http.StatusForbidden:
		return ErrForbidden
	case status == http.StatusNotFound:
		return ErrNotFound
	case status >= 500:
		return ErrServer
	default:
		return ErrRejected
	}
}

// UserMessage returns the backend-provided message carried by err, or
// fallback when there is none.
func UserMessage(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var vErr *ValidationError
	if errors.As(err, &vErr) && !vErr.Empty() {
		return vErr.Error()
	}
	return fallback
}
