// Package apperr defines the error taxonomy shared across layers. Handlers map
// these onto HTTP statuses at the boundary; inner layers only wrap and return.
package apperr

import (
	"errors"
	"fmt"
)

// ConfigurationError signals missing or inconsistent configuration, such as an
// unset mirror root folder id while replication is enabled. Surfaces as 4xx.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

// Configuration builds a ConfigurationError with a formatted message.
func Configuration(format string, args ...any) error {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError signals a malformed or incomplete request (missing document
// id, missing file, unsupported command). Surfaces as 400 with the message.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Validation builds a ValidationError with a formatted message.
func Validation(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// UpstreamError wraps a failure from a cloud dependency (object storage, the
// drive API, the database). In strict replication mode these propagate as 5xx;
// otherwise callers degrade gracefully.
type UpstreamError struct {
	Op  string
	Err error
}

func (e *UpstreamError) Error() string { return fmt.Sprintf("%s: %v", e.Op, e.Err) }
func (e *UpstreamError) Unwrap() error { return e.Err }

// Upstream wraps err with the failing operation name.
func Upstream(op string, err error) error {
	return &UpstreamError{Op: op, Err: err}
}

// ErrNotFound is the sentinel for absent documents or metadata. REST endpoints
// map it to 404; the legacy protocol endpoints answer with their soft 200/204
// equivalents instead.
var ErrNotFound = errors.New("not found")

// IsConfiguration reports whether err is a ConfigurationError.
func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
