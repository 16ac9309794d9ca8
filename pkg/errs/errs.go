// Package errs carries the engine's error taxonomy.
//
// Configuration and validation errors abort a report run. Data anomalies are
// recovered locally and only ever logged, but share the same type so they can
// be reported with context.
package errs

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Kind identifies the category of an error.
type Kind string

const (
	// KindConfiguration marks invalid rule, tier or service configuration.
	KindConfiguration Kind = "configuration"

	// KindValidation marks invalid caller input (date range, unknown customer).
	KindValidation Kind = "validation"

	// KindDataAnomaly marks malformed order data that was defaulted.
	KindDataAnomaly Kind = "data_anomaly"

	// KindNotFound marks a missing stored record.
	KindNotFound Kind = "not_found"

	// KindInternal marks collaborator failures (database, cache).
	KindInternal Kind = "internal"
)

// Error is a categorized error with optional context.
type Error struct {
	Kind    Kind           `json:"kind"`
	Message string         `json:"message"`
	Cause   error          `json:"-"`
	Context map[string]any `json:"context,omitempty"`
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	b.WriteString(e.Message)
	if len(e.Context) > 0 {
		keys := make([]string, 0, len(e.Context))
		for k := range e.Context {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString(" (")
		for i, k := range keys {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, e.Context[k])
		}
		b.WriteString(")")
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}

// With adds a context key to the error and returns it.
func (e *Error) With(key string, value any) *Error {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// New creates an error of the given kind.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an error of the given kind around cause.
func Wrap(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Cause: cause}
}

// Configuration wraps cause as a configuration error.
func Configuration(message string, cause error) *Error {
	return Wrap(KindConfiguration, message, cause)
}

// Validation wraps cause as a validation error.
func Validation(message string, cause error) *Error {
	return Wrap(KindValidation, message, cause)
}

// Anomaly wraps cause as a data anomaly.
func Anomaly(message string, cause error) *Error {
	return Wrap(KindDataAnomaly, message, cause)
}

// Internal wraps cause as an internal error.
func Internal(message string, cause error) *Error {
	return Wrap(KindInternal, message, cause)
}

// KindOf returns the kind of the first *Error in the chain, or "" if none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err carries the given kind anywhere in its chain.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}
